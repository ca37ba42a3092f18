package contentstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/store_errors"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
)

// Blog is the post/category/tag facade over the generic engine.
type Blog struct {
	posts *Store[*record.Post]
	cats  *Store[*record.Category]
	tags  *Store[*record.Tag]
	ix    *Indexer
	log   utils.Logger
}

func postIndexSets(p *record.Post) []string {
	sets := make([]string, 0, len(p.CategoryIDs)+len(p.TagIDs)+2)
	for _, cid := range p.CategoryIDs {
		sets = append(sets, categoryKey(record.KindPost, cid))
	}
	for _, tid := range p.TagIDs {
		sets = append(sets, tagKey(record.KindPost, tid))
	}
	sets = append(sets, statusKey(record.KindPost, string(p.Status)))
	if p.Status == record.StatusPublished {
		sets = append(sets, publishedKey(record.KindPost))
	}
	return sets
}

func NewBlog(store kv.Store, ix *Indexer, log utils.Logger) *Blog {
	return &Blog{
		posts: NewStore(store, ix, log, Descriptor[*record.Post]{
			Kind:      record.KindPost,
			New:       func() *record.Post { return &record.Post{} },
			IndexSets: postIndexSets,
			SearchText: func(p *record.Post) []string {
				return []string{p.Title, p.Body}
			},
		}),
		cats: NewStore(store, ix, log, Descriptor[*record.Category]{
			Kind: record.KindCategory,
			New:  func() *record.Category { return &record.Category{} },
		}),
		tags: NewStore(store, ix, log, Descriptor[*record.Tag]{
			Kind: record.KindTag,
			New:  func() *record.Tag { return &record.Tag{} },
		}),
		ix:  ix,
		log: log,
	}
}

// PostPatch carries a partial update; nil fields are left as stored.
type PostPatch struct {
	Title       *string            `json:"title,omitempty"`
	Body        *string            `json:"body,omitempty"`
	Status      *record.PostStatus `json:"status,omitempty"`
	ScheduledAt *time.Time         `json:"scheduledAt,omitempty"`
	CategoryIDs *[]string          `json:"categoryIds,omitempty"`
	TagIDs      *[]string          `json:"tagIds,omitempty"`
}

// CreatePost persists the post and registers it with every category, tag
// and status index its attributes imply. Scheduling requires a concrete
// future time; creating directly as published consumes any scheduling.
func (b *Blog) CreatePost(ctx context.Context, p *record.Post) (*record.Post, error) {
	if p.Status == "" {
		p.Status = record.StatusDraft
	}
	if err := checkScheduling(p, time.Now()); err != nil {
		return nil, err
	}
	if p.Status == record.StatusPublished {
		p.ScheduledAt = nil
	}
	return b.posts.Create(ctx, p)
}

func (b *Blog) GetPost(ctx context.Context, id string) (*record.Post, error) {
	return b.posts.Get(ctx, id)
}

// UpdatePost merges the patch, enforcing the status machine:
//
//	draft --edit--> draft
//	draft --schedule(t>now)--> scheduled
//	draft|scheduled --publish--> published
//	published is terminal; edits never revert it
func (b *Blog) UpdatePost(ctx context.Context, id string, patch PostPatch) (*record.Post, error) {
	return b.posts.Update(ctx, id, func(p *record.Post) error {
		wasPublished := p.Status == record.StatusPublished
		touchedSchedule := patch.Status != nil || patch.ScheduledAt != nil

		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Body != nil {
			p.Body = *patch.Body
		}
		if patch.CategoryIDs != nil {
			p.CategoryIDs = *patch.CategoryIDs
		}
		if patch.TagIDs != nil {
			p.TagIDs = *patch.TagIDs
		}
		if patch.ScheduledAt != nil {
			p.ScheduledAt = patch.ScheduledAt
		}
		if patch.Status != nil {
			if wasPublished && *patch.Status != record.StatusPublished {
				return errors.Join(store_errors.ErrInvalidRecord,
					fmt.Errorf("post %s is published, status is terminal", id))
			}
			p.Status = *patch.Status
		}
		if touchedSchedule {
			if err := checkScheduling(p, time.Now()); err != nil {
				return err
			}
		}
		if p.Status == record.StatusPublished {
			p.ScheduledAt = nil
		}
		return nil
	})
}

func (b *Blog) DeletePost(ctx context.Context, id string) error {
	return b.posts.Delete(ctx, id)
}

func checkScheduling(p *record.Post, now time.Time) error {
	if p.Status != record.StatusScheduled {
		return nil
	}
	if p.ScheduledAt == nil {
		return errors.Join(store_errors.ErrInvalidRecord,
			fmt.Errorf("scheduled post needs scheduledAt"))
	}
	if !p.ScheduledAt.After(now) {
		return errors.Join(store_errors.ErrInvalidRecord,
			fmt.Errorf("scheduledAt %s is not in the future", p.ScheduledAt.Format(time.RFC3339)))
	}
	return nil
}

// Published lists published posts newest first, paginated.
func (b *Blog) Published(ctx context.Context, page Page) (Paged[*record.Post], error) {
	posts, err := b.posts.List(ctx, publishedKey(record.KindPost))
	if err != nil {
		return Paged[*record.Post]{}, err
	}
	SortByCreatedDesc(posts)
	return Paginate(posts, page), nil
}

func (b *Blog) ByCategory(ctx context.Context, categoryID string, page Page) (Paged[*record.Post], error) {
	posts, err := b.posts.List(ctx, categoryKey(record.KindPost, categoryID))
	if err != nil {
		return Paged[*record.Post]{}, err
	}
	SortByCreatedDesc(posts)
	return Paginate(posts, page), nil
}

func (b *Blog) ByTag(ctx context.Context, tagID string, page Page) (Paged[*record.Post], error) {
	posts, err := b.posts.List(ctx, tagKey(record.KindPost, tagID))
	if err != nil {
		return Paged[*record.Post]{}, err
	}
	SortByCreatedDesc(posts)
	return Paginate(posts, page), nil
}

// SearchPosts matches title or body, case-insensitively, across every
// post regardless of status. Callers that only want published results
// filter explicitly; the store method deliberately does not.
func (b *Blog) SearchPosts(ctx context.Context, term string) ([]*record.Post, error) {
	posts, err := b.posts.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	SortByCreatedDesc(posts)
	return posts, nil
}

// AllPosts lists every post of any status, newest first.
func (b *Blog) AllPosts(ctx context.Context, page Page) (Paged[*record.Post], error) {
	posts, err := b.posts.All(ctx)
	if err != nil {
		return Paged[*record.Post]{}, err
	}
	SortByCreatedDesc(posts)
	return Paginate(posts, page), nil
}

func (b *Blog) CreateCategory(ctx context.Context, c *record.Category) (*record.Category, error) {
	return b.cats.Create(ctx, c)
}

func (b *Blog) GetCategory(ctx context.Context, id string) (*record.Category, error) {
	return b.cats.Get(ctx, id)
}

func (b *Blog) RenameCategory(ctx context.Context, id, name string) (*record.Category, error) {
	return b.cats.Update(ctx, id, func(c *record.Category) error {
		c.Name = name
		return nil
	})
}

// DeleteCategory removes the category record. Posts referencing the id
// keep their reference; the membership set simply stops being reachable
// from the category listing.
func (b *Blog) DeleteCategory(ctx context.Context, id string) error {
	return b.cats.Delete(ctx, id)
}

func (b *Blog) Categories(ctx context.Context) ([]*record.Category, error) {
	cats, err := b.cats.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (b *Blog) CreateTag(ctx context.Context, t *record.Tag) (*record.Tag, error) {
	return b.tags.Create(ctx, t)
}

func (b *Blog) GetTag(ctx context.Context, id string) (*record.Tag, error) {
	return b.tags.Get(ctx, id)
}

func (b *Blog) RenameTag(ctx context.Context, id, name string) (*record.Tag, error) {
	return b.tags.Update(ctx, id, func(t *record.Tag) error {
		t.Name = name
		return nil
	})
}

func (b *Blog) DeleteTag(ctx context.Context, id string) error {
	return b.tags.Delete(ctx, id)
}

func (b *Blog) Tags(ctx context.Context) ([]*record.Tag, error) {
	tags, err := b.tags.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// UpdateCategoryCounts resyncs every category's postCount from the true
// cardinality of its membership set. Idempotent; safe to interleave with
// unrelated writes.
func (b *Blog) UpdateCategoryCounts(ctx context.Context) error {
	return b.ix.UpdateCounts(ctx, record.KindCategory,
		func(id string) string { return categoryKey(record.KindPost, id) },
		func(ctx context.Context, id string, count int) error {
			_, err := b.cats.Update(ctx, id, func(c *record.Category) error {
				c.PostCount = count
				return nil
			})
			if errors.Is(err, store_errors.ErrNotFound) {
				b.ix.Warn(ctx, record.KindCategory, "divergent_index", "id", id, "set", allKey(record.KindCategory))
				return nil
			}
			return err
		})
}

func (b *Blog) UpdateTagCounts(ctx context.Context) error {
	return b.ix.UpdateCounts(ctx, record.KindTag,
		func(id string) string { return tagKey(record.KindPost, id) },
		func(ctx context.Context, id string, count int) error {
			_, err := b.tags.Update(ctx, id, func(t *record.Tag) error {
				t.PostCount = count
				return nil
			})
			if errors.Is(err, store_errors.ErrNotFound) {
				b.ix.Warn(ctx, record.KindTag, "divergent_index", "id", id, "set", allKey(record.KindTag))
				return nil
			}
			return err
		})
}

// BlogStats aggregates counts from index cardinalities, never from a full
// record scan.
type BlogStats struct {
	TotalPosts  int            `json:"totalPosts"`
	Drafts      int            `json:"drafts"`
	Scheduled   int            `json:"scheduled"`
	Published   int            `json:"published"`
	PerCategory map[string]int `json:"perCategory"`
	PerTag      map[string]int `json:"perTag"`
}

func (b *Blog) Stats(ctx context.Context) (BlogStats, error) {
	stats := BlogStats{
		PerCategory: map[string]int{},
		PerTag:      map[string]int{},
	}
	var err error
	if stats.TotalPosts, err = b.ix.Cardinality(ctx, allKey(record.KindPost)); err != nil {
		return stats, err
	}
	if stats.Drafts, err = b.ix.Cardinality(ctx, statusKey(record.KindPost, string(record.StatusDraft))); err != nil {
		return stats, err
	}
	if stats.Scheduled, err = b.ix.Cardinality(ctx, statusKey(record.KindPost, string(record.StatusScheduled))); err != nil {
		return stats, err
	}
	if stats.Published, err = b.ix.Cardinality(ctx, publishedKey(record.KindPost)); err != nil {
		return stats, err
	}
	catIDs, err := b.ix.kv.SMembers(ctx, allKey(record.KindCategory))
	if err != nil {
		return stats, err
	}
	for _, id := range catIDs {
		if stats.PerCategory[id], err = b.ix.Cardinality(ctx, categoryKey(record.KindPost, id)); err != nil {
			return stats, err
		}
	}
	tagIDs, err := b.ix.kv.SMembers(ctx, allKey(record.KindTag))
	if err != nil {
		return stats, err
	}
	for _, id := range tagIDs {
		if stats.PerTag[id], err = b.ix.Cardinality(ctx, tagKey(record.KindPost, id)); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
