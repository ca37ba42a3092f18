package contentstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/store_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlog_CreatePostIndexesMemberships(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	post, err := blog.CreatePost(ctx, &record.Post{
		Title:       "Ferrari 488 weekend",
		Body:        "trip report",
		CategoryIDs: []string{"c1", "c2"},
		TagIDs:      []string{"t1"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, post.ID)
	assert.Equal(t, record.StatusDraft, post.Status)
	assert.False(t, post.CreatedAt.IsZero())

	assert.Equal(t, []string{post.ID}, members(t, store, "posts:all"))
	assert.Equal(t, []string{post.ID}, members(t, store, "posts:category:c1"))
	assert.Equal(t, []string{post.ID}, members(t, store, "posts:category:c2"))
	assert.Equal(t, []string{post.ID}, members(t, store, "posts:tag:t1"))
	assert.Empty(t, members(t, store, "posts:published"))
}

func TestBlog_UpdateMovesCategoryMembership(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	post, err := blog.CreatePost(ctx, &record.Post{
		Title:       "McLaren 720S",
		CategoryIDs: []string{"c1"},
	})
	require.NoError(t, err)
	other, err := blog.CreatePost(ctx, &record.Post{
		Title:       "Bystander",
		CategoryIDs: []string{"c3"},
	})
	require.NoError(t, err)

	newCats := []string{"c2"}
	_, err = blog.UpdatePost(ctx, post.ID, PostPatch{CategoryIDs: &newCats})
	require.NoError(t, err)

	assert.Empty(t, members(t, store, "posts:category:c1"), "old membership removed")
	assert.Equal(t, []string{post.ID}, members(t, store, "posts:category:c2"))
	assert.Equal(t, []string{other.ID}, members(t, store, "posts:category:c3"), "unrelated index untouched")
}

func TestBlog_DeletePostRemovesAllMemberships(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	post, err := blog.CreatePost(ctx, &record.Post{
		Title:       "Porsche 911 GT3",
		CategoryIDs: []string{"c1"},
		TagIDs:      []string{"t1"},
	})
	require.NoError(t, err)
	require.NoError(t, blog.DeletePost(ctx, post.ID))

	assert.Empty(t, members(t, store, "posts:all"))
	assert.Empty(t, members(t, store, "posts:category:c1"))
	assert.Empty(t, members(t, store, "posts:tag:t1"))

	page, err := blog.ByCategory(ctx, "c1", Page{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	err = blog.DeletePost(ctx, post.ID)
	assert.ErrorIs(t, err, store_errors.ErrNotFound)
}

func TestBlog_PublishedOrderingAndPagination(t *testing.T) {
	blog, _ := testBlog(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		_, err := blog.CreatePost(ctx, &record.Post{
			Meta:   record.Meta{ID: fmt.Sprintf("p%03d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			Title:  fmt.Sprintf("post %d", i),
			Status: record.StatusPublished,
		})
		require.NoError(t, err)
	}

	page, err := blog.Published(ctx, Page{Limit: 50, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, page.Items, 50)
	assert.Equal(t, 120, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "p119", page.Items[0].ID, "newest first")

	page, err = blog.Published(ctx, Page{Limit: 50, Offset: 100})
	require.NoError(t, err)
	assert.Len(t, page.Items, 20)
	assert.False(t, page.HasMore)
	assert.Equal(t, "p019", page.Items[0].ID)
}

func TestBlog_SearchCaseInsensitiveSingleMatch(t *testing.T) {
	blog, _ := testBlog(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		body := "nothing interesting"
		if i == 7 {
			body = "the Koenigsegg Jesko hit 300mph"
		}
		_, err := blog.CreatePost(ctx, &record.Post{
			Meta:   record.Meta{ID: fmt.Sprintf("p%d", i)},
			Title:  fmt.Sprintf("post %d", i),
			Body:   body,
			Status: record.StatusPublished,
		})
		require.NoError(t, err)
	}

	matches, err := blog.SearchPosts(ctx, "KOENIGSEGG")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p7", matches[0].ID)
}

func TestBlog_SearchIsStatusUnfiltered(t *testing.T) {
	blog, _ := testBlog(t)
	ctx := context.Background()

	_, err := blog.CreatePost(ctx, &record.Post{
		Meta:  record.Meta{ID: "draft1"},
		Title: "secret Bugatti draft",
	})
	require.NoError(t, err)

	matches, err := blog.SearchPosts(ctx, "bugatti")
	require.NoError(t, err)
	assert.Len(t, matches, 1, "store-level search scans every status; callers filter")
}

func TestBlog_SchedulePastTimestampFailsCleanly(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	_, err := blog.CreatePost(ctx, &record.Post{
		Title:       "never",
		Status:      record.StatusScheduled,
		ScheduledAt: &past,
		CategoryIDs: []string{"c1"},
	})
	assert.ErrorIs(t, err, store_errors.ErrInvalidRecord)

	// no partial state: neither record nor memberships
	assert.Empty(t, members(t, store, "posts:all"))
	assert.Empty(t, members(t, store, "posts:category:c1"))
	keys, err := store.Keys(ctx, "post:*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBlog_PublishedStatusIsTerminal(t *testing.T) {
	blog, _ := testBlog(t)
	ctx := context.Background()

	post, err := blog.CreatePost(ctx, &record.Post{
		Title:  "done",
		Status: record.StatusPublished,
	})
	require.NoError(t, err)

	draft := record.StatusDraft
	_, err = blog.UpdatePost(ctx, post.ID, PostPatch{Status: &draft})
	assert.ErrorIs(t, err, store_errors.ErrInvalidRecord)

	// unrelated edits remain possible and do not revert status
	title := "done, updated"
	updated, err := blog.UpdatePost(ctx, post.ID, PostPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, record.StatusPublished, updated.Status)
	assert.Equal(t, "done, updated", updated.Title)
}

func TestBlog_PublishNowConsumesScheduling(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	post, err := blog.CreatePost(ctx, &record.Post{
		Title:       "early drop",
		Status:      record.StatusScheduled,
		ScheduledAt: &future,
	})
	require.NoError(t, err)

	published := record.StatusPublished
	updated, err := blog.UpdatePost(ctx, post.ID, PostPatch{Status: &published})
	require.NoError(t, err)
	assert.Nil(t, updated.ScheduledAt)
	assert.Equal(t, []string{post.ID}, members(t, store, "posts:published"))
	assert.Empty(t, members(t, store, "posts:status:scheduled"))
}

func TestBlog_ByCategorySkipsDivergentIDs(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	keep, err := blog.CreatePost(ctx, &record.Post{
		Meta: record.Meta{ID: "keep"}, Title: "kept", CategoryIDs: []string{"c1"},
	})
	require.NoError(t, err)
	_, err = blog.CreatePost(ctx, &record.Post{
		Meta: record.Meta{ID: "gone"}, Title: "vanishing", CategoryIDs: []string{"c1"},
	})
	require.NoError(t, err)

	// simulate index/record divergence: primary key vanishes behind the index
	require.NoError(t, store.Delete(ctx, "post:gone"))

	page, err := blog.ByCategory(ctx, "c1", Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, keep.ID, page.Items[0].ID)
}

func TestBlog_ByCategorySkipsCorruptRecords(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	keep, err := blog.CreatePost(ctx, &record.Post{
		Meta: record.Meta{ID: "keep"}, Title: "kept", CategoryIDs: []string{"c1"},
	})
	require.NoError(t, err)
	_, err = blog.CreatePost(ctx, &record.Post{
		Meta: record.Meta{ID: "bad"}, Title: "rotting", CategoryIDs: []string{"c1"},
	})
	require.NoError(t, err)

	// clobber the stored value behind the index with bytes that do not parse
	require.NoError(t, store.Set(ctx, "post:bad", []byte("{{{not json"), 0))

	page, err := blog.ByCategory(ctx, "c1", Page{})
	require.NoError(t, err, "a corrupt member must not abort the listing")
	require.Len(t, page.Items, 1)
	assert.Equal(t, keep.ID, page.Items[0].ID)
}

func TestBlog_CategoryCountResync(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	cat, err := blog.CreateCategory(ctx, &record.Category{Meta: record.Meta{ID: "c1"}, Name: "Supercars"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := blog.CreatePost(ctx, &record.Post{
			Title:       fmt.Sprintf("post %d", i),
			CategoryIDs: []string{"c1"},
		})
		require.NoError(t, err)
	}

	require.NoError(t, blog.UpdateCategoryCounts(ctx))
	got, err := blog.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PostCount)
	assert.Len(t, members(t, store, "posts:category:c1"), got.PostCount, "counter equals true cardinality")

	// idempotent
	require.NoError(t, blog.UpdateCategoryCounts(ctx))
	again, err := blog.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, got.PostCount, again.PostCount)
}

func TestBlog_StatsFromIndexCardinalities(t *testing.T) {
	blog, _ := testBlog(t)
	ctx := context.Background()

	_, err := blog.CreateCategory(ctx, &record.Category{Meta: record.Meta{ID: "c1"}, Name: "Supercars"})
	require.NoError(t, err)
	_, err = blog.CreateTag(ctx, &record.Tag{Meta: record.Meta{ID: "t1"}, Name: "vegas"})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	_, err = blog.CreatePost(ctx, &record.Post{Title: "a", CategoryIDs: []string{"c1"}})
	require.NoError(t, err)
	_, err = blog.CreatePost(ctx, &record.Post{Title: "b", Status: record.StatusScheduled, ScheduledAt: &future})
	require.NoError(t, err)
	_, err = blog.CreatePost(ctx, &record.Post{Title: "c", Status: record.StatusPublished, TagIDs: []string{"t1"}})
	require.NoError(t, err)

	stats, err := blog.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, 1, stats.Drafts)
	assert.Equal(t, 1, stats.Scheduled)
	assert.Equal(t, 1, stats.Published)
	assert.Equal(t, map[string]int{"c1": 1}, stats.PerCategory)
	assert.Equal(t, map[string]int{"t1": 1}, stats.PerTag)
}

func TestBlog_GetPostNotFound(t *testing.T) {
	blog, _ := testBlog(t)
	_, err := blog.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, store_errors.ErrNotFound)
}

func TestBlog_UpdateNotFound(t *testing.T) {
	blog, _ := testBlog(t)
	title := "x"
	_, err := blog.UpdatePost(context.Background(), "missing", PostPatch{Title: &title})
	assert.ErrorIs(t, err, store_errors.ErrNotFound)
}
