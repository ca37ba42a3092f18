package contentstore

import (
	"context"
	"testing"
	"time"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failKV injects a write failure for one primary key so partial-failure
// reporting can be observed without tearing down the backing store.
type failKV struct {
	kv.Store
	failOn string
}

func (f *failKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == f.failOn {
		return kv.Unavailable(errors.New("injected write failure"))
	}
	return f.Store.Set(ctx, key, value, ttl)
}

func TestPublishScheduled_TransitionsElapsedPosts(t *testing.T) {
	blog, store := testBlog(t)
	ctx := context.Background()

	soon := time.Now().Add(time.Hour)
	later := time.Now().Add(24 * time.Hour)
	due, err := blog.CreatePost(ctx, &record.Post{
		Title: "due", Status: record.StatusScheduled, ScheduledAt: &soon,
	})
	require.NoError(t, err)
	notYet, err := blog.CreatePost(ctx, &record.Post{
		Title: "not yet", Status: record.StatusScheduled, ScheduledAt: &later,
	})
	require.NoError(t, err)

	result, err := blog.PublishScheduled(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 1, result.Stats.Published)
	assert.Equal(t, 1, result.Stats.Scheduled)

	got, err := blog.GetPost(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, record.StatusPublished, got.Status)
	assert.Nil(t, got.ScheduledAt)
	assert.Equal(t, []string{due.ID}, members(t, store, "posts:published"))
	assert.Equal(t, []string{notYet.ID}, members(t, store, "posts:status:scheduled"))
}

func TestPublishScheduled_SecondRunIsNoop(t *testing.T) {
	blog, _ := testBlog(t)
	ctx := context.Background()

	soon := time.Now().Add(time.Hour)
	_, err := blog.CreatePost(ctx, &record.Post{
		Title: "once", Status: record.StatusScheduled, ScheduledAt: &soon,
	})
	require.NoError(t, err)

	now := time.Now().Add(2 * time.Hour)
	first, err := blog.PublishScheduled(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := blog.PublishScheduled(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Empty(t, second.Failed)
}

func TestPublishScheduled_ReportsPartialFailure(t *testing.T) {
	store := testKV(t)
	wrapped := &failKV{Store: store}
	log := testLogger()
	blog := NewBlog(wrapped, NewIndexer(wrapped, log), log)
	ctx := context.Background()

	soon := time.Now().Add(time.Hour)
	for _, id := range []string{"a", "b"} {
		_, err := blog.CreatePost(ctx, &record.Post{
			Meta: record.Meta{ID: id}, Title: id,
			Status: record.StatusScheduled, ScheduledAt: &soon,
		})
		require.NoError(t, err)
	}

	// arm the fault for b's primary write only once both posts exist
	wrapped.failOn = "post:b"

	result, err := blog.PublishScheduled(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, []string{"b"}, result.Failed)

	got, err := blog.GetPost(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, record.StatusPublished, got.Status, "earlier success is not rolled back")

	stillScheduled, err := blog.GetPost(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, record.StatusScheduled, stillScheduled.Status)
}
