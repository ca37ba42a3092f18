package contentstore

import (
	"context"
	"log/slog"
	"testing"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/stretchr/testify/require"
)

func testKV(t *testing.T) kv.Store {
	t.Helper()
	store, err := kv.OpenPebble(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testLogger() utils.Logger {
	return utils.NewDefaultLogger(slog.LevelError)
}

func testBlog(t *testing.T) (*Blog, kv.Store) {
	t.Helper()
	store := testKV(t)
	log := testLogger()
	return NewBlog(store, NewIndexer(store, log), log), store
}

func members(t *testing.T, store kv.Store, set string) []string {
	t.Helper()
	ids, err := store.SMembers(context.Background(), set)
	require.NoError(t, err)
	return ids
}
