package contentstore

import (
	"context"
	"fmt"
	"io"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
)

// Dump writes every value key matching pattern with its raw stored value.
// Diagnostic surface only: the pattern scan is not a consistent snapshot
// and nothing in the store's own logic reads through it.
func Dump(ctx context.Context, store kv.Store, w io.Writer, pattern string) error {
	keys, err := store.Keys(ctx, pattern)
	if err != nil {
		return err
	}
	for _, key := range keys {
		val, ok, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s:\t%s\n", key, val)
	}
	return nil
}

// DumpSet writes the members of one index set.
func DumpSet(ctx context.Context, store kv.Store, w io.Writer, set string) error {
	members, err := store.SMembers(ctx, set)
	if err != nil {
		return err
	}
	for _, m := range members {
		fmt.Fprintln(w, m)
	}
	return nil
}
