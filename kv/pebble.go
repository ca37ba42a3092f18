package kv

import (
	"context"
	"encoding/binary"
	"path"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// Pebble keeps everything in a local pebble database. Plain values live
// under 'K'-prefixed keys, set membership is one 'S'-prefixed key per
// member (empty value), matching the member-per-key layout of a fullscan
// index. A value is framed with an 8-byte expiry deadline (unix nanos,
// zero for none) so Set can honor ttl without a background sweeper.
type Pebble struct {
	db *pebble.DB
	wo *pebble.WriteOptions
}

var _ Store = (*Pebble)(nil)

func OpenPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "kv: open pebble")
	}
	return &Pebble{db: db, wo: pebble.Sync}, nil
}

// DB exposes the underlying database for metrics collection only.
func (p *Pebble) DB() *pebble.DB { return p.db }

func valueKey(key string) []byte {
	return append([]byte{'K'}, key...)
}

func memberKey(set, member string) []byte {
	k := append([]byte{'S'}, set...)
	k = append(k, 0)
	return append(k, member...)
}

func setLowerBound(set string) []byte {
	return memberKey(set, "")
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // whole keyspace
}

func (p *Pebble) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, Unavailable(err)
	}
	val, closer, err := p.db.Get(valueKey(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Unavailable(err)
	}
	defer closer.Close()
	if len(val) < 8 {
		return nil, false, nil
	}
	deadline := int64(binary.BigEndian.Uint64(val[:8]))
	if deadline != 0 && time.Now().UnixNano() > deadline {
		_ = p.db.Delete(valueKey(key), p.wo)
		return nil, false, nil
	}
	out := make([]byte, len(val)-8)
	copy(out, val[8:])
	return out, true, nil
}

func (p *Pebble) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	var deadline uint64
	if ttl > 0 {
		deadline = uint64(time.Now().Add(ttl).UnixNano())
	}
	framed := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(value)), deadline)
	framed = append(framed, value...)
	if err := p.db.Set(valueKey(key), framed, p.wo); err != nil {
		return Unavailable(err)
	}
	return nil
}

func (p *Pebble) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	if err := p.db.Delete(valueKey(key), p.wo); err != nil {
		return Unavailable(err)
	}
	return nil
}

func (p *Pebble) SAdd(ctx context.Context, set, member string) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	if err := p.db.Set(memberKey(set, member), nil, p.wo); err != nil {
		return Unavailable(err)
	}
	return nil
}

func (p *Pebble) SRem(ctx context.Context, set, member string) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	if err := p.db.Delete(memberKey(set, member), p.wo); err != nil {
		return Unavailable(err)
	}
	return nil
}

func (p *Pebble) SMembers(ctx context.Context, set string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(err)
	}
	lo := setLowerBound(set)
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: lo,
		UpperBound: keyUpperBound(lo),
	})
	if err != nil {
		return nil, Unavailable(err)
	}
	defer it.Close()
	members := []string{}
	for valid := it.First(); valid; valid = it.Next() {
		members = append(members, string(it.Key()[len(lo):]))
	}
	if err := it.Error(); err != nil {
		return nil, Unavailable(err)
	}
	return members, nil
}

func (p *Pebble) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(err)
	}
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{'K'},
		UpperBound: []byte{'L'},
	})
	if err != nil {
		return nil, Unavailable(err)
	}
	defer it.Close()
	keys := []string{}
	for valid := it.First(); valid; valid = it.Next() {
		key := string(it.Key()[1:])
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	if err := it.Error(); err != nil {
		return nil, Unavailable(err)
	}
	return keys, nil
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
