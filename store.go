package contentstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/store_errors"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/google/uuid"
)

// Descriptor configures the generic engine for one record kind. Facades
// are thin configurations over the engine: key prefixes, invariants and
// index attributes, nothing else.
type Descriptor[T record.Entity] struct {
	Kind string
	New  func() T
	// IndexSets resolves the record's current attributes to the index-set
	// keys it belongs to (beyond the implicit all-set).
	IndexSets func(T) []string
	// Validate holds write-time invariants, e.g. status transitions.
	// Field presence is the codec's job, not Validate's.
	Validate func(T) error
	// SearchText returns the fields the linear-scan search matches
	// against. Nil means the kind is not searchable.
	SearchText func(T) []string
}

// Store is the generic CRUD-plus-query engine. One instance per record
// kind; all of them share a single explicitly-passed kv.Store.
//
// Within one operation the primary record write always precedes index
// maintenance. Index failures after a successful primary write are logged
// as consistency warnings and not rolled back: the repair path is the
// count resync plus the skip-divergent read policy.
type Store[T record.Entity] struct {
	kv   kv.Store
	ix   *Indexer
	log  utils.Logger
	desc Descriptor[T]
}

func NewStore[T record.Entity](store kv.Store, ix *Indexer, log utils.Logger, desc Descriptor[T]) *Store[T] {
	return &Store[T]{kv: store, ix: ix, log: log, desc: desc}
}

func (s *Store[T]) indexSets(rec T) []string {
	if s.desc.IndexSets == nil {
		return nil
	}
	return s.desc.IndexSets(rec)
}

func (s *Store[T]) validate(rec T) error {
	if err := rec.Validate(); err != nil {
		return errors.Join(store_errors.ErrInvalidRecord, err)
	}
	if s.desc.Validate != nil {
		if err := s.desc.Validate(rec); err != nil {
			if errors.Is(err, store_errors.ErrInvalidRecord) {
				return err
			}
			return errors.Join(store_errors.ErrInvalidRecord, err)
		}
	}
	return nil
}

// Create persists a new record, assigning an id when the caller left it
// empty, and registers it with the index maintainer.
func (s *Store[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	m := rec.Rec()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if err := s.validate(rec); err != nil {
		return zero, err
	}
	data, err := record.Encode(rec)
	if err != nil {
		return zero, err
	}
	if err := s.kv.Set(ctx, primaryKey(s.desc.Kind, m.ID), data, 0); err != nil {
		return zero, err
	}
	if err := s.ix.OnCreate(ctx, s.desc.Kind, m.ID, s.indexSets(rec)); err != nil {
		s.ix.Warn(ctx, s.desc.Kind, "index_create_failed", "id", m.ID, "error", err)
	}
	return rec, nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	data, ok, err := s.kv.Get(ctx, primaryKey(s.desc.Kind, id))
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, store_errors.ErrNotFound
	}
	rec := s.desc.New()
	if err := record.Decode(data, rec); err != nil {
		return zero, err
	}
	return rec, nil
}

// Update loads the record, applies mutate to it, re-validates, persists
// and patches index memberships from the before/after pair this writer
// observed. Concurrent updates race last-write-wins at the primary key;
// each writer reconciles only its own transition.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T
	data, ok, err := s.kv.Get(ctx, primaryKey(s.desc.Kind, id))
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, store_errors.ErrNotFound
	}
	old := s.desc.New()
	if err := record.Decode(data, old); err != nil {
		return zero, err
	}
	oldSets := s.indexSets(old)

	rec := s.desc.New()
	if err := record.Decode(data, rec); err != nil {
		return zero, err
	}
	if err := mutate(rec); err != nil {
		return zero, err
	}
	rec.Rec().ID = id
	rec.Rec().UpdatedAt = time.Now().UTC()
	if err := s.validate(rec); err != nil {
		return zero, err
	}
	out, err := record.Encode(rec)
	if err != nil {
		return zero, err
	}
	if err := s.kv.Set(ctx, primaryKey(s.desc.Kind, id), out, 0); err != nil {
		return zero, err
	}
	if err := s.ix.OnUpdate(ctx, s.desc.Kind, id, oldSets, s.indexSets(rec)); err != nil {
		s.ix.Warn(ctx, s.desc.Kind, "index_update_failed", "id", id, "error", err)
	}
	return rec, nil
}

// Delete removes the primary key and every index membership derivable from
// the record's last known attributes.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	data, ok, err := s.kv.Get(ctx, primaryKey(s.desc.Kind, id))
	if err != nil {
		return err
	}
	if !ok {
		return store_errors.ErrNotFound
	}
	var sets []string
	rec := s.desc.New()
	if err := record.Decode(data, rec); err != nil {
		// last attributes unrecoverable, still unlink from the all-set
		s.ix.Warn(ctx, s.desc.Kind, "corrupt_on_delete", "id", id, "error", err)
	} else {
		sets = s.indexSets(rec)
	}
	if err := s.kv.Delete(ctx, primaryKey(s.desc.Kind, id)); err != nil {
		return err
	}
	if err := s.ix.OnDelete(ctx, s.desc.Kind, id, sets); err != nil {
		s.ix.Warn(ctx, s.desc.Kind, "index_delete_failed", "id", id, "error", err)
	}
	return nil
}

// List resolves an index set and fetches its member records. Members whose
// primary key has vanished, or whose stored value no longer decodes, are
// skipped rather than failing the listing; each skip is counted and logged
// as a consistency warning.
func (s *Store[T]) List(ctx context.Context, set string) ([]T, error) {
	ids, err := s.kv.SMembers(ctx, set)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		data, ok, err := s.kv.Get(ctx, primaryKey(s.desc.Kind, id))
		if err != nil {
			return nil, err
		}
		if !ok {
			s.ix.Warn(ctx, s.desc.Kind, "divergent_index", "id", id, "set", set)
			continue
		}
		rec := s.desc.New()
		if err := record.Decode(data, rec); err != nil {
			s.ix.Warn(ctx, s.desc.Kind, "corrupt_record", "id", id, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store[T]) All(ctx context.Context) ([]T, error) {
	return s.List(ctx, allKey(s.desc.Kind))
}

// Search scans the kind's all-set and keeps records whose search text
// contains term, case-insensitively. This is a deliberate linear scan
// bounded by the total record count of the kind: there is no inverted
// index, and the operation does not scale past that bound.
func (s *Store[T]) Search(ctx context.Context, term string) ([]T, error) {
	if s.desc.SearchText == nil {
		return nil, nil
	}
	recs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	out := make([]T, 0)
	for _, rec := range recs {
		for _, text := range s.desc.SearchText(rec) {
			if strings.Contains(strings.ToLower(text), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

// SortByCreatedDesc orders records newest first with the id as tiebreak,
// giving the stable order pagination needs.
func SortByCreatedDesc[T record.Entity](recs []T) {
	sort.SliceStable(recs, func(i, j int) bool {
		mi, mj := recs[i].Rec(), recs[j].Rec()
		if !mi.CreatedAt.Equal(mj.CreatedAt) {
			return mi.CreatedAt.After(mj.CreatedAt)
		}
		return mi.ID < mj.ID
	})
}
