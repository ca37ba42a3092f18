// Package contentstore implements a document store with secondary indexing
// and scheduled state transitions over a flat key-value backend.
//
// Records live under one primary key each. Every derived view — the
// per-kind id set, attribute membership sets, denormalized counters — is
// maintained by the Indexer and can be rebuilt from the primary records.
// The backend has no transactions, so the store relies on write ordering
// (primary record first, indexes after) and idempotent resync instead of
// rollback: a crash can leave an under-indexed record, never a phantom
// index entry for a record that does not exist.
package contentstore

import (
	"context"
	"sync"
	"time"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v3"
)

var IndexOps = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "contentstore",
	Subsystem: "indexer",
	Name:      "ops",
}, []string{"kind", "op"})

var ConsistencyWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "contentstore",
	Subsystem: "indexer",
	Name:      "consistency_warnings",
}, []string{"kind", "reason"})

var ResyncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "contentstore",
	Subsystem: "indexer",
	Name:      "resync_duration_seconds",
	Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
}, []string{"kind"})

// Indexer owns every index-set write in the system. No other component may
// touch index keys; record mutators call one of the three entry points and
// the rest is derived.
type Indexer struct {
	kv          kv.Store
	log         utils.Logger
	resyncLocks *xsync.MapOf[string, *sync.Mutex]
}

func NewIndexer(store kv.Store, log utils.Logger) *Indexer {
	return &Indexer{
		kv:          store,
		log:         log,
		resyncLocks: xsync.NewMapOf[string, *sync.Mutex](),
	}
}

// OnCreate adds id to the kind's all-set and to every attribute set the
// record currently implies.
func (ix *Indexer) OnCreate(ctx context.Context, kind, id string, sets []string) error {
	IndexOps.WithLabelValues(kind, "create").Inc()
	if err := ix.kv.SAdd(ctx, allKey(kind), id); err != nil {
		return err
	}
	for _, set := range sets {
		if err := ix.kv.SAdd(ctx, set, id); err != nil {
			return err
		}
	}
	return nil
}

// OnUpdate patches memberships by diffing the attribute sets of the
// before/after pair the writer itself observed. The diff is mandatory: an
// add-only strategy leaves the id behind in sets for attribute values the
// record no longer holds.
func (ix *Indexer) OnUpdate(ctx context.Context, kind, id string, oldSets, newSets []string) error {
	IndexOps.WithLabelValues(kind, "update").Inc()
	removed, added := diffSets(oldSets, newSets)
	for _, set := range removed {
		if err := ix.kv.SRem(ctx, set, id); err != nil {
			return err
		}
	}
	for _, set := range added {
		if err := ix.kv.SAdd(ctx, set, id); err != nil {
			return err
		}
	}
	return nil
}

// OnDelete removes id from the all-set and from every attribute set
// derivable from the record's last known attributes.
func (ix *Indexer) OnDelete(ctx context.Context, kind, id string, sets []string) error {
	IndexOps.WithLabelValues(kind, "delete").Inc()
	if err := ix.kv.SRem(ctx, allKey(kind), id); err != nil {
		return err
	}
	for _, set := range sets {
		if err := ix.kv.SRem(ctx, set, id); err != nil {
			return err
		}
	}
	return nil
}

// Warn records a consistency observation: divergence between an index and
// the primary records, or an index write that failed after the primary
// write went through. These are repaired by resync and the skip-divergent
// read policy, not by rollback.
func (ix *Indexer) Warn(ctx context.Context, kind, reason string, args ...any) {
	ConsistencyWarnings.WithLabelValues(kind, reason).Inc()
	ix.log.WarnCtx(ctx, "consistency warning", append([]any{"kind", kind, "reason", reason}, args...)...)
}

// Cardinality reports the current size of an index set.
func (ix *Indexer) Cardinality(ctx context.Context, set string) (int, error) {
	members, err := ix.kv.SMembers(ctx, set)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// UpdateCounts recomputes a denormalized counter for every owner of
// ownerKind from the cardinality of its membership set and stores it via
// apply. It is a full, idempotent resync: run twice with no intervening
// writes it converges to identical, accurate counts. Counters are treated
// as caches that may drift after partial failures; this is the repair.
//
// Resyncs of the same owner kind are serialized within the process;
// interleaving with unrelated writes is safe because the counts are
// re-derived from current membership, not patched by delta.
func (ix *Indexer) UpdateCounts(ctx context.Context, ownerKind string, setFor func(ownerID string) string, apply func(ctx context.Context, ownerID string, count int) error) error {
	lock, _ := ix.resyncLocks.LoadOrStore(ownerKind, &sync.Mutex{})
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		ResyncDuration.WithLabelValues(ownerKind).Observe(time.Since(start).Seconds())
	}()

	owners, err := ix.kv.SMembers(ctx, allKey(ownerKind))
	if err != nil {
		return err
	}
	for _, ownerID := range owners {
		count, err := ix.Cardinality(ctx, setFor(ownerID))
		if err != nil {
			return err
		}
		if err := apply(ctx, ownerID, count); err != nil {
			return err
		}
	}
	return nil
}

func diffSets(oldSets, newSets []string) (removed, added []string) {
	olds := make(map[string]bool, len(oldSets))
	for _, s := range oldSets {
		olds[s] = true
	}
	news := make(map[string]bool, len(newSets))
	for _, s := range newSets {
		news[s] = true
		if !olds[s] {
			added = append(added, s)
		}
	}
	for _, s := range oldSets {
		if !news[s] {
			removed = append(removed, s)
		}
	}
	return
}
