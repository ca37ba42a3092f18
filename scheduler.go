package contentstore

import (
	"context"
	"time"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
)

// ScheduleResult reports per-item outcomes of a publish pass. Posts that
// transitioned before a later one failed stay published; there is no
// rollback across items.
type ScheduleResult struct {
	Processed int       `json:"processed"`
	Failed    []string  `json:"failed"`
	Stats     BlogStats `json:"stats"`
}

// PublishScheduled scans all posts for status=scheduled with an elapsed
// scheduledAt and transitions each to published, which moves it into the
// published index and out of the scheduled bookkeeping. The operation is
// idempotent under re-invocation from a cron-style external trigger:
// already-published posts no longer match the filter.
func (b *Blog) PublishScheduled(ctx context.Context, now time.Time) (ScheduleResult, error) {
	result := ScheduleResult{Failed: []string{}}
	posts, err := b.posts.All(ctx)
	if err != nil {
		return result, err
	}
	for _, p := range posts {
		if p.Status != record.StatusScheduled {
			continue
		}
		if p.ScheduledAt == nil || p.ScheduledAt.After(now) {
			continue
		}
		_, err := b.posts.Update(ctx, p.ID, func(post *record.Post) error {
			// re-check against the stored state; another trigger run
			// may have consumed this one already
			if post.Status != record.StatusScheduled {
				return nil
			}
			post.Status = record.StatusPublished
			post.ScheduledAt = nil
			return nil
		})
		if err != nil {
			b.log.ErrorCtx(ctx, "scheduled publish failed", "id", p.ID, "error", err)
			result.Failed = append(result.Failed, p.ID)
			continue
		}
		result.Processed++
	}
	stats, err := b.Stats(ctx)
	if err != nil {
		return result, err
	}
	result.Stats = stats
	return result, nil
}
