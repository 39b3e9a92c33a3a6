package database

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/internal/dispatch"
)

const (
	taskStatusPending = "pending"
	taskStatusDone    = "done"
	taskStatusFailed  = "failed"
)

// Enqueue implements dispatch.TaskQueue: durably records one recompute
// window as a RecomputeTask row, so a crashed dispatcher or scheduler never
// loses a window that was already accepted (unlike the in-memory dedup
// cache, which is deliberately best-effort, §4.9).
func (r *Repository) Enqueue(ctx context.Context, window dispatch.RecomputeWindow) error {
	task := RecomputeTask{
		AssignmentID: window.AssignmentID,
		BatchID:      window.BatchID,
		WindowStart:  window.Start,
		WindowEnd:    window.End,
		Status:       taskStatusPending,
		CreatedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).Create(&task).Error
}

// ClaimPendingTasks returns up to limit pending RecomputeTask rows, oldest
// first, for a worker to process. It does not mark them claimed — callers
// processing sequentially from a single worker are expected to call
// MarkTaskDone/MarkTaskFailed promptly; concurrent multi-worker claiming is
// out of scope for this single-process runner (cmd/aquamind serve runs one).
func (r *Repository) ClaimPendingTasks(ctx context.Context, limit int) ([]RecomputeTask, error) {
	var tasks []RecomputeTask
	q := r.db.WithContext(ctx).Where("status = ?", taskStatusPending).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkTaskDone records successful processing of a RecomputeTask.
func (r *Repository) MarkTaskDone(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&RecomputeTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       taskStatusDone,
			"processed_at": now,
		}).Error
}

// MarkTaskFailed records a processing failure against a RecomputeTask,
// preserving the error for diagnostics.
func (r *Repository) MarkTaskFailed(ctx context.Context, id uint, cause error) error {
	now := time.Now()
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	return r.db.WithContext(ctx).Model(&RecomputeTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       taskStatusFailed,
			"processed_at": now,
			"error":        errText,
		}).Error
}
