package database

import (
	"context"

	"github.com/aquamind/growthengine/pkg/model"
)

// ListActiveBatchIDs returns every ACTIVE batch's ID, for
// `recompute_recent_daily_states` run without --batch-id (§6).
func (r *Repository) ListActiveBatchIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&Batch{}).Where("status = ?", string(model.BatchActive)).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// LoadActiveScenarioPinnedBatches implements scheduler.BatchSource: every
// ACTIVE batch (or the subset named by batchIDs), split into those with a
// pinned scenario (swept) and those without (skipped and warned, §4.10).
func (r *Repository) LoadActiveScenarioPinnedBatches(ctx context.Context, batchIDs []string) (pinned []model.Batch, skippedUnpinned []model.Batch, err error) {
	q := r.db.WithContext(ctx).Where("status = ?", string(model.BatchActive))
	if len(batchIDs) > 0 {
		q = q.Where("id IN ?", batchIDs)
	}

	var rows []Batch
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		b := batchToModel(row)
		if b.PinnedScenarioID != nil {
			pinned = append(pinned, b)
		} else {
			skippedUnpinned = append(skippedUnpinned, b)
		}
	}
	return pinned, skippedUnpinned, nil
}
