package database

import (
	"context"
	"fmt"

	"github.com/aquamind/growthengine/pkg/model"
)

// resolveScenarioForBatch returns the batch's pinned scenario if set,
// otherwise the scenario directly attached to the batch (scenario.batch_id),
// erroring if neither exists. Shared by assimilation's per-assignment model
// lookups and liveprojection.Repository.LoadScenarioForAssignment (§4.7 step 1).
func (r *Repository) resolveScenarioForBatch(ctx context.Context, batchID string) (model.Scenario, error) {
	var batch Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", batchID).Error; err != nil {
		return model.Scenario{}, fmt.Errorf("batch %s: %w", batchID, err)
	}

	var row Scenario
	if batch.PinnedScenarioID != nil {
		if err := r.db.WithContext(ctx).First(&row, "id = ?", *batch.PinnedScenarioID).Error; err != nil {
			return model.Scenario{}, fmt.Errorf("pinned scenario %s: %w", *batch.PinnedScenarioID, err)
		}
		return scenarioToModel(row), nil
	}

	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&row).Error; err != nil {
		return model.Scenario{}, fmt.Errorf("batch %s has no pinned or attached scenario: %w", batchID, err)
	}
	return scenarioToModel(row), nil
}

func (r *Repository) resolveScenarioForAssignment(ctx context.Context, assignmentID string) (model.Scenario, error) {
	var a Assignment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", assignmentID).Error; err != nil {
		return model.Scenario{}, fmt.Errorf("assignment %s: %w", assignmentID, err)
	}
	return r.resolveScenarioForBatch(ctx, a.BatchID)
}
