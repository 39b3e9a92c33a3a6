package database

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"gorm.io/gorm/clause"
)

// LoadLiveProjections implements forecast.Repository: the assignment's live
// forward projection rows for their most recent computed_date, ordered by
// projection_date.
func (r *Repository) LoadLiveProjections(ctx context.Context, assignmentID string) ([]model.LiveForwardProjection, error) {
	var latestComputed time.Time
	row := r.db.WithContext(ctx).Model(&LiveForwardProjection{}).
		Where("assignment_id = ?", assignmentID).
		Select("MAX(computed_date)").Row()
	if err := row.Scan(&latestComputed); err != nil {
		return nil, nil
	}
	if latestComputed.IsZero() {
		return nil, nil
	}

	var rows []LiveForwardProjection
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND computed_date = ?", assignmentID, latestComputed).
		Order("projection_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.LiveForwardProjection, len(rows))
	for i, row := range rows {
		out[i] = liveProjectionToModel(row)
	}
	return out, nil
}

// LoadPinnedProjectionRows implements forecast.Repository: the assignment's
// batch's pinned scenario's ScenarioProjection rows, used for the
// originally-planned-harvest variance comparison (§4.8). Returns nil, nil
// when the batch has no pinned scenario.
func (r *Repository) LoadPinnedProjectionRows(ctx context.Context, assignmentID string) ([]model.ScenarioProjection, error) {
	var a Assignment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", assignmentID).Error; err != nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, err)
	}
	var batch Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", a.BatchID).Error; err != nil {
		return nil, fmt.Errorf("batch %s: %w", a.BatchID, err)
	}
	if batch.PinnedScenarioID == nil {
		return nil, nil
	}

	var rows []ScenarioProjection
	if err := r.db.WithContext(ctx).
		Where("scenario_id = ?", *batch.PinnedScenarioID).
		Order("day_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ScenarioProjection, len(rows))
	for i, row := range rows {
		out[i] = scenarioProjectionToModel(row)
	}
	return out, nil
}

// LoadBiologicalConstraints implements forecast.Repository: the harvest and
// transfer thresholds configured on the assignment's batch's pinned or
// attached scenario, or nil if the scenario itself has none set.
func (r *Repository) LoadBiologicalConstraints(ctx context.Context, assignmentID string) (*model.BiologicalConstraints, error) {
	scenario, err := r.resolveScenarioForAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return scenario.BiologicalConstraints, nil
}

// LoadPlanningFlags implements forecast.Repository. AquaMind has no
// dedicated "planned harvest" entity — harvest planning lives with an
// external planning collaborator (§4.8) — so has_planned_harvest is read off
// the batch's own recorded end date, and has_planned_transfer off any
// pending TransferAction sourced from this assignment.
func (r *Repository) LoadPlanningFlags(ctx context.Context, assignmentID string) (hasPlannedHarvest, hasPlannedTransfer bool, err error) {
	var a Assignment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", assignmentID).Error; err != nil {
		return false, false, fmt.Errorf("assignment %s: %w", assignmentID, err)
	}
	var batch Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", a.BatchID).Error; err != nil {
		return false, false, fmt.Errorf("batch %s: %w", a.BatchID, err)
	}
	hasPlannedHarvest = batch.ActualEndDate != nil

	var count int64
	if err := r.db.WithContext(ctx).Model(&TransferAction{}).
		Where("source_assignment_id = ? AND status = ?", assignmentID, string(model.TransferPending)).
		Count(&count).Error; err != nil {
		return false, false, err
	}
	hasPlannedTransfer = count > 0

	return hasPlannedHarvest, hasPlannedTransfer, nil
}

// SaveForecastSummary implements forecast.Repository: upserts the
// ContainerForecastSummary row for one assignment.
func (r *Repository) SaveForecastSummary(ctx context.Context, summary model.ContainerForecastSummary) error {
	row := forecastSummaryFromModel(summary)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// ListForecastSummaries returns every persisted ContainerForecastSummary,
// backing the `aquamind report` planning digest.
func (r *Repository) ListForecastSummaries(ctx context.Context) ([]model.ContainerForecastSummary, error) {
	var rows []ContainerForecastSummary
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ContainerForecastSummary, len(rows))
	for i, row := range rows {
		out[i] = forecastSummaryToModel(row)
	}
	return out, nil
}
