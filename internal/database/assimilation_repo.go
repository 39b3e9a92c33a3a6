package database

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamind/growthengine/pkg/anchor"
	"github.com/aquamind/growthengine/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dateKey truncates a timestamp to a comparable calendar-day key, matching
// pkg/anchor's own truncation so map lookups agree across packages.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LoadAssignment implements assimilation.Repository.
func (r *Repository) LoadAssignment(ctx context.Context, assignmentID string) (model.Assignment, error) {
	var a Assignment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", assignmentID).Error; err != nil {
		return model.Assignment{}, err
	}
	return assignmentToModel(a), nil
}

// LoadActiveAssignmentsForBatch returns every assignment of batchID that has
// not yet departed, for worker processing of batch-scoped RecomputeTask rows
// (a MortalityEvent has no single assignment of its own, §4.5.5).
func (r *Repository) LoadActiveAssignmentsForBatch(ctx context.Context, batchID string) ([]model.Assignment, error) {
	var rows []Assignment
	if err := r.db.WithContext(ctx).
		Where("batch_id = ? AND departure_date IS NULL", batchID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Assignment, len(rows))
	for i, row := range rows {
		out[i] = assignmentToModel(row)
	}
	return out, nil
}

// LoadBatchStartDate implements assimilation.Repository.
func (r *Repository) LoadBatchStartDate(ctx context.Context, batchID string) (time.Time, error) {
	var b Batch
	if err := r.db.WithContext(ctx).First(&b, "id = ?", batchID).Error; err != nil {
		return time.Time{}, err
	}
	return b.StartDate, nil
}

// LoadPriorState implements assimilation.Repository: the latest state strictly
// before the window start, or nil if none exists yet.
func (r *Repository) LoadPriorState(ctx context.Context, assignmentID string, before time.Time) (*model.ActualDailyAssignmentState, error) {
	var row ActualDailyAssignmentState
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND date < ?", assignmentID, before).
		Order("date DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	state := actualStateToModel(row)
	return &state, nil
}

// LoadAnchorInputs implements assimilation.Repository: one bulk preload of
// every anchor source over [start, end] (§4.5.1), fused by pkg/anchor.
func (r *Repository) LoadAnchorInputs(ctx context.Context, assignmentID string, start, end time.Time) (anchor.Inputs, error) {
	var samples []GrowthSample
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND sample_date BETWEEN ? AND ?", assignmentID, start, end).
		Find(&samples).Error; err != nil {
		return anchor.Inputs{}, fmt.Errorf("growth samples: %w", err)
	}

	var transfers []TransferAction
	if err := r.db.WithContext(ctx).
		Where("destination_assignment_id = ? AND transfer_date BETWEEN ? AND ?", assignmentID, start, end).
		Find(&transfers).Error; err != nil {
		return anchor.Inputs{}, fmt.Errorf("transfers: %w", err)
	}

	var treatments []Treatment
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND treatment_date BETWEEN ? AND ?", assignmentID, start, end).
		Find(&treatments).Error; err != nil {
		return anchor.Inputs{}, fmt.Errorf("treatments: %w", err)
	}

	in := anchor.Inputs{AssignmentID: assignmentID}
	for _, s := range samples {
		in.GrowthSamples = append(in.GrowthSamples, model.GrowthSample{
			ID:           s.ID,
			AssignmentID: s.AssignmentID,
			SampleDate:   s.SampleDate,
			AvgWeightG:   s.AvgWeightG,
		})
	}
	for _, t := range transfers {
		in.Transfers = append(in.Transfers, model.TransferAction{
			ID:                      t.ID,
			SourceAssignmentID:      t.SourceAssignmentID,
			DestinationAssignmentID: t.DestinationAssignmentID,
			TransferDate:            t.TransferDate,
			Status:                  model.TransferStatus(t.Status),
			PopulationCount:         t.PopulationCount,
			MeasuredAvgWeightG:      t.MeasuredAvgWeightG,
			SelectionMethod:         model.SelectionMethod(t.SelectionMethod),
		})
	}
	for _, t := range treatments {
		in.Treatments = append(in.Treatments, model.Treatment{
			ID:                 t.ID,
			AssignmentID:       t.AssignmentID,
			TreatmentDate:      t.TreatmentDate,
			IncludesWeighing:   t.IncludesWeighing,
			MeasuredAvgWeightG: t.MeasuredAvgWeightG,
			LiceCount:          t.LiceCount,
		})
	}
	return in, nil
}

// LoadDailyTemperatures implements assimilation.Repository: one mean reading
// per calendar day for the container's "temperature" environmental parameter.
func (r *Repository) LoadDailyTemperatures(ctx context.Context, containerID string, start, end time.Time) (map[time.Time]float64, error) {
	var readings []EnvironmentalReading
	if err := r.db.WithContext(ctx).
		Where("container_id = ? AND parameter = ? AND recorded_at BETWEEN ? AND ?", containerID, "temperature", start, end).
		Order("recorded_at ASC").
		Find(&readings).Error; err != nil {
		return nil, err
	}

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, rd := range readings {
		key := dateKey(rd.RecordedAt)
		sums[key] += rd.Value
		counts[key]++
	}
	out := make(map[time.Time]float64, len(sums))
	for k, sum := range sums {
		out[k] = sum / float64(counts[k])
	}
	return out, nil
}

// LoadDailyMortalityTotals implements assimilation.Repository: per-day sum of
// mortality counts affecting the assignment's batch/container (§4.5.5).
func (r *Repository) LoadDailyMortalityTotals(ctx context.Context, assignmentID string, start, end time.Time) (map[time.Time]int64, error) {
	a, err := r.LoadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	var events []MortalityEvent
	if err := r.db.WithContext(ctx).
		Where("batch_id = ? AND event_date BETWEEN ? AND ? AND (container_id IS NULL OR container_id = ?)",
			a.BatchID, start, end, a.ContainerID).
		Find(&events).Error; err != nil {
		return nil, err
	}

	out := make(map[time.Time]int64, len(events))
	for _, ev := range events {
		out[dateKey(ev.EventDate)] += ev.Count
	}
	return out, nil
}

// LoadDailyFeedTotals implements assimilation.Repository: per-day sum of feed
// delivered to the assignment.
func (r *Repository) LoadDailyFeedTotals(ctx context.Context, assignmentID string, start, end time.Time) (map[time.Time]float64, error) {
	var events []FeedingEvent
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND feeding_date BETWEEN ? AND ?", assignmentID, start, end).
		Find(&events).Error; err != nil {
		return nil, err
	}

	out := make(map[time.Time]float64, len(events))
	for _, ev := range events {
		out[dateKey(ev.FeedingDate)] += ev.AmountKg
	}
	return out, nil
}

// LoadDailyPlacements implements assimilation.Repository: per-day sum of
// completed transfer-in population counts for the assignment (§4.5.2).
func (r *Repository) LoadDailyPlacements(ctx context.Context, assignmentID string, start, end time.Time) (map[time.Time]int64, error) {
	var transfers []TransferAction
	if err := r.db.WithContext(ctx).
		Where("destination_assignment_id = ? AND status = ? AND transfer_date BETWEEN ? AND ?",
			assignmentID, string(model.TransferCompleted), start, end).
		Find(&transfers).Error; err != nil {
		return nil, err
	}

	out := make(map[time.Time]int64, len(transfers))
	for _, t := range transfers {
		out[dateKey(t.TransferDate)] += t.PopulationCount
	}
	return out, nil
}

// LoadStageConstraints implements assimilation.Repository (and is reused
// identically by projection/liveprojection).
func (r *Repository) LoadStageConstraints(ctx context.Context) ([]model.StageConstraint, error) {
	var rows []StageConstraint
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.StageConstraint, len(rows))
	for i, row := range rows {
		out[i] = stageConstraintToModel(row)
	}
	return out, nil
}

// LoadScenarioForAssignment implements assimilation.Repository and
// liveprojection.Repository: resolves the assignment's batch's pinned or
// attached scenario.
func (r *Repository) LoadScenarioForAssignment(ctx context.Context, assignmentID string) (model.Scenario, error) {
	return r.resolveScenarioForAssignment(ctx, assignmentID)
}

// LoadTGCModel implements the by-ID variant shared by assimilation,
// projection, and liveprojection.
func (r *Repository) LoadTGCModel(ctx context.Context, id string) (model.TGCModel, model.TemperatureProfile, error) {
	var row TGCModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.TGCModel{}, model.TemperatureProfile{}, fmt.Errorf("tgc model %s: %w", id, err)
	}
	var profileRow TemperatureProfile
	if err := r.db.WithContext(ctx).First(&profileRow, "id = ?", row.ProfileID).Error; err != nil {
		return model.TGCModel{}, model.TemperatureProfile{}, fmt.Errorf("temperature profile %s: %w", row.ProfileID, err)
	}
	return tgcModelToModel(row), temperatureProfileToModel(profileRow), nil
}

// LoadFCRModel implements the by-ID variant shared by assimilation,
// projection, and liveprojection.
func (r *Repository) LoadFCRModel(ctx context.Context, id string) (model.FCRModel, error) {
	var row FCRModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.FCRModel{}, fmt.Errorf("fcr model %s: %w", id, err)
	}
	return fcrModelToModel(row), nil
}

// LoadMortalityModel implements the by-ID variant shared by assimilation,
// projection, and liveprojection.
func (r *Repository) LoadMortalityModel(ctx context.Context, id string) (model.MortalityModel, error) {
	var row MortalityModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.MortalityModel{}, fmt.Errorf("mortality model %s: %w", id, err)
	}
	return mortalityModelToModel(row), nil
}

// SaveTGCModel upserts a TGC model and its temperature profile, backing the
// `aquamind load-models` YAML model-pack importer.
func (r *Repository) SaveTGCModel(ctx context.Context, m model.TGCModel, profile model.TemperatureProfile) error {
	row := temperatureProfileFromModel(profile)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("saving temperature profile %s: %w", profile.ID, err)
	}
	tgcRow := tgcModelFromModel(m)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&tgcRow).Error; err != nil {
		return fmt.Errorf("saving tgc model %s: %w", m.ID, err)
	}
	return nil
}

// SaveFCRModel upserts an FCR model.
func (r *Repository) SaveFCRModel(ctx context.Context, m model.FCRModel) error {
	row := fcrModelFromModel(m)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// SaveMortalityModel upserts a mortality model.
func (r *Repository) SaveMortalityModel(ctx context.Context, m model.MortalityModel) error {
	row := mortalityModelFromModel(m)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// LoadSourceAssignment implements assimilation.Repository.
func (r *Repository) LoadSourceAssignment(ctx context.Context, sourceAssignmentID string) (model.Assignment, error) {
	return r.LoadAssignment(ctx, sourceAssignmentID)
}

// LoadSourceLatestState implements assimilation.Repository.
func (r *Repository) LoadSourceLatestState(ctx context.Context, sourceAssignmentID string) (*model.ActualDailyAssignmentState, error) {
	return r.LoadLatestActualState(ctx, sourceAssignmentID)
}

// HadCompletedTransferIn implements assimilation.Repository: whether a
// completed transfer landed on the assignment on exactly this date (§4.5.2
// double-counting guard).
func (r *Repository) HadCompletedTransferIn(ctx context.Context, assignmentID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TransferAction{}).
		Where("destination_assignment_id = ? AND status = ? AND transfer_date = ?",
			assignmentID, string(model.TransferCompleted), date).
		Count(&count).Error
	return count > 0, err
}

// WriteStates implements assimilation.Repository: existing (assignment_id,
// date) rows are updated in place, new dates inserted, all in one transaction
// (§4.5.4).
func (r *Repository) WriteStates(ctx context.Context, assignmentID string, rows []model.ActualDailyAssignmentState) error {
	if len(rows) == 0 {
		return nil
	}
	dbRows := make([]ActualDailyAssignmentState, len(rows))
	for i, row := range rows {
		dbRows[i] = actualStateFromModel(row)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&dbRows).Error; err != nil {
			return fmt.Errorf("write states for %s: %w", assignmentID, err)
		}
		return nil
	})
}
