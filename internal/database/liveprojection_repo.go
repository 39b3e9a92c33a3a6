package database

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadRecentSensorStates implements liveprojection.Repository: the assimilated
// states in [before-windowDays, before) used for the temperature bias window
// (§4.7 step 2). Every row in the window is returned; pkg/liveprojection
// drops rows with no temperature or a profile-derived one.
func (r *Repository) LoadRecentSensorStates(ctx context.Context, assignmentID string, before time.Time, windowDays int) ([]model.ActualDailyAssignmentState, error) {
	start := before.AddDate(0, 0, -windowDays)
	var rows []ActualDailyAssignmentState
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND date >= ? AND date < ?", assignmentID, start, before).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ActualDailyAssignmentState, len(rows))
	for i, row := range rows {
		out[i] = actualStateToModel(row)
	}
	return out, nil
}

// SaveLiveProjections implements liveprojection.Repository: replaces any
// existing rows for (assignmentID, computedDate) with the new set, in one
// transaction (§4.7 step 5).
func (r *Repository) SaveLiveProjections(ctx context.Context, assignmentID string, computedDate time.Time, rows []model.LiveForwardProjection) error {
	dbRows := make([]LiveForwardProjection, len(rows))
	for i, row := range rows {
		dbRows[i] = liveProjectionFromModel(row)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ? AND computed_date = ?", assignmentID, computedDate).
			Delete(&LiveForwardProjection{}).Error; err != nil {
			return fmt.Errorf("clear live projections for %s: %w", assignmentID, err)
		}
		if len(dbRows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&dbRows).Error; err != nil {
			return fmt.Errorf("save live projections for %s: %w", assignmentID, err)
		}
		return nil
	})
}
