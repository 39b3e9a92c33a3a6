package database

import (
	"context"

	"github.com/aquamind/growthengine/pkg/model"
	"gorm.io/gorm"
)

// LoadLatestActualState returns the most recent ActualDailyAssignmentState
// row for assignmentID, or nil if the assignment has never been assimilated.
// Shared by pkg/assimilation (source-assignment lookup), pkg/liveprojection,
// and pkg/forecast.
func (r *Repository) LoadLatestActualState(ctx context.Context, assignmentID string) (*model.ActualDailyAssignmentState, error) {
	var row ActualDailyAssignmentState
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
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
