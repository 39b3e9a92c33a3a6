package liveprojection

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
)

// Repository is the data-access seam the Live Projection Engine depends on.
// As with assimilation.Repository and projection.Repository, internal/database
// is the only implementation; pkg/liveprojection never imports GORM.
type Repository interface {
	// LoadLatestActualState returns the most recent ActualDailyAssignmentState
	// row for assignmentID, or nil if the assignment has never been
	// assimilated.
	LoadLatestActualState(ctx context.Context, assignmentID string) (*model.ActualDailyAssignmentState, error)

	// LoadScenarioForAssignment resolves the batch's pinned scenario, or the
	// scenario directly attached to the assignment's batch, and errors if
	// neither exists (§4.7 step 1).
	LoadScenarioForAssignment(ctx context.Context, assignmentID string) (model.Scenario, error)

	LoadTGCModel(ctx context.Context, id string) (model.TGCModel, model.TemperatureProfile, error)
	LoadFCRModel(ctx context.Context, id string) (model.FCRModel, error)
	LoadMortalityModel(ctx context.Context, id string) (model.MortalityModel, error)
	LoadStageConstraints(ctx context.Context) ([]model.StageConstraint, error)

	// LoadRecentSensorStates returns the actual states for assignmentID in
	// the window [before-windowDays, before), used to compute the temperature
	// bias (§4.7 step 2); computeBias keeps only the sensor-sourced ones.
	LoadRecentSensorStates(ctx context.Context, assignmentID string, before time.Time, windowDays int) ([]model.ActualDailyAssignmentState, error)

	// SaveLiveProjections deletes any existing rows for (assignmentID,
	// computedDate) and bulk-inserts rows, in one transaction (§4.7 step 5).
	SaveLiveProjections(ctx context.Context, assignmentID string, computedDate time.Time, rows []model.LiveForwardProjection) error
}
