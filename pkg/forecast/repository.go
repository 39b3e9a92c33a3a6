package forecast

import (
	"context"

	"github.com/aquamind/growthengine/pkg/model"
)

// Repository is the data-access seam the Forecast Summarizer depends on.
type Repository interface {
	// LoadLatestActualState returns the most recent actual state for the
	// assignment, for the current-state snapshot.
	LoadLatestActualState(ctx context.Context, assignmentID string) (*model.ActualDailyAssignmentState, error)

	// LoadLiveProjections returns the assignment's live forward projection
	// rows for the most recent computed_date, ordered by projection_date.
	LoadLiveProjections(ctx context.Context, assignmentID string) ([]model.LiveForwardProjection, error)

	// LoadPinnedProjectionRows returns the batch's pinned scenario's
	// ScenarioProjection rows, ordered by day_number, used to find the
	// originally planned harvest crossing for variance (§4.8). Returns nil,
	// nil when the assignment's batch has no pinned run.
	LoadPinnedProjectionRows(ctx context.Context, assignmentID string) ([]model.ScenarioProjection, error)

	// LoadBiologicalConstraints returns the harvest/transfer thresholds
	// configured for the assignment's batch's scenario, or nil if unset
	// (falls back to package defaults).
	LoadBiologicalConstraints(ctx context.Context, assignmentID string) (*model.BiologicalConstraints, error)

	// LoadPlanningFlags reports whether an external planning collaborator has
	// a planned harvest/transfer recorded for the assignment (§4.8).
	LoadPlanningFlags(ctx context.Context, assignmentID string) (hasPlannedHarvest, hasPlannedTransfer bool, err error)

	// SaveForecastSummary upserts the ContainerForecastSummary for one
	// assignment.
	SaveForecastSummary(ctx context.Context, summary model.ContainerForecastSummary) error
}
