package assimilation

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/pkg/anchor"
	"github.com/aquamind/growthengine/pkg/model"
)

// Repository is the data-access seam the Assimilation Engine depends on. It
// is implemented by internal/database; the engine itself never imports GORM,
// mirroring the teacher's split between pkg/* (pure domain) and
// internal/database (storage). Every call here is a single bulk preload
// (§4.5.1) — no per-day queries.
type Repository interface {
	LoadAssignment(ctx context.Context, assignmentID string) (model.Assignment, error)
	LoadBatchStartDate(ctx context.Context, batchID string) (time.Time, error)
	LoadPriorState(ctx context.Context, assignmentID string, before time.Time) (*model.ActualDailyAssignmentState, error)
	LoadAnchorInputs(ctx context.Context, assignmentID string, start, end time.Time) (anchor.Inputs, error)
	LoadDailyTemperatures(ctx context.Context, containerID string, start, end time.Time) (map[time.Time]float64, error)
	LoadDailyMortalityTotals(ctx context.Context, assignmentID string, start, end time.Time) (map[time.Time]int64, error)
	LoadDailyFeedTotals(ctx context.Context, assignmentID string, start, end time.Time) (map[time.Time]float64, error)
	LoadDailyPlacements(ctx context.Context, assignmentID string, start, end time.Time) (map[time.Time]int64, error)
	LoadStageConstraints(ctx context.Context) ([]model.StageConstraint, error)

	// LoadScenarioForAssignment resolves the assignment's batch's pinned or
	// attached scenario (same resolution rule as liveprojection.Repository),
	// so the engine can pass its TGC/FCR/mortality model IDs to the
	// by-ID loaders below.
	LoadScenarioForAssignment(ctx context.Context, assignmentID string) (model.Scenario, error)
	LoadTGCModel(ctx context.Context, id string) (model.TGCModel, model.TemperatureProfile, error)
	LoadFCRModel(ctx context.Context, id string) (model.FCRModel, error)
	LoadMortalityModel(ctx context.Context, id string) (model.MortalityModel, error)
	LoadSourceAssignment(ctx context.Context, sourceAssignmentID string) (model.Assignment, error)
	LoadSourceLatestState(ctx context.Context, sourceAssignmentID string) (*model.ActualDailyAssignmentState, error)
	HadCompletedTransferIn(ctx context.Context, assignmentID string, date time.Time) (bool, error)

	// WriteStates persists the window in one transaction: existing rows are
	// updated in place, new dates are bulk-inserted (§4.5.4).
	WriteStates(ctx context.Context, assignmentID string, rows []model.ActualDailyAssignmentState) error
}
