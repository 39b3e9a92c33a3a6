package assimilation

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/mortality"
	"github.com/aquamind/growthengine/pkg/profile"
	"github.com/aquamind/growthengine/pkg/stage"
	"github.com/aquamind/growthengine/pkg/tgc"
	"github.com/rs/zerolog"
)

// Engine orchestrates one assimilation window end to end: bulk preload,
// the pure day-step loop in Run, and the single-transaction write.
type Engine struct {
	Repo Repository
	Log  zerolog.Logger
}

// NewEngine constructs an Engine bound to a Repository.
func NewEngine(repo Repository, log zerolog.Logger) *Engine {
	return &Engine{Repo: repo, Log: log.With().Str("component", "assimilation").Logger()}
}

// AssimilateWindow preloads all inputs for [start, end], runs the daily-step
// loop, and writes the result in one transaction. It never returns a non-nil
// error for ordinary domain failures — those come back inside EngineResult
// (§7 propagation policy) — only for true transport failures during preload.
func (e *Engine) AssimilateWindow(ctx context.Context, assignmentID string, start, end time.Time) (*model.EngineResult, error) {
	assignment, err := e.Repo.LoadAssignment(ctx, assignmentID)
	if err != nil {
		result := model.NewEngineResult()
		result.AddError("assignment %s not found: %v", assignmentID, err)
		return result, nil
	}

	batchStart, err := e.Repo.LoadBatchStartDate(ctx, assignment.BatchID)
	if err != nil {
		result := model.NewEngineResult()
		result.AddError("batch %s start date unavailable: %v", assignment.BatchID, err)
		return result, nil
	}

	scenario, err := e.Repo.LoadScenarioForAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	tgcModel, tempProfile, err := e.Repo.LoadTGCModel(ctx, scenario.TGCModelID)
	if err != nil {
		return nil, err
	}
	fcrModel, err := e.Repo.LoadFCRModel(ctx, scenario.FCRModelID)
	if err != nil {
		return nil, err
	}
	mortalityModel, err := e.Repo.LoadMortalityModel(ctx, scenario.MortalityModelID)
	if err != nil {
		return nil, err
	}
	constraints, err := e.Repo.LoadStageConstraints(ctx)
	if err != nil {
		return nil, err
	}

	tgcCalc := tgc.New(tgcModel, profile.New(tempProfile))
	if ok, errs := tgcCalc.Validate(); !ok {
		result := model.NewEngineResult()
		for _, msg := range errs {
			result.AddError("tgc model invalid: %s", msg)
		}
		return result, nil
	}

	req := Request{
		Assignment:     assignment,
		BatchStartDate: batchStart,
		StartDate:      start,
		EndDate:        end,
		TGC:            tgcCalc,
		Mortality:      mortality.New(mortalityModel),
		Stages:         stage.NewCache(constraints, fcrModel),
	}

	priorState, err := e.Repo.LoadPriorState(ctx, assignmentID, start)
	if err != nil {
		return nil, err
	}
	req.PriorState = priorState

	if priorState == nil {
		if assignment.TransferSourceAssignmentID != nil {
			src, err := e.Repo.LoadSourceAssignment(ctx, *assignment.TransferSourceAssignmentID)
			if err == nil {
				req.SourceAssignment = &src
			}
			srcState, err := e.Repo.LoadSourceLatestState(ctx, *assignment.TransferSourceAssignmentID)
			if err == nil {
				req.SourceLatestState = srcState
			}
		}
		hadTransfer, err := e.Repo.HadCompletedTransferIn(ctx, assignmentID, assignment.AssignmentDate)
		if err != nil {
			return nil, err
		}
		req.HadCompletedTransferInOnAssignmentDate = hadTransfer
	}

	anchorInputs, err := e.Repo.LoadAnchorInputs(ctx, assignmentID, start, end)
	if err != nil {
		return nil, err
	}
	temps, err := e.Repo.LoadDailyTemperatures(ctx, assignment.ContainerID, start, end)
	if err != nil {
		return nil, err
	}
	mortalityTotals, err := e.Repo.LoadDailyMortalityTotals(ctx, assignmentID, start, end)
	if err != nil {
		return nil, err
	}
	feedTotals, err := e.Repo.LoadDailyFeedTotals(ctx, assignmentID, start, end)
	if err != nil {
		return nil, err
	}
	placements, err := e.Repo.LoadDailyPlacements(ctx, assignmentID, start, end)
	if err != nil {
		return nil, err
	}

	req.Inputs = DailyInputs{
		Anchors:         anchorSet(anchorInputs),
		Temperatures:    temps,
		MortalityTotals: mortalityTotals,
		FeedTotals:      feedTotals,
		Placements:      placements,
	}

	rows, result := Run(req)
	if result.Skipped || !result.Success {
		return result, nil
	}

	if err := e.Repo.WriteStates(ctx, assignmentID, rows); err != nil {
		result.AddError("failed to persist daily states: %v", err)
		return result, nil
	}

	e.Log.Debug().Str("assignment_id", assignmentID).Int("rows", len(rows)).Msg("assimilation window written")
	return result, nil
}
