// Package forecast implements the Forecast Summarizer (§4.8): scans an
// assignment's stored live projections for harvest/transfer threshold
// crossings and maintains the per-assignment ContainerForecastSummary
// planning rollup.
package forecast

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
)

// attentionThresholdDays is ATTENTION_THRESHOLD_DAYS (§4.8 default).
const attentionThresholdDays = 30

// Engine builds ContainerForecastSummary rows from stored live projections.
type Engine struct {
	Repo Repository
}

// NewEngine constructs an Engine bound to a Repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{Repo: repo}
}

// Summarize runs the Forecast Summarizer for one assignment as of "now" and
// persists the result.
func (e *Engine) Summarize(ctx context.Context, assignmentID string, now time.Time) (*model.ContainerForecastSummary, *model.EngineResult) {
	result := model.NewEngineResult()

	latest, err := e.Repo.LoadLatestActualState(ctx, assignmentID)
	if err != nil {
		result.AddError("failed to load latest actual state: %v", err)
		return nil, result
	}
	if latest == nil {
		result.AddError("assignment %s has no assimilated daily state", assignmentID)
		return nil, result
	}

	projections, err := e.Repo.LoadLiveProjections(ctx, assignmentID)
	if err != nil {
		result.AddError("failed to load live projections: %v", err)
		return nil, result
	}

	constraints, err := e.Repo.LoadBiologicalConstraints(ctx, assignmentID)
	if err != nil {
		result.AddError("failed to load biological constraints: %v", err)
		return nil, result
	}
	harvestThreshold := model.DefaultHarvestThresholdG
	transferThreshold := model.DefaultTransferThresholdG
	if constraints != nil {
		if constraints.HarvestThresholdG != nil {
			harvestThreshold = *constraints.HarvestThresholdG
		}
		if constraints.TransferThresholdG != nil {
			transferThreshold = *constraints.TransferThresholdG
		}
	}

	harvestDate, harvestWeight, daysToHarvest := firstCrossing(projections, harvestThreshold, now)
	transferDate, transferWeight, daysToTransfer := firstCrossing(projections, transferThreshold, now)

	hasPlannedHarvest, hasPlannedTransfer, err := e.Repo.LoadPlanningFlags(ctx, assignmentID)
	if err != nil {
		result.AddError("failed to load planning flags: %v", err)
		return nil, result
	}

	pinnedRows, err := e.Repo.LoadPinnedProjectionRows(ctx, assignmentID)
	if err != nil {
		result.AddError("failed to load pinned projection rows: %v", err)
		return nil, result
	}
	var originalHarvestDate *time.Time
	var harvestVarianceDays *int
	if originalDate, _, ok := firstScenarioCrossing(pinnedRows, harvestThreshold); ok {
		originalHarvestDate = &originalDate
		if harvestDate != nil {
			variance := int(harvestDate.Sub(originalDate).Hours() / 24)
			harvestVarianceDays = &variance
		}
	}

	needsAttention := crossingNeedsAttention(harvestDate, now, hasPlannedHarvest) ||
		crossingNeedsAttention(transferDate, now, hasPlannedTransfer)

	summary := model.ContainerForecastSummary{
		AssignmentID: assignmentID,

		CurrentDate:       latest.Date,
		CurrentAvgWeightG: latest.AvgWeightG,
		CurrentPopulation: latest.Population,
		CurrentBiomassKg:  latest.BiomassKg,
		CurrentStage:      latest.Stage,

		ProjectedHarvestDate:    harvestDate,
		ProjectedHarvestWeightG: harvestWeight,
		DaysToHarvest:           daysToHarvest,

		ProjectedTransferDate:    transferDate,
		ProjectedTransferWeightG: transferWeight,
		DaysToTransfer:           daysToTransfer,

		OriginalPlannedHarvestDate: originalHarvestDate,
		HarvestVarianceDays:        harvestVarianceDays,

		HasPlannedHarvest:  hasPlannedHarvest,
		HasPlannedTransfer: hasPlannedTransfer,

		NeedsPlanningAttention: needsAttention,
		StateConfidence:        latest.Provenance.MinConfidence(),

		LastComputedAt: now,
	}
	if len(projections) > 0 {
		summary.Bias = projections[0].Bias
	}

	if err := e.Repo.SaveForecastSummary(ctx, summary); err != nil {
		result.AddError("failed to persist forecast summary: %v", err)
		return nil, result
	}
	return &summary, result
}

// firstCrossing returns the first live-projection row with
// avg_weight_g >= threshold, its weight, and days-to-threshold from now.
func firstCrossing(rows []model.LiveForwardProjection, threshold float64, now time.Time) (date *time.Time, weightG *float64, daysTo *int) {
	for _, r := range rows {
		if r.AvgWeightG >= threshold {
			d := r.ProjectionDate
			w := r.AvgWeightG
			days := int(d.Sub(now).Hours() / 24)
			return &d, &w, &days
		}
	}
	return nil, nil, nil
}

// firstScenarioCrossing is firstCrossing's analog over a pinned scenario's
// ScenarioProjection rows, used for the original-plan variance comparison.
func firstScenarioCrossing(rows []model.ScenarioProjection, threshold float64) (date time.Time, weightG float64, ok bool) {
	for _, r := range rows {
		if r.AvgWeightG >= threshold {
			return r.ProjectionDate, r.AvgWeightG, true
		}
	}
	return time.Time{}, 0, false
}

// crossingNeedsAttention reports whether a crossing is within
// attentionThresholdDays of now and has no matching planned activity.
func crossingNeedsAttention(crossing *time.Time, now time.Time, hasPlanned bool) bool {
	if crossing == nil || hasPlanned {
		return false
	}
	daysAway := crossing.Sub(now).Hours() / 24
	return daysAway >= 0 && daysAway <= attentionThresholdDays
}
