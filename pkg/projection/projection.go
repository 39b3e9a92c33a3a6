// Package projection implements the Projection Engine (§4.6): given a
// Scenario, deterministically extends state forward under stage-aware
// TGC growth, mortality, and FCR, with mid-projection model changes and
// time-based stage transitions.
package projection

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/pkg/fcr"
	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/mortality"
	"github.com/aquamind/growthengine/pkg/profile"
	"github.com/aquamind/growthengine/pkg/stage"
	"github.com/aquamind/growthengine/pkg/tgc"
)

// Repository is the data-access seam for the Projection Engine.
type Repository interface {
	LoadScenario(ctx context.Context, scenarioID string) (model.Scenario, error)
	LoadTGCModel(ctx context.Context, id string) (model.TGCModel, model.TemperatureProfile, error)
	LoadFCRModel(ctx context.Context, id string) (model.FCRModel, error)
	LoadMortalityModel(ctx context.Context, id string) (model.MortalityModel, error)
	LoadStageConstraints(ctx context.Context) ([]model.StageConstraint, error)

	// SaveProjections deletes existing projections for the scenario, then
	// bulk-inserts rows, in one transaction (§4.6 Writes).
	SaveProjections(ctx context.Context, scenarioID string, rows []model.ScenarioProjection) error
}

// Summary is the Projection Engine's exposed run summary (§4.6).
type Summary struct {
	InitialWeightG   float64
	FinalWeightG     float64
	InitialPopulation int64
	FinalPopulation  int64
	TotalGainG       float64
	ADG              float64 // average daily gain
	TotalMortality   int64
	TotalFeedKg      float64
	AverageFCR       float64 // total_feed / total_biomass_gain
	TempMinC         float64
	TempMaxC         float64
	TempMeanC        float64
}

// Engine runs Scenario projections.
type Engine struct {
	Repo Repository
}

// NewEngine constructs an Engine bound to a Repository.
func NewEngine(repo Repository) *Engine {
	return &Engine{Repo: repo}
}

// calculators bundles the swappable capability set for one projection day.
type calculators struct {
	tgc       *tgc.Calculator
	fcrModel  model.FCRModel
	fcr       *fcr.Calculator
	mortality *mortality.Calculator
	stages    *stage.Cache
}

// loadCalculators loads the named TGC/FCR/mortality models and builds fresh
// calculator instances, used both for the scenario's base models and for any
// mid-projection model change (§4.6: "swapping the capability value on a
// given day").
func (e *Engine) loadCalculators(ctx context.Context, tgcID, fcrID, mortalityID string, constraints []model.StageConstraint) (*calculators, error) {
	tgcModel, tempProfile, err := e.Repo.LoadTGCModel(ctx, tgcID)
	if err != nil {
		return nil, err
	}
	fcrModel, err := e.Repo.LoadFCRModel(ctx, fcrID)
	if err != nil {
		return nil, err
	}
	mortalityModel, err := e.Repo.LoadMortalityModel(ctx, mortalityID)
	if err != nil {
		return nil, err
	}
	return &calculators{
		tgc:       tgc.New(tgcModel, profile.New(tempProfile)),
		fcrModel:  fcrModel,
		fcr:       fcr.New(fcrModel),
		mortality: mortality.New(mortalityModel),
		stages:    stage.NewCache(constraints, fcrModel),
	}, nil
}

// RunProjection runs the full scenario and persists the resulting rows.
// Precondition failures (missing or non-positive initial weight, invalid
// calculator) abort with a ConfigurationError in the result rather than
// proceeding (§4.6, §7).
func (e *Engine) RunProjection(ctx context.Context, scenarioID string) ([]model.ScenarioProjection, Summary, *model.EngineResult) {
	rows, summary, result := e.simulate(ctx, scenarioID, nil)
	if !result.Success || result.Skipped {
		return rows, summary, result
	}

	if err := e.Repo.SaveProjections(ctx, scenarioID, rows); err != nil {
		result.AddError("failed to persist projections: %v", err)
		return nil, Summary{}, result
	}

	return rows, summary, result
}

// Sensitivity runs the scenario once per variation with a single parameter
// ("tgc", "fcr", or "mortality") scaled by (1+variation), without persisting
// anything (§4.6: "temporarily scale a single parameter... rerun projection
// without persisting, restore the parameter"). Each run is fully independent
// — the scaling never leaks between variations since simulate reloads fresh
// calculators every call.
func (e *Engine) Sensitivity(ctx context.Context, scenarioID string, parameter string, variations []float64) (map[float64]Summary, *model.EngineResult) {
	result := model.NewEngineResult()
	out := make(map[float64]Summary, len(variations))
	switch parameter {
	case "tgc", "fcr", "mortality":
	default:
		result.AddWarning("unknown sensitivity parameter %q: variations run unscaled", parameter)
	}

	for _, v := range variations {
		scale := scaleFor(parameter, v)
		_, summary, runResult := e.simulate(ctx, scenarioID, &scale)
		if !runResult.Success || runResult.Skipped {
			for _, msg := range runResult.Errors {
				result.AddError("variation %v: %s", v, msg)
			}
			continue
		}
		out[v] = summary
	}

	if len(out) == 0 {
		result.AddError("sensitivity analysis produced no successful runs for parameter %q", parameter)
	}
	return out, result
}

// scaleFor builds the calculatorScale for one sensitivity variation. Unknown
// parameter names scale nothing, so the caller's per-variation result comes
// back identical to the unscaled run and is reported as a warning upstream.
func scaleFor(parameter string, variation float64) calculatorScale {
	factor := 1 + variation
	switch parameter {
	case "tgc":
		return calculatorScale{tgcFactor: factor}
	case "fcr":
		return calculatorScale{fcrFactor: factor}
	case "mortality":
		return calculatorScale{mortalityFactor: factor}
	default:
		return calculatorScale{}
	}
}

// calculatorScale holds the optional per-parameter multiplier applied by
// simulate before running the day loop.
type calculatorScale struct {
	tgcFactor       float64
	fcrFactor       float64
	mortalityFactor float64
}

func (s *calculatorScale) apply(c *calculators) {
	if s == nil {
		return
	}
	if s.tgcFactor != 0 {
		c.tgc = c.tgc.ScaledBy(s.tgcFactor)
	}
	if s.fcrFactor != 0 {
		c.fcrModel = scaleFCRModel(c.fcrModel, s.fcrFactor)
		c.fcr = fcr.New(c.fcrModel)
	}
	if s.mortalityFactor != 0 {
		c.mortality = c.mortality.ScaledBy(s.mortalityFactor)
	}
}

func scaleFCRModel(m model.FCRModel, factor float64) model.FCRModel {
	scaled := m
	scaled.Stages = make([]model.FCRStageEntry, len(m.Stages))
	for i, s := range m.Stages {
		s.FCRValue *= factor
		scaled.Stages[i] = s
	}
	scaled.Overrides = make([]model.FCRWeightBandOverride, len(m.Overrides))
	for i, o := range m.Overrides {
		o.FCRValue *= factor
		scaled.Overrides[i] = o
	}
	return scaled
}

// simulate runs the day-by-day loop shared by RunProjection and Sensitivity.
// It never persists; the caller decides whether to call SaveProjections.
func (e *Engine) simulate(ctx context.Context, scenarioID string, scale *calculatorScale) ([]model.ScenarioProjection, Summary, *model.EngineResult) {
	result := model.NewEngineResult()

	scenario, err := e.Repo.LoadScenario(ctx, scenarioID)
	if err != nil {
		result.AddError("scenario %s not found: %v", scenarioID, err)
		return nil, Summary{}, result
	}
	if scenario.InitialWeightG <= 0 {
		result.AddError("scenario initial_weight must be specified and > 0")
		return nil, Summary{}, result
	}
	if errs := scenario.Validate(); errs.HasErrors() {
		result.AddError("scenario validation failed: %s", errs.Error())
		return nil, Summary{}, result
	}

	constraints, err := e.Repo.LoadStageConstraints(ctx)
	if err != nil {
		result.AddError("failed to load stage constraints: %v", err)
		return nil, Summary{}, result
	}

	calc, err := e.loadCalculators(ctx, scenario.TGCModelID, scenario.FCRModelID, scenario.MortalityModelID, constraints)
	if err != nil {
		result.AddError("failed to load scenario models: %v", err)
		return nil, Summary{}, result
	}
	scale.apply(calc)
	if ok, errs := calc.tgc.Validate(); !ok {
		for _, msg := range errs {
			result.AddError("tgc model invalid: %s", msg)
		}
		return nil, Summary{}, result
	}

	changesByDay := make(map[int]model.ScenarioModelChange, len(scenario.ModelChanges))
	for _, c := range scenario.ModelChanges {
		changesByDay[c.ChangeDay] = c
	}

	startStage := scenario.InitialStage
	if startStage == "" {
		startStage = model.StageEgg
	}

	rows := make([]model.ScenarioProjection, 0, scenario.DurationDays)
	population := scenario.InitialCount
	weight := scenario.InitialWeightG
	cumulativeFeed := 0.0

	var tempMin, tempMax, tempSum float64
	first := true
	var totalMortality int64

	for day := 1; day <= scenario.DurationDays; day++ {
		if change, ok := changesByDay[day]; ok {
			calc = e.applyModelChange(ctx, calc, change, constraints, &result)
			scale.apply(calc)
		}

		elapsed := day - 1
		currentStage := calc.stages.ResolveByElapsedDays(startStage, elapsed)

		effectiveTemp := calc.tgc.EffectiveTemperature(day, currentStage)

		var weightGain float64
		var dailyFeedKg float64
		if currentStage.IsNonFeeding() {
			weightGain = 0
			dailyFeedKg = 0
		} else {
			newWeight := calc.tgc.Grow(weight, effectiveTemp, 1, currentStage)
			weightGain = newWeight - weight
			fcrValue := calc.fcr.FCRFor(currentStage, &weight)
			dailyFeedKg = calc.fcr.DailyFeedFor(weight, weightGain, population, fcrValue).DailyFeedKg
			weight = newWeight
		}

		deaths, surviving, _ := calc.mortality.DailyMortality("scenario:"+scenarioID, scenario.StartDate.AddDate(0, 0, day-1), currentStage, population, nil)
		population = surviving
		totalMortality += deaths

		cumulativeFeed += dailyFeedKg
		biomass := float64(population) * weight / 1000.0

		if first {
			tempMin, tempMax = effectiveTemp, effectiveTemp
			first = false
		} else {
			if effectiveTemp < tempMin {
				tempMin = effectiveTemp
			}
			if effectiveTemp > tempMax {
				tempMax = effectiveTemp
			}
		}
		tempSum += effectiveTemp

		rows = append(rows, model.ScenarioProjection{
			ScenarioID:       scenarioID,
			ProjectionDate:   scenario.StartDate.AddDate(0, 0, day-1),
			DayNumber:        day,
			AvgWeightG:       weight,
			Population:       population,
			BiomassKg:        biomass,
			DailyFeedKg:      dailyFeedKg,
			CumulativeFeedKg: cumulativeFeed,
			TempC:            effectiveTemp,
			Stage:            currentStage,
		})
	}

	summary := summarize(scenario, rows, totalMortality, tempMin, tempMax, tempSum)
	return rows, summary, result
}

// applyModelChange swaps the calculator set for any component(s) listed in
// the change (§4.6, §3: a change may carry just one model reference), leaving
// the others untouched. Each component is reloaded independently so a
// single-component change never has to resolve a model ID for a component
// it doesn't mention.
func (e *Engine) applyModelChange(ctx context.Context, current *calculators, change model.ScenarioModelChange, constraints []model.StageConstraint, result **model.EngineResult) *calculators {
	next := *current

	if change.TGCModelID != nil {
		tgcModel, tempProfile, err := e.Repo.LoadTGCModel(ctx, *change.TGCModelID)
		if err != nil {
			(*result).AddWarning("failed to apply tgc model change: %v", err)
		} else {
			next.tgc = tgc.New(tgcModel, profile.New(tempProfile))
		}
	}
	if change.FCRModelID != nil {
		fcrModel, err := e.Repo.LoadFCRModel(ctx, *change.FCRModelID)
		if err != nil {
			(*result).AddWarning("failed to apply fcr model change: %v", err)
		} else {
			next.fcrModel = fcrModel
			next.fcr = fcr.New(fcrModel)
			next.stages = stage.NewCache(constraints, fcrModel)
		}
	}
	if change.MortalityModelID != nil {
		mortalityModel, err := e.Repo.LoadMortalityModel(ctx, *change.MortalityModelID)
		if err != nil {
			(*result).AddWarning("failed to apply mortality model change: %v", err)
		} else {
			next.mortality = mortality.New(mortalityModel)
		}
	}
	return &next
}

func summarize(scenario model.Scenario, rows []model.ScenarioProjection, totalMortality int64, tempMin, tempMax, tempSum float64) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	last := rows[len(rows)-1]

	totalGain := last.AvgWeightG - scenario.InitialWeightG
	adg := 0.0
	if len(rows) > 0 {
		adg = totalGain / float64(len(rows))
	}

	totalFeed := last.CumulativeFeedKg
	initialBiomass := float64(scenario.InitialCount) * scenario.InitialWeightG / 1000.0
	biomassGain := last.BiomassKg - initialBiomass
	avgFCR := 0.0
	if biomassGain > 0 {
		avgFCR = totalFeed / biomassGain
	}

	return Summary{
		InitialWeightG:    scenario.InitialWeightG,
		FinalWeightG:      last.AvgWeightG,
		InitialPopulation: scenario.InitialCount,
		FinalPopulation:   last.Population,
		TotalGainG:        totalGain,
		ADG:               adg,
		TotalMortality:    totalMortality,
		TotalFeedKg:       totalFeed,
		AverageFCR:        avgFCR,
		TempMinC:          tempMin,
		TempMaxC:          tempMax,
		TempMeanC:         tempSum / float64(len(rows)),
	}
}
