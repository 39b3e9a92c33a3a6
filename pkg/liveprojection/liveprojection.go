// Package liveprojection implements the Live Projection Engine (§4.7): a
// bias-corrected forward run from an assignment's latest assimilated state,
// reusing the same TGC/FCR/mortality/stage calculators as pkg/projection but
// rooted at actuals instead of a scenario's initial weight.
package liveprojection

import (
	"context"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/mortality"
	"github.com/aquamind/growthengine/pkg/profile"
	"github.com/aquamind/growthengine/pkg/stage"
	"github.com/aquamind/growthengine/pkg/tgc"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultWindowDays     = 14
	defaultClampMinC      = -2.0
	defaultClampMaxC      = 2.0
	defaultMaxHorizonDays = 1000
)

// Config holds the tunables of §4.7 step 2-3, defaulted by NewEngine.
type Config struct {
	WindowDays     int
	ClampMinC      float64
	ClampMaxC      float64
	MaxHorizonDays int
}

func (c Config) withDefaults() Config {
	if c.WindowDays <= 0 {
		c.WindowDays = defaultWindowDays
	}
	if c.ClampMinC == 0 && c.ClampMaxC == 0 {
		c.ClampMinC, c.ClampMaxC = defaultClampMinC, defaultClampMaxC
	}
	if c.MaxHorizonDays <= 0 {
		c.MaxHorizonDays = defaultMaxHorizonDays
	}
	return c
}

// Engine runs bias-corrected forward projections from actual state.
type Engine struct {
	Repo   Repository
	Config Config
}

// NewEngine constructs an Engine bound to a Repository, defaulting Config.
func NewEngine(repo Repository, cfg Config) *Engine {
	return &Engine{Repo: repo, Config: cfg.withDefaults()}
}

// Run executes the engine for one assignment as of computedDate ("today" for
// both the bias window and the §4.7 step 6 skip rule), and persists the
// result. It never returns a non-nil error for ordinary domain failures —
// those come back inside EngineResult — only for true transport failures.
func (e *Engine) Run(ctx context.Context, assignmentID string, computedDate time.Time) ([]model.LiveForwardProjection, *model.EngineResult) {
	result := model.NewEngineResult()

	latest, err := e.Repo.LoadLatestActualState(ctx, assignmentID)
	if err != nil {
		result.AddError("failed to load latest actual state: %v", err)
		return nil, result
	}
	if latest == nil {
		result.AddError("assignment %s has no assimilated daily state to project from", assignmentID)
		return nil, result
	}

	scenario, err := e.Repo.LoadScenarioForAssignment(ctx, assignmentID)
	if err != nil {
		result.AddError("assignment %s has no pinned projection run or attached scenario: %v", assignmentID, err)
		return nil, result
	}

	constraints, err := e.Repo.LoadStageConstraints(ctx)
	if err != nil {
		result.AddError("failed to load stage constraints: %v", err)
		return nil, result
	}

	tgcModel, tempProfile, err := e.Repo.LoadTGCModel(ctx, scenario.TGCModelID)
	if err != nil {
		result.AddError("failed to load tgc model: %v", err)
		return nil, result
	}
	fcrModel, err := e.Repo.LoadFCRModel(ctx, scenario.FCRModelID)
	if err != nil {
		result.AddError("failed to load fcr model: %v", err)
		return nil, result
	}
	mortalityModel, err := e.Repo.LoadMortalityModel(ctx, scenario.MortalityModelID)
	if err != nil {
		result.AddError("failed to load mortality model: %v", err)
		return nil, result
	}

	tgcCalc := tgc.New(tgcModel, profile.New(tempProfile))
	if ok, errs := tgcCalc.Validate(); !ok {
		for _, msg := range errs {
			result.AddError("tgc model invalid: %s", msg)
		}
		return nil, result
	}
	mortalityCalc := mortality.New(mortalityModel)
	stages := stage.NewCache(constraints, fcrModel)

	horizon := scenario.DurationDays - latest.DayNumber
	if horizon > e.Config.MaxHorizonDays {
		horizon = e.Config.MaxHorizonDays
	}
	if horizon <= 0 {
		return nil, result
	}

	bias, err := e.computeBias(ctx, assignmentID, computedDate, tgcCalc.Profile)
	if err != nil {
		result.AddError("failed to compute temperature bias: %v", err)
		return nil, result
	}

	startStage := scenario.InitialStage
	if startStage == "" {
		startStage = model.StageEgg
	}

	rows := make([]model.LiveForwardProjection, 0, horizon)
	weight := latest.AvgWeightG
	population := latest.Population

	for i := 1; i <= horizon; i++ {
		dayNumber := latest.DayNumber + i
		elapsed := dayNumber - 1
		currentStage := stages.ResolveByElapsedDays(startStage, elapsed)

		baseTemp := tgcCalc.EffectiveTemperature(dayNumber, currentStage)
		effectiveTemp := baseTemp
		if !currentStage.IsFreshwater() {
			effectiveTemp = baseTemp + bias.ClampedBiasC
		}

		if !currentStage.IsNonFeeding() {
			weight = tgcCalc.Grow(weight, effectiveTemp, 1, currentStage)
		}

		projectionDate := latest.Date.AddDate(0, 0, i)
		_, surviving, _ := mortalityCalc.DailyMortality(assignmentID, projectionDate, currentStage, population, nil)
		population = surviving

		if !projectionDate.After(computedDate) {
			// §4.7 step 6: never emit a row for a projection date that has
			// already passed as of computedDate.
			continue
		}

		rows = append(rows, model.LiveForwardProjection{
			AssignmentID:   assignmentID,
			ComputedDate:   computedDate,
			ProjectionDate: projectionDate,
			AvgWeightG:     weight,
			Population:     population,
			BiomassKg:      float64(population) * weight / 1000.0,
			TempC:          effectiveTemp,
			TGCUsed:        tgcCalc.TGCFor(currentStage),
			Stage:          currentStage,
			Bias:           bias,
		})
	}

	if err := e.Repo.SaveLiveProjections(ctx, assignmentID, computedDate, rows); err != nil {
		result.AddError("failed to persist live projections: %v", err)
		return nil, result
	}

	return rows, result
}

// computeBias implements §4.7 step 2: mean of (actual_temp - profile_temp)
// over the recent sensor-sourced window, clamped to Config bounds.
func (e *Engine) computeBias(ctx context.Context, assignmentID string, computedDate time.Time, prof *profile.Profile) (model.TemperatureBiasProvenance, error) {
	states, err := e.Repo.LoadRecentSensorStates(ctx, assignmentID, computedDate, e.Config.WindowDays)
	if err != nil {
		return model.TemperatureBiasProvenance{}, err
	}

	deltas := make([]float64, 0, len(states))
	for _, s := range states {
		if s.TempC == nil || s.Provenance.Temp.Tag == model.TagProfile {
			continue
		}
		expected := prof.TemperatureForDay(s.DayNumber)
		deltas = append(deltas, *s.TempC-expected)
	}

	var rawBias float64
	if len(deltas) > 0 {
		rawBias = stat.Mean(deltas, nil)
	}
	clamped := clamp(rawBias, e.Config.ClampMinC, e.Config.ClampMaxC)

	bias := model.TemperatureBiasProvenance{
		RawBiasC:     rawBias,
		ClampedBiasC: clamped,
		ClampMinC:    e.Config.ClampMinC,
		ClampMaxC:    e.Config.ClampMaxC,
		WindowDays:   e.Config.WindowDays,
		DaysUsed:     len(deltas),
	}
	if prof != nil {
		bias.ProfileID = prof.ID
		bias.ProfileName = prof.Name
	}
	return bias, nil
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
