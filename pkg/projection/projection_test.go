package projection

import (
	"context"
	"testing"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository double, grounded on the same
// single-scenario fixture used across RunProjection/Sensitivity tests.
type fakeRepo struct {
	scenario       model.Scenario
	tgcModel       model.TGCModel
	tempProfile    model.TemperatureProfile
	fcrModel       model.FCRModel
	mortalityModel model.MortalityModel
	saved          []model.ScenarioProjection
}

func (f *fakeRepo) LoadScenario(ctx context.Context, scenarioID string) (model.Scenario, error) {
	return f.scenario, nil
}

func (f *fakeRepo) LoadTGCModel(ctx context.Context, id string) (model.TGCModel, model.TemperatureProfile, error) {
	return f.tgcModel, f.tempProfile, nil
}

func (f *fakeRepo) LoadFCRModel(ctx context.Context, id string) (model.FCRModel, error) {
	return f.fcrModel, nil
}

func (f *fakeRepo) LoadMortalityModel(ctx context.Context, id string) (model.MortalityModel, error) {
	return f.mortalityModel, nil
}

func (f *fakeRepo) LoadStageConstraints(ctx context.Context) ([]model.StageConstraint, error) {
	return nil, nil
}

func (f *fakeRepo) SaveProjections(ctx context.Context, scenarioID string, rows []model.ScenarioProjection) error {
	f.saved = rows
	return nil
}

func constantTemperatureProfile(tempC float64, days int) model.TemperatureProfile {
	readings := make([]model.TemperatureReading, days)
	for i := 0; i < days; i++ {
		readings[i] = model.TemperatureReading{DayNumber: i + 1, TempC: tempC}
	}
	return model.TemperatureProfile{ID: "profile-constant", Readings: readings}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		scenario: model.Scenario{
			ID:               "scenario-1",
			StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DurationDays:     60,
			InitialCount:     10000,
			InitialWeightG:   100.0,
			TGCModelID:       "tgc-1",
			FCRModelID:       "fcr-1",
			MortalityModelID: "mortality-1",
			InitialStage:     model.StageSmolt,
		},
		tgcModel:    model.TGCModel{TGCValue: 0.025, TemperatureExponent: 1, WeightExponent: 1.0 / 3.0},
		tempProfile: constantTemperatureProfile(10.0, 400),
		fcrModel: model.FCRModel{Stages: []model.FCRStageEntry{
			{Stage: model.StageSmolt, FCRValue: 1.1, DurationDays: 10000},
		}},
		mortalityModel: model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 0},
	}
}

func TestRunProjection_PersistsAndSummarizes(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo)

	rows, summary, result := engine.RunProjection(context.Background(), "scenario-1")
	require.True(t, result.Success)
	require.Len(t, rows, 60)
	assert.Equal(t, rows, repo.saved)
	assert.Equal(t, 100.0, summary.InitialWeightG)
	assert.Greater(t, summary.FinalWeightG, summary.InitialWeightG)
	assert.Equal(t, int64(10000), summary.InitialPopulation)
	assert.Equal(t, int64(10000), summary.FinalPopulation, "zero mortality rate keeps population constant")
}

// Property 8: cumulative feed is monotonically non-decreasing and equals the
// running sum of daily feed.
func TestRunProjection_CumulativeFeedMonotonic(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo)

	rows, _, result := engine.RunProjection(context.Background(), "scenario-1")
	require.True(t, result.Success)

	running := 0.0
	for _, row := range rows {
		running += row.DailyFeedKg
		assert.InDelta(t, running, row.CumulativeFeedKg, 1e-6)
		if row.DayNumber > 1 {
			assert.GreaterOrEqual(t, row.CumulativeFeedKg, rows[row.DayNumber-2].CumulativeFeedKg)
		}
	}
}

func TestRunProjection_InvalidInitialWeightAborts(t *testing.T) {
	repo := newFakeRepo()
	repo.scenario.InitialWeightG = 0
	engine := NewEngine(repo)

	rows, _, result := engine.RunProjection(context.Background(), "scenario-1")
	assert.Nil(t, rows)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestSensitivity_IndependentVariationsDoNotLeak(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo)

	out, result := engine.Sensitivity(context.Background(), "scenario-1", "tgc", []float64{-0.1, 0, 0.1})
	assert.Empty(t, result.Errors)
	require.Len(t, out, 3)

	assert.Less(t, out[-0.1].FinalWeightG, out[0.0].FinalWeightG)
	assert.Less(t, out[0.0].FinalWeightG, out[0.1].FinalWeightG)
	assert.Nil(t, repo.saved, "sensitivity runs must never persist")
}

func TestApplyModelChange_SwapsTGCMidProjection(t *testing.T) {
	repo := newFakeRepo()
	repo.scenario.DurationDays = 20
	tgcID := "tgc-fast"
	repo.scenario.ModelChanges = []model.ScenarioModelChange{
		{ChangeDay: 10, TGCModelID: &tgcID},
	}
	// LoadTGCModel always returns the same fixture regardless of id in this
	// fake, so this only exercises that applyModelChange doesn't error and
	// the projection still runs to completion.
	engine := NewEngine(repo)

	rows, _, result := engine.RunProjection(context.Background(), "scenario-1")
	require.True(t, result.Success)
	assert.Len(t, rows, 20)
}
