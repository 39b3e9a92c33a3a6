package liveprojection

import (
	"context"
	"testing"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	latest         *model.ActualDailyAssignmentState
	scenario       model.Scenario
	tgcModel       model.TGCModel
	tempProfile    model.TemperatureProfile
	fcrModel       model.FCRModel
	mortalityModel model.MortalityModel
	constraints    []model.StageConstraint
	sensorStates   []model.ActualDailyAssignmentState
	saved          []model.LiveForwardProjection
}

func (f *fakeRepo) LoadLatestActualState(ctx context.Context, assignmentID string) (*model.ActualDailyAssignmentState, error) {
	return f.latest, nil
}

func (f *fakeRepo) LoadScenarioForAssignment(ctx context.Context, assignmentID string) (model.Scenario, error) {
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
	return f.constraints, nil
}

func (f *fakeRepo) LoadRecentSensorStates(ctx context.Context, assignmentID string, before time.Time, windowDays int) ([]model.ActualDailyAssignmentState, error) {
	return f.sensorStates, nil
}

func (f *fakeRepo) SaveLiveProjections(ctx context.Context, assignmentID string, computedDate time.Time, rows []model.LiveForwardProjection) error {
	f.saved = rows
	return nil
}

func constantTemperatureProfile(tempC float64, days int) model.TemperatureProfile {
	readings := make([]model.TemperatureReading, days)
	for i := 0; i < days; i++ {
		readings[i] = model.TemperatureReading{DayNumber: i + 1, TempC: tempC}
	}
	return model.TemperatureProfile{ID: "profile-constant", Name: "constant", Readings: readings}
}

func d(s string) time.Time {
	parsed, _ := time.Parse("2006-01-02", s)
	return parsed
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		latest: &model.ActualDailyAssignmentState{
			AssignmentID: "assignment-1",
			BatchID:      "batch-1",
			ContainerID:  "container-1",
			Stage:        model.StageParr,
			Date:         d("2024-06-01"),
			DayNumber:    200,
			AvgWeightG:   80.0,
			Population:   10000,
			BiomassKg:    800.0,
		},
		scenario: model.Scenario{
			ID:               "scenario-1",
			StartDate:        d("2023-11-14"),
			DurationDays:     260,
			InitialCount:     10000,
			InitialWeightG:   1.0,
			TGCModelID:       "tgc-1",
			FCRModelID:       "fcr-1",
			MortalityModelID: "mortality-1",
			InitialStage:     model.StageParr,
		},
		tgcModel:    model.TGCModel{TGCValue: 0.025, TemperatureExponent: 1, WeightExponent: 1.0 / 3.0},
		tempProfile: constantTemperatureProfile(10.0, 400),
		fcrModel: model.FCRModel{Stages: []model.FCRStageEntry{
			{Stage: model.StageParr, FCRValue: 1.1, DurationDays: 10000},
		}},
		mortalityModel: model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 0},
	}
}

func TestRun_ProducesRemainingHorizon(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, Config{})

	rows, result := engine.Run(context.Background(), "assignment-1", d("2024-06-01"))
	require.True(t, result.Success)
	// horizon = scenario.DurationDays(260) - latest.DayNumber(200) = 60
	require.Len(t, rows, 60)
	assert.Equal(t, rows, repo.saved)
	for i, row := range rows {
		assert.Equal(t, repo.latest.Date.AddDate(0, 0, i+1), row.ProjectionDate, "projection dates must be consecutive forward days")
	}
}

// §4.7 step 6: a live projection run must never re-emit a day that has
// already passed as of computedDate.
func TestRun_NeverReemitsPassedDay(t *testing.T) {
	repo := newFakeRepo()
	// latest actual state is already dated 2024-06-01; ask for a run computed
	// three days later so the first three forward days fall at or before
	// computedDate and must be skipped.
	computedDate := d("2024-06-01").AddDate(0, 0, 3)
	engine := NewEngine(repo, Config{})

	rows, result := engine.Run(context.Background(), "assignment-1", computedDate)
	require.True(t, result.Success)
	for _, row := range rows {
		assert.True(t, row.ProjectionDate.After(computedDate))
	}
}

func TestRun_FreshwaterStageUsesFixedRearingTemperature(t *testing.T) {
	repo := newFakeRepo()
	// scenario.InitialStage defaults to Parr (freshwater) via newFakeRepo.
	// Profile reports a much colder temperature; freshwater stages must
	// ignore it and the bias, using the fixed 12.0C constant instead.
	repo.tempProfile = constantTemperatureProfile(2.0, 400)
	engine := NewEngine(repo, Config{})

	rows, result := engine.Run(context.Background(), "assignment-1", d("2024-06-01"))
	require.True(t, result.Success)
	require.NotEmpty(t, rows)
	assert.Equal(t, 12.0, rows[0].TempC)
}

func TestRun_NonFreshwaterStageAppliesProfilePlusBias(t *testing.T) {
	repo := newFakeRepo()
	repo.scenario.InitialStage = model.StageAdult
	repo.fcrModel = model.FCRModel{Stages: []model.FCRStageEntry{
		{Stage: model.StageAdult, FCRValue: 1.2, DurationDays: 10000},
	}}
	repo.tempProfile = constantTemperatureProfile(8.0, 400)
	engine := NewEngine(repo, Config{})

	rows, result := engine.Run(context.Background(), "assignment-1", d("2024-06-01"))
	require.True(t, result.Success)
	require.NotEmpty(t, rows)
	// No sensor states configured, so bias is zero: temp == profile temp.
	assert.Equal(t, 8.0, rows[0].TempC)
}

func TestRun_ZeroOrNegativeHorizonSkips(t *testing.T) {
	repo := newFakeRepo()
	repo.scenario.DurationDays = 200 // equals latest.DayNumber, horizon <= 0
	engine := NewEngine(repo, Config{})

	rows, result := engine.Run(context.Background(), "assignment-1", d("2024-06-01"))
	assert.Empty(t, rows)
	assert.True(t, result.Success, "a zero/negative horizon is a no-op, not a failure")
}

func TestRun_NoActualStateErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.latest = nil
	engine := NewEngine(repo, Config{})

	rows, result := engine.Run(context.Background(), "assignment-1", d("2024-06-01"))
	assert.Nil(t, rows)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestComputeBias_MeansAndClampsDeltas(t *testing.T) {
	repo := newFakeRepo()
	repo.tempProfile = constantTemperatureProfile(10.0, 400)
	repo.sensorStates = []model.ActualDailyAssignmentState{
		{Date: d("2024-05-28"), TempC: floatPtr(13.0)},
		{Date: d("2024-05-29"), TempC: floatPtr(13.0)},
		{Date: d("2024-05-30"), TempC: floatPtr(13.0)},
	}
	engine := NewEngine(repo, Config{ClampMinC: -2.0, ClampMaxC: 2.0})

	bias, err := engine.computeBias(context.Background(), "assignment-1", d("2024-06-01"), profile.New(repo.tempProfile))
	require.NoError(t, err)
	assert.Equal(t, 3.0, bias.RawBiasC)
	assert.Equal(t, 2.0, bias.ClampedBiasC, "raw bias of 3.0C clamps to the configured 2.0C ceiling")
	assert.Equal(t, 3, bias.DaysUsed)
}

func floatPtr(v float64) *float64 { return &v }
