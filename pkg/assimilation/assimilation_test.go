package assimilation

import (
	"testing"
	"time"

	"github.com/aquamind/growthengine/pkg/anchor"
	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/mortality"
	"github.com/aquamind/growthengine/pkg/profile"
	"github.com/aquamind/growthengine/pkg/stage"
	"github.com/aquamind/growthengine/pkg/tgc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func baseRequest(t *testing.T) Request {
	t.Helper()
	tempProfile := model.TemperatureProfile{ID: "p1", Name: "constant-10"}
	for i := 1; i <= 30; i++ {
		tempProfile.Readings = append(tempProfile.Readings, model.TemperatureReading{DayNumber: i, TempC: 10.0})
	}
	tgcModel := model.TGCModel{TGCValue: 0.025, TemperatureExponent: 1, WeightExponent: 1.0 / 3.0, ProfileID: "p1"}
	mortalityModel := model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 0}

	assignment := model.Assignment{
		ID:              "assignment-a",
		BatchID:         "batch-1",
		ContainerID:     "container-1",
		// Left unset (not a real lifecycle stage) so this window's TGC growth
		// isn't clamped by a stage safety cap (§4.1); S1 exercises the growth
		// step itself, not cap behavior.
		Stage:           "",
		AssignmentDate:  day(t, "2024-01-01"),
		PopulationCount: 10000,
		AvgWeightG:      100.0,
	}

	return Request{
		Assignment:     assignment,
		BatchStartDate: day(t, "2024-01-01"),
		StartDate:      day(t, "2024-01-01"),
		EndDate:        day(t, "2024-01-10"),
		TGC:            tgc.New(tgcModel, profile.New(tempProfile)),
		Mortality:      mortality.New(mortalityModel),
		Stages:         stage.NewCache(nil, model.FCRModel{}),
		Inputs: DailyInputs{
			Temperatures: map[time.Time]float64{},
		},
	}
}

func withConstantTemperature(inputs DailyInputs, start, end time.Time, tempC float64) DailyInputs {
	inputs.Temperatures = map[time.Time]float64{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		inputs.Temperatures[dateKey(d)] = tempC
	}
	return inputs
}

// S1: idempotent day step, one growth-sample anchor overriding day 5, TGC
// growth to day 10 starting from the anchor.
func TestRun_S1_IdempotentDayStep(t *testing.T) {
	req := baseRequest(t)
	req.Inputs = withConstantTemperature(req.Inputs, req.StartDate, req.EndDate, 10.0)
	anchorWeight := 120.0
	req.Inputs.Anchors = anchor.Set{
		dateKey(day(t, "2024-01-05")): anchor.Anchor{Type: model.AnchorGrowthSample, WeightG: anchorWeight, Confidence: 1.0, Priority: 1},
	}

	rows, result := Run(req)
	require.True(t, result.Success)
	require.Len(t, rows, 10)

	day5 := rows[4]
	assert.Equal(t, day(t, "2024-01-05"), day5.Date)
	assert.InDelta(t, 120.0, day5.AvgWeightG, 1e-9)
	assert.Equal(t, model.TagMeasured, day5.Provenance.Weight.Tag)
	require.NotNil(t, day5.AnchorType)
	assert.Equal(t, model.AnchorGrowthSample, *day5.AnchorType)

	day10 := rows[9]
	assert.Equal(t, day(t, "2024-01-10"), day10.Date)
	assert.InDelta(t, 120.75, day10.AvgWeightG, 0.01)
	assert.Equal(t, int64(10000), day10.Population)
	assert.InDelta(t, 1207.5, day10.BiomassKg, 0.2)

	rows2, _ := Run(req)
	assert.Equal(t, rows, rows2, "rerunning over the same inputs must produce byte-identical states")
}

// S2: a transfer destination's erroneous own avg_weight_g must never win over
// the transfer-measured weight during bootstrap.
func TestBootstrapWeight_S2_StageTransitionSpikePrevention(t *testing.T) {
	sourceID := "assignment-source"
	measured := 500.0
	req := baseRequest(t)
	req.Assignment = model.Assignment{
		ID:                         "assignment-dest",
		BatchID:                    "batch-1",
		ContainerID:                "container-2",
		Stage:                      model.StageSmolt,
		AssignmentDate:             day(t, "2024-06-01"),
		PopulationCount:            10000,
		AvgWeightG:                 3000.0, // the Event Engine bug: erroneously set to a stage max
		TransferSourceAssignmentID: &sourceID,
		TransferMeasuredWeightG:    &measured,
	}

	got := bootstrapWeight(req)
	assert.Equal(t, 500.0, got, "transfer-measured weight must win over the destination's own avg_weight_g")
}

// Property 2/9: TGC inverse round-trip, growth_from_observed inverts grow.
func TestTGCCalculator_InverseRoundTrip(t *testing.T) {
	tempProfile := model.TemperatureProfile{ID: "p", Readings: []model.TemperatureReading{{DayNumber: 1, TempC: 10.0}}}
	calc := tgc.New(model.TGCModel{TGCValue: 0.025, TemperatureExponent: 1, WeightExponent: 1.0 / 3.0}, profile.New(tempProfile))

	w1 := 100.0
	days := 5
	tempC := 10.0
	w2 := calc.Grow(w1, tempC, days, model.StageSmolt)

	got := calc.GrowthFromObserved(w1, w2, tempC, days)
	assert.InDelta(t, 0.025, got, 1e-6)
}

// Property 1: biomass ~= population * weight / 1000, within 1g rounding.
func TestRun_BiomassInvariant(t *testing.T) {
	req := baseRequest(t)
	req.Inputs = withConstantTemperature(req.Inputs, req.StartDate, req.EndDate, 11.5)

	rows, result := Run(req)
	require.True(t, result.Success)
	for _, row := range rows {
		expected := float64(row.Population) * row.AvgWeightG / 1000.0
		assert.InDelta(t, expected, row.BiomassKg, 0.001)
		assert.GreaterOrEqual(t, row.Population, int64(0))
	}
}

// Property 4: when an anchor exists on a date, the state's weight and anchor
// type must match it exactly, regardless of what temperature-driven growth
// would otherwise have produced.
func TestRun_AnchorOverridesComputedGrowth(t *testing.T) {
	req := baseRequest(t)
	req.Inputs = withConstantTemperature(req.Inputs, req.StartDate, req.EndDate, 14.0)
	req.Inputs.Anchors = anchor.Set{
		dateKey(day(t, "2024-01-03")): anchor.Anchor{Type: model.AnchorTreatment, WeightG: 87.5, Confidence: 0.9, Priority: 3},
	}

	rows, result := Run(req)
	require.True(t, result.Success)
	row := rows[2]
	assert.Equal(t, 87.5, row.AvgWeightG)
	require.NotNil(t, row.AnchorType)
	assert.Equal(t, model.AnchorTreatment, *row.AnchorType)
}

// Stop condition: a departure date before the window start yields a skipped
// result, not an empty success.
func TestRun_SkipsWhenWindowOutsideAssignmentBounds(t *testing.T) {
	req := baseRequest(t)
	departed := day(t, "2023-12-31")
	req.Assignment.DepartureDate = &departed

	rows, result := Run(req)
	assert.Nil(t, rows)
	assert.True(t, result.Skipped)
}
