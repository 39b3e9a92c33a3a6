package mortality

import (
	"testing"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestRateFor_DailyBaseRate(t *testing.T) {
	c := New(model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 1.0})
	assert.InDelta(t, 0.01, c.RateFor(model.StageParr, model.MortalityDaily), 1e-9)
}

func TestRateFor_WeeklyToDailyConversion(t *testing.T) {
	c := New(model.MortalityModel{Frequency: model.MortalityWeekly, BaseRatePercent: 5.0})
	daily := c.RateFor(model.StageParr, model.MortalityDaily)
	// Round-tripping through dailyToWeekly must recover ~5%.
	weekly := (1 - (1-daily)*(1-daily)*(1-daily)*(1-daily)*(1-daily)*(1-daily)*(1-daily)) * 100.0
	assert.InDelta(t, 5.0, weekly, 1e-6)
}

func TestRateFor_StageOverrideWins(t *testing.T) {
	dailyOverride := 2.0
	c := New(model.MortalityModel{
		Frequency:       model.MortalityDaily,
		BaseRatePercent: 1.0,
		StageOverrides: []model.MortalityStageOverride{
			{Stage: model.StageSmolt, DailyRatePercent: &dailyOverride},
		},
	})
	assert.InDelta(t, 0.02, c.RateFor(model.StageSmolt, model.MortalityDaily), 1e-9)
	assert.InDelta(t, 0.01, c.RateFor(model.StageParr, model.MortalityDaily), 1e-9)
}

func TestDailyMortality_ZeroPopulationOrRate(t *testing.T) {
	c := New(model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 0})
	deaths, surviving, _ := c.DailyMortality("a1", time.Now(), model.StageParr, 1000, nil)
	assert.Equal(t, int64(0), deaths)
	assert.Equal(t, int64(1000), surviving)
}

func TestDailyMortality_NeverExceedsPopulation(t *testing.T) {
	c := New(model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 95.0})
	date, _ := time.Parse("2006-01-02", "2024-01-01")
	deaths, surviving, _ := c.DailyMortality("a1", date, model.StageParr, 2, nil)
	assert.LessOrEqual(t, deaths, int64(2))
	assert.Equal(t, int64(2), deaths+surviving)
}

// Property 5: rerunning over the same (assignment_id, date) must reproduce
// the same probabilistic rounding decision.
func TestDailyMortality_DeterministicAcrossReruns(t *testing.T) {
	c := New(model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 0.33})
	date, _ := time.Parse("2006-01-02", "2024-03-15")
	d1, s1, r1 := c.DailyMortality("assignment-x", date, model.StageParr, 777, nil)
	d2, s2, r2 := c.DailyMortality("assignment-x", date, model.StageParr, 777, nil)
	assert.Equal(t, d1, d2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, r1, r2)
}

func TestDailyMortality_DifferentAssignmentsDifferentSeeds(t *testing.T) {
	c := New(model.MortalityModel{Frequency: model.MortalityDaily, BaseRatePercent: 0.5})
	date, _ := time.Parse("2006-01-02", "2024-03-15")
	// Not asserting the two differ (seeds could coincidentally agree), only
	// that both calls are themselves internally deterministic per-assignment.
	dA1, _, _ := c.DailyMortality("assignment-a", date, model.StageParr, 500, nil)
	dA2, _, _ := c.DailyMortality("assignment-a", date, model.StageParr, 500, nil)
	assert.Equal(t, dA1, dA2)
}

func TestRateFromObserved_InvertsCompoundSurvival(t *testing.T) {
	rate := 0.01
	popInitial := int64(10000)
	days := 30
	popFinal := popInitial
	for i := 0; i < days; i++ {
		popFinal = int64(float64(popFinal) * (1 - rate))
	}
	got := RateFromObserved(popInitial, popFinal, days)
	assert.InDelta(t, rate, got, 0.002)
}

func TestRateFromObserved_DegenerateInputsReturnZero(t *testing.T) {
	assert.Equal(t, 0.0, RateFromObserved(0, 0, 10))
	assert.Equal(t, 0.0, RateFromObserved(100, 200, 10))
	assert.Equal(t, 0.0, RateFromObserved(100, 50, 0))
}

func TestScaledBy(t *testing.T) {
	rate := 2.0
	c := New(model.MortalityModel{
		Frequency:       model.MortalityDaily,
		BaseRatePercent: 1.0,
		StageOverrides: []model.MortalityStageOverride{
			{Stage: model.StageSmolt, DailyRatePercent: &rate},
		},
	})
	scaled := c.ScaledBy(2.0)
	assert.InDelta(t, 0.02, scaled.dailyDecimalFor(model.StageParr), 1e-9)
	assert.InDelta(t, 0.04, scaled.dailyDecimalFor(model.StageSmolt), 1e-9)
	assert.InDelta(t, 0.01, c.dailyDecimalFor(model.StageParr), 1e-9, "original calculator must be unaffected")
}
