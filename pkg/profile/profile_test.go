package profile

import (
	"testing"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestTemperatureForDay_ExactMatch(t *testing.T) {
	p := New(model.TemperatureProfile{
		Readings: []model.TemperatureReading{
			{DayNumber: 1, TempC: 10.0},
			{DayNumber: 2, TempC: 11.0},
		},
	})
	assert.Equal(t, 10.0, p.TemperatureForDay(1))
	assert.Equal(t, 11.0, p.TemperatureForDay(2))
}

func TestTemperatureForDay_Interpolates(t *testing.T) {
	p := New(model.TemperatureProfile{
		Readings: []model.TemperatureReading{
			{DayNumber: 1, TempC: 10.0},
			{DayNumber: 3, TempC: 12.0},
		},
	})
	assert.Equal(t, 11.0, p.TemperatureForDay(2))
}

func TestTemperatureForDay_BoundaryClamped(t *testing.T) {
	p := New(model.TemperatureProfile{
		Readings: []model.TemperatureReading{
			{DayNumber: 5, TempC: 9.0},
			{DayNumber: 10, TempC: 13.0},
		},
	})
	assert.Equal(t, 9.0, p.TemperatureForDay(1))
	assert.Equal(t, 13.0, p.TemperatureForDay(100))
}

func TestTemperatureForDay_EmptyProfileDefaults(t *testing.T) {
	p := New(model.TemperatureProfile{})
	assert.Equal(t, 10.0, p.TemperatureForDay(1))
}

// S5: a profile is keyed by day_number, not calendar date, so it is reusable
// verbatim by two scenarios with different start dates.
func TestTemperatureForDay_S5_ProfileReusability(t *testing.T) {
	readings := []model.TemperatureReading{
		{DayNumber: 1, TempC: 10.0},
		{DayNumber: 2, TempC: 11.0},
	}
	profileForScenarioX := New(model.TemperatureProfile{ID: "p", Readings: readings})
	profileForScenarioY := New(model.TemperatureProfile{ID: "p", Readings: readings})

	assert.Equal(t, profileForScenarioX.TemperatureForDay(1), profileForScenarioY.TemperatureForDay(1))
	assert.Equal(t, 10.0, profileForScenarioX.TemperatureForDay(1))
}

func TestBounds(t *testing.T) {
	p := New(model.TemperatureProfile{Readings: []model.TemperatureReading{{DayNumber: 3, TempC: 1}, {DayNumber: 8, TempC: 2}}})
	minDay, maxDay, ok := p.Bounds()
	assert.True(t, ok)
	assert.Equal(t, 3, minDay)
	assert.Equal(t, 8, maxDay)

	_, _, ok = New(model.TemperatureProfile{}).Bounds()
	assert.False(t, ok)
}
