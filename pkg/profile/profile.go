// Package profile implements the reusable, day_number-keyed Temperature
// Profile (§4.1, §9): readings are keyed by day_number rather than calendar
// date so one profile can be shared across scenarios with different start
// dates (the reusability invariant exercised by property 7 in §8).
package profile

import (
	"sort"

	"github.com/aquamind/growthengine/pkg/model"
	"gonum.org/v1/gonum/floats"
)

const defaultTemperatureC = 10.0

// Profile wraps a model.TemperatureProfile with sorted-lookup helpers.
type Profile struct {
	ID       string
	Name     string
	days     []float64 // sorted day_number, float64 for gonum interpolation helpers
	temps    []float64 // parallel temperature values
}

// New builds a Profile from the storage-agnostic model, sorting readings by
// day_number once up front so every lookup is O(log n).
func New(p model.TemperatureProfile) *Profile {
	readings := make([]model.TemperatureReading, len(p.Readings))
	copy(readings, p.Readings)
	sort.Slice(readings, func(i, j int) bool { return readings[i].DayNumber < readings[j].DayNumber })

	days := make([]float64, len(readings))
	temps := make([]float64, len(readings))
	for i, r := range readings {
		days[i] = float64(r.DayNumber)
		temps[i] = r.TempC
	}
	return &Profile{ID: p.ID, Name: p.Name, days: days, temps: temps}
}

// TemperatureForDay returns the profile temperature for a day_number: an
// exact match when present, linear interpolation between nearest neighbors
// when absent, the nearest boundary value when out of range, and the
// default 10.0C when the profile has no readings at all.
func (p *Profile) TemperatureForDay(dayNumber int) float64 {
	if len(p.days) == 0 {
		return defaultTemperatureC
	}
	target := float64(dayNumber)

	// floats.BinarySearch-style probe: find insertion point via sort.Search,
	// then decide exact/interpolate/boundary.
	idx := sort.SearchFloat64s(p.days, target)
	if idx < len(p.days) && p.days[idx] == target {
		return p.temps[idx]
	}
	if idx == 0 {
		return p.temps[0]
	}
	if idx >= len(p.days) {
		return p.temps[len(p.temps)-1]
	}

	lowerDay, upperDay := p.days[idx-1], p.days[idx]
	lowerTemp, upperTemp := p.temps[idx-1], p.temps[idx]
	span := upperDay - lowerDay
	if span == 0 {
		return lowerTemp
	}
	frac := (target - lowerDay) / span
	return floats.Round(lowerTemp+(upperTemp-lowerTemp)*frac, 10)
}

// Bounds returns the minimum and maximum day_number covered by the profile
// and whether the profile has any readings.
func (p *Profile) Bounds() (minDay, maxDay int, ok bool) {
	if len(p.days) == 0 {
		return 0, 0, false
	}
	return int(p.days[0]), int(p.days[len(p.days)-1]), true
}
