// Package mortality implements the daily/weekly attrition calculator (§4.3).
package mortality

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
)

// Calculator is the mortality capability: a base (frequency, rate) pair plus
// optional per-stage overrides, all normalized internally to a daily decimal
// rate.
type Calculator struct {
	Frequency      model.MortalityFrequency
	BaseRatePercent float64
	StageOverrides map[model.LifecycleStage]model.MortalityStageOverride
}

// New constructs a Calculator from a model.MortalityModel.
func New(m model.MortalityModel) *Calculator {
	overrides := make(map[model.LifecycleStage]model.MortalityStageOverride, len(m.StageOverrides))
	for _, o := range m.StageOverrides {
		overrides[o.Stage] = o
	}
	return &Calculator{
		Frequency:       m.Frequency,
		BaseRatePercent: m.BaseRatePercent,
		StageOverrides:  overrides,
	}
}

// weeklyToDaily converts a weekly percentage to the equivalent daily decimal
// rate: daily = 1 - (1 - weekly_pct/100)^(1/7).
func weeklyToDaily(weeklyPct float64) float64 {
	return 1 - math.Pow(1-weeklyPct/100.0, 1.0/7.0)
}

// dailyToWeekly converts a daily decimal rate to the equivalent weekly
// percentage: the inverse of weeklyToDaily.
func dailyToWeekly(dailyRate float64) float64 {
	return (1 - math.Pow(1-dailyRate, 7)) * 100.0
}

// RateFor resolves the effective rate as a daily decimal, or as a weekly
// percentage when requestedFrequency is weekly. A stage override (daily or
// weekly percentage) takes precedence over the base rate.
func (c *Calculator) RateFor(stage model.LifecycleStage, requestedFrequency model.MortalityFrequency) float64 {
	dailyDecimal := c.dailyDecimalFor(stage)
	if requestedFrequency == model.MortalityWeekly {
		return dailyToWeekly(dailyDecimal)
	}
	return dailyDecimal
}

// dailyDecimalFor resolves the normalized daily decimal rate for a stage.
func (c *Calculator) dailyDecimalFor(stage model.LifecycleStage) float64 {
	if o, ok := c.StageOverrides[stage]; ok {
		if o.DailyRatePercent != nil {
			return *o.DailyRatePercent / 100.0
		}
		if o.WeeklyRatePercent != nil {
			return weeklyToDaily(*o.WeeklyRatePercent)
		}
	}
	if c.Frequency == model.MortalityWeekly {
		return weeklyToDaily(c.BaseRatePercent)
	}
	return c.BaseRatePercent / 100.0
}

// DailyMortality computes deaths for one day of a daily decimal rate. For
// sub-1 expected deaths it applies deterministic probabilistic rounding
// seeded by (assignmentID, date) so reruns over the same inputs are
// byte-identical (§8 property 5; §9 notes the original's PRNG is unseeded
// and therefore flaky — this is the required fix).
func (c *Calculator) DailyMortality(assignmentID string, date time.Time, stage model.LifecycleStage, population int64, rate *float64) (deaths int64, surviving int64, effectiveRate float64) {
	r := c.dailyDecimalFor(stage)
	if rate != nil {
		r = *rate
	}
	if population <= 0 || r <= 0 {
		return 0, population, r
	}

	expected := float64(population) * r
	whole := math.Floor(expected)
	frac := expected - whole
	deaths = int64(whole)
	if frac > 0 {
		seed := seedFor(assignmentID, date)
		rng := rand.New(rand.NewSource(seed))
		if rng.Float64() < frac {
			deaths++
		}
	}
	if deaths > population {
		deaths = population
	}
	return deaths, population - deaths, r
}

// seedFor derives a deterministic PRNG seed from an assignment ID and a
// calendar date so probabilistic rounding reproduces across reruns.
func seedFor(assignmentID string, date time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(assignmentID))
	_, _ = h.Write([]byte(date.Format("2006-01-02")))
	return int64(h.Sum64())
}

// ScaledBy returns a copy of the Calculator with the base rate and every
// stage override's percentage multiplied by factor, used by sensitivity
// analysis (§4.6) to perturb the mortality parameter without mutating the
// original.
func (c *Calculator) ScaledBy(factor float64) *Calculator {
	scaled := *c
	scaled.BaseRatePercent = c.BaseRatePercent * factor
	overrides := make(map[model.LifecycleStage]model.MortalityStageOverride, len(c.StageOverrides))
	for stage, o := range c.StageOverrides {
		if o.DailyRatePercent != nil {
			v := *o.DailyRatePercent * factor
			o.DailyRatePercent = &v
		}
		if o.WeeklyRatePercent != nil {
			v := *o.WeeklyRatePercent * factor
			o.WeeklyRatePercent = &v
		}
		overrides[stage] = o
	}
	scaled.StageOverrides = overrides
	return &scaled
}

// RateFromObserved back-computes the daily decimal rate implied by an
// observed population change over a number of days via compound survival:
// popFinal = popInitial * (1 - rate)^days.
func RateFromObserved(popInitial, popFinal int64, days int) float64 {
	if popInitial <= 0 || popFinal < 0 || popFinal > popInitial || days <= 0 {
		return 0
	}
	survivalFraction := float64(popFinal) / float64(popInitial)
	return 1 - math.Pow(survivalFraction, 1.0/float64(days))
}
