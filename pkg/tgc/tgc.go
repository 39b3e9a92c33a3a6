// Package tgc implements the Thermal Growth Coefficient calculator (§4.1):
// cube-root growth as a function of temperature, time, and per-stage
// coefficients, with inverse fitting and temperature lookup helpers.
package tgc

import (
	"math"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/profile"
)

const (
	defaultWeightExponent      = 1.0 / 3.0
	defaultTemperatureExponent = 1.0
	defaultTemperatureC        = 10.0
	freshwaterControlledTempC  = 12.0
)

// Calculator is the TGC growth capability. It holds the model parameters and
// a bound temperature profile, mirroring the teacher's small
// parameter-holding capability structs (pkg/learning/ewma.go) rather than a
// deep class hierarchy.
type Calculator struct {
	TGCValue            float64
	TemperatureExponent float64
	WeightExponent      float64
	StageOverrides      map[model.LifecycleStage]float64
	Profile             *profile.Profile
}

// New constructs a Calculator, defaulting the exponents per §4.1 when unset.
func New(m model.TGCModel, prof *profile.Profile) *Calculator {
	n := m.TemperatureExponent
	if n == 0 {
		n = defaultTemperatureExponent
	}
	w := m.WeightExponent
	if w == 0 {
		w = defaultWeightExponent
	}
	overrides := make(map[model.LifecycleStage]float64, len(m.StageOverrides))
	for _, o := range m.StageOverrides {
		overrides[o.Stage] = o.TGCValue
	}
	return &Calculator{
		TGCValue:            m.TGCValue,
		TemperatureExponent: n,
		WeightExponent:      w,
		StageOverrides:      overrides,
		Profile:             prof,
	}
}

// tgcFor resolves the effective TGC value, applying a stage override when
// one is configured.
func (c *Calculator) tgcFor(stage model.LifecycleStage) float64 {
	if stage != "" {
		if v, ok := c.StageOverrides[stage]; ok {
			return v
		}
	}
	return c.TGCValue
}

// TGCFor exposes the resolved per-stage TGC value, used by the Live
// Projection Engine to record which value produced a day's growth (§4.7).
func (c *Calculator) TGCFor(stage model.LifecycleStage) float64 {
	return c.tgcFor(stage)
}

// Grow applies one step of cube-root TGC growth:
//
//	W_new^(1/m) = W_current^(1/m) + (TGC/1000) * T^n * days
//
// Negative or zero weight/days leave the weight unchanged (no exception).
// A stage-specific safety cap (model.LifecycleStage.SafetyCapGrams) bounds
// the result; the caps are deliberately above time-based transition
// thresholds so they never preempt a stage transition.
func (c *Calculator) Grow(weightG, temperatureC float64, days int, stage model.LifecycleStage) float64 {
	if weightG <= 0 || days <= 0 {
		return weightG
	}
	tgc := c.tgcFor(stage)
	if tgc <= 0 {
		return weightG
	}
	m := c.WeightExponent
	base := math.Pow(weightG, 1.0/m)
	base += (tgc / 1000.0) * math.Pow(temperatureC, c.TemperatureExponent) * float64(days)
	if base < 0 {
		base = 0
	}
	newWeight := math.Pow(base, m)

	if stage != "" {
		cap := stage.SafetyCapGrams()
		if newWeight > cap {
			newWeight = cap
		}
	}
	return newWeight
}

// GrowthFromObserved inverts the TGC formula to back-fit the coefficient
// implied by an observed weight transition:
//
//	TGC = 1000 * (W2^(1/m) - W1^(1/m)) / (T_mean^n * days)
func (c *Calculator) GrowthFromObserved(w1, w2, tMean float64, days int) float64 {
	if w1 <= 0 || w2 <= 0 || days <= 0 || tMean <= 0 {
		return 0
	}
	m := c.WeightExponent
	n := c.TemperatureExponent
	delta := math.Pow(w2, 1.0/m) - math.Pow(w1, 1.0/m)
	denom := math.Pow(tMean, n) * float64(days)
	if denom == 0 {
		return 0
	}
	return 1000.0 * delta / denom
}

// DaysToTarget returns the number of whole days of constant-temperature
// growth needed to reach wTarget from w1.
func (c *Calculator) DaysToTarget(w1, wTarget, tMean float64) int {
	if w1 <= 0 || wTarget <= w1 || tMean <= 0 {
		return 0
	}
	tgc := c.TGCValue
	if tgc <= 0 {
		return 0
	}
	m := c.WeightExponent
	n := c.TemperatureExponent
	delta := math.Pow(wTarget, 1.0/m) - math.Pow(w1, 1.0/m)
	perDay := (tgc / 1000.0) * math.Pow(tMean, n)
	if perDay <= 0 {
		return 0
	}
	days := delta / perDay
	return int(math.Ceil(days))
}

// TemperatureForDay looks up (or interpolates) the profile temperature for a
// day_number. Falls back to defaultTemperatureC when no profile is bound or
// the profile is empty.
func (c *Calculator) TemperatureForDay(dayNumber int) float64 {
	if c.Profile == nil {
		return defaultTemperatureC
	}
	return c.Profile.TemperatureForDay(dayNumber)
}

// EffectiveTemperature returns the temperature used for growth at a given
// stage: freshwater stages always use the controlled-rearing constant
// (12.0C); seawater stages use the profile value for the day.
func (c *Calculator) EffectiveTemperature(dayNumber int, stage model.LifecycleStage) float64 {
	if stage.IsFreshwater() {
		return freshwaterControlledTempC
	}
	return c.TemperatureForDay(dayNumber)
}

// Validate checks model parameters per §4.1: TGC in (0,5] (warn above 0.1),
// n in [0,2], m in (0,1], and a profile must be attached.
func (c *Calculator) Validate() (bool, []string) {
	var errs []string
	if c.TGCValue <= 0 || c.TGCValue > 5 {
		errs = append(errs, "tgc value must be in (0, 5]")
	}
	if c.TemperatureExponent < 0 || c.TemperatureExponent > 2 {
		errs = append(errs, "temperature exponent must be in [0, 2]")
	}
	if c.WeightExponent <= 0 || c.WeightExponent > 1 {
		errs = append(errs, "weight exponent must be in (0, 1]")
	}
	if c.Profile == nil {
		errs = append(errs, "temperature profile is required")
	}
	return len(errs) == 0, errs
}

// WarnsHighTGC reports whether the TGC value exceeds the soft warning
// threshold (0.1) without being invalid.
func (c *Calculator) WarnsHighTGC() bool {
	return c.TGCValue > 0.1 && c.TGCValue <= 5
}

// ScaledBy returns a copy of the Calculator with the base TGC value and every
// stage override multiplied by factor, used by sensitivity analysis (§4.6) to
// perturb the tgc parameter without mutating the original.
func (c *Calculator) ScaledBy(factor float64) *Calculator {
	scaled := *c
	scaled.TGCValue *= factor
	overrides := make(map[model.LifecycleStage]float64, len(c.StageOverrides))
	for stage, v := range c.StageOverrides {
		overrides[stage] = v * factor
	}
	scaled.StageOverrides = overrides
	return &scaled
}
