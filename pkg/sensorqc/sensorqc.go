// Package sensorqc flags water-temperature sensor readings that drift
// anomalously from a smoothed baseline, surfaced as warnings on the
// Assimilation Engine's result rather than rejecting the reading outright.
// Adapted from the teacher's EWMA/CUSUM control-theory detectors
// (pkg/learning/ewma.go, pkg/learning/cusum.go).
package sensorqc

import "math"

// Detector maintains an EWMA baseline of a sensor stream and a CUSUM
// change-detector on its residuals, flagging sustained drift (not single-day
// noise) as an anomaly.
type Detector struct {
	alpha     float64
	baseline  float64
	seeded    bool
	drift     float64
	threshold float64
	positive  float64
	negative  float64
}

// NewDetector builds a Detector with EWMA smoothing factor alpha and a CUSUM
// threshold/drift derived from sigma (the expected day-to-day noise band),
// using the standard k=0.5σ, h=5σ configuration.
func NewDetector(alpha, sigma float64) *Detector {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.167
	}
	if sigma <= 0 {
		sigma = 1.0
	}
	return &Detector{alpha: alpha, drift: 0.5 * sigma, threshold: 5.0 * sigma}
}

// Observe updates the baseline and CUSUM state with a new reading, and
// reports whether this reading pushed the cumulative deviation past the
// detector's threshold.
func (d *Detector) Observe(value float64) (anomalous bool, severity float64) {
	if !d.seeded {
		d.baseline = value
		d.seeded = true
		return false, 0
	}

	residual := value - d.baseline
	d.baseline = d.alpha*value + (1-d.alpha)*d.baseline

	d.positive = math.Max(0, d.positive+residual-d.drift)
	d.negative = math.Max(0, d.negative-residual-d.drift)

	switch {
	case d.positive > d.threshold:
		severity = d.positive / d.threshold
		d.positive, d.negative = 0, 0
		return true, severity
	case d.negative > d.threshold:
		severity = d.negative / d.threshold
		d.positive, d.negative = 0, 0
		return true, severity
	default:
		return false, 0
	}
}
