package model

import "strings"

// LifecycleStage is the ordered salmon lifecycle enumeration.
type LifecycleStage string

const (
	StageEgg        LifecycleStage = "Egg"
	StageAlevin     LifecycleStage = "Alevin"
	StageFry        LifecycleStage = "Fry"
	StageParr       LifecycleStage = "Parr"
	StageSmolt      LifecycleStage = "Smolt"
	StagePostSmolt  LifecycleStage = "Post-Smolt"
	StageAdult      LifecycleStage = "Adult"
	stageEyedEgg    LifecycleStage = "Eyed Egg" // legacy alias seen in historical data
)

// stageOrder is the canonical species-wide progression used for transitions.
var stageOrder = []LifecycleStage{
	StageEgg, StageAlevin, StageFry, StageParr, StageSmolt, StagePostSmolt, StageAdult,
}

// StageOrder returns the ordered stage progression.
func StageOrder() []LifecycleStage {
	out := make([]LifecycleStage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Index returns the position of a stage in the canonical order, or -1 if unknown.
func (s LifecycleStage) Index() int {
	norm := s.normalized()
	for i, st := range stageOrder {
		if strings.EqualFold(string(st), string(norm)) {
			return i
		}
	}
	return -1
}

// normalized maps historical aliases onto the canonical stage name.
func (s LifecycleStage) normalized() LifecycleStage {
	if strings.EqualFold(string(s), string(stageEyedEgg)) {
		return StageEgg
	}
	return s
}

// Next returns the following stage in the progression, and false at the terminal stage.
func (s LifecycleStage) Next() (LifecycleStage, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(stageOrder)-1 {
		return s, false
	}
	return stageOrder[idx+1], true
}

// IsFreshwater reports whether the stage is reared in controlled freshwater
// conditions (Egg/Alevin through Smolt), matched case-insensitively.
func (s LifecycleStage) IsFreshwater() bool {
	switch strings.ToLower(string(s.normalized())) {
	case "egg", "alevin", "fry", "parr", "smolt":
		return true
	default:
		return false
	}
}

// IsNonFeeding reports whether the stage receives no external feed
// (Egg, Alevin, Eyed Egg), matched case-insensitively.
func (s LifecycleStage) IsNonFeeding() bool {
	switch strings.ToLower(string(s)) {
	case "egg", "alevin", "eyed egg":
		return true
	default:
		return false
	}
}

// SafetyCapGrams is the stage-specific TGC growth safety cap (§4.1).
func (s LifecycleStage) SafetyCapGrams() float64 {
	switch s.normalized() {
	case StageEgg, StageAlevin:
		return 1
	case StageFry:
		return 10
	case StageParr:
		return 100
	case StageSmolt:
		return 250
	case StagePostSmolt:
		return 700
	case StageAdult:
		return 8000
	default:
		return 7000
	}
}

// ExpectedWeightBand describes the typical weight range for a lifecycle stage.
type ExpectedWeightBand struct {
	MinWeightG float64
	MaxWeightG float64
}

// StageConstraint caches the weight-band and duration constraints for a stage,
// used by the Assimilation Engine (weight-triggered transitions) and the
// Projection/Live Projection engines (time-based transitions).
type StageConstraint struct {
	Stage             LifecycleStage
	MinWeightG        float64
	MaxWeightG        float64 // 0 means unbounded
	TypicalDurationDays int
}
