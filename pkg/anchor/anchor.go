// Package anchor implements the Anchor Set Builder (§4.4): it fuses
// growth samples, completed transfers, and weighed treatments into a single
// date -> anchor mapping for the Assimilation Engine.
package anchor

import (
	"time"

	"github.com/aquamind/growthengine/pkg/model"
)

const (
	priorityGrowthSample = 1
	priorityTransfer     = 2
	priorityTreatment    = 3

	confidenceGrowthSample = 1.0
	confidenceTransfer     = 0.95
	confidenceTreatment    = 0.90

	selectionLargestBias  = 0.88
	selectionSmallestBias = 1.12
)

// Anchor is a single resolved weight anchor for a date.
type Anchor struct {
	Type       model.AnchorType
	WeightG    float64
	Confidence float64
	Priority   int
}

// Set is the date-keyed anchor mapping produced by Build.
type Set map[time.Time]Anchor

// Inputs bundles the raw observations for one (assignment, date-range)
// request. The caller (Assimilation Engine, via its Repository) is
// responsible for the bulk preload (§4.5.1); this package only fuses what it
// is given.
type Inputs struct {
	AssignmentID string
	GrowthSamples []model.GrowthSample
	// Transfers are completed transfers whose destination is this
	// assignment ("source is this assignment" in the Assignment's own
	// role as destination — see §4.4 item 2).
	Transfers  []model.TransferAction
	Treatments []model.Treatment
}

// dateKey truncates a timestamp to a comparable calendar-day key.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Build fuses all anchor sources for the inputs into a date -> Anchor set,
// resolving same-date conflicts in favor of the lower priority number
// (§4.4 resolution rule).
func Build(in Inputs) Set {
	set := make(Set)

	consider := func(date time.Time, candidate Anchor) {
		key := dateKey(date)
		if existing, ok := set[key]; !ok || candidate.Priority < existing.Priority {
			set[key] = candidate
		}
	}

	for _, gs := range in.GrowthSamples {
		if gs.AvgWeightG == nil {
			continue
		}
		consider(gs.SampleDate, Anchor{
			Type:       model.AnchorGrowthSample,
			WeightG:    *gs.AvgWeightG,
			Confidence: confidenceGrowthSample,
			Priority:   priorityGrowthSample,
		})
	}

	for _, tr := range in.Transfers {
		if tr.Status != model.TransferCompleted || tr.MeasuredAvgWeightG == nil {
			continue
		}
		weight := *tr.MeasuredAvgWeightG
		switch tr.SelectionMethod {
		case model.SelectionLargest:
			weight *= selectionLargestBias
		case model.SelectionSmallest:
			weight *= selectionSmallestBias
		}
		consider(tr.TransferDate, Anchor{
			Type:       model.AnchorTransfer,
			WeightG:    weight,
			Confidence: confidenceTransfer,
			Priority:   priorityTransfer,
		})
	}

	for _, tmt := range in.Treatments {
		if !tmt.IncludesWeighing || tmt.MeasuredAvgWeightG == nil {
			continue
		}
		consider(tmt.TreatmentDate, Anchor{
			Type:       model.AnchorTreatment,
			WeightG:    *tmt.MeasuredAvgWeightG,
			Confidence: confidenceTreatment,
			Priority:   priorityTreatment,
		})
	}

	return set
}

// For returns the anchor for a given date, if any.
func (s Set) For(date time.Time) (Anchor, bool) {
	a, ok := s[dateKey(date)]
	return a, ok
}
