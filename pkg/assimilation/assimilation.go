// Package assimilation implements the Assimilation Engine (§4.5), the
// hardest part of the system: it fuses anchors, sensor readings, and model
// fallbacks into a dense per-day state for one (assignment, date-range)
// window, preserving provenance and confidence throughout.
package assimilation

import (
	"math"
	"time"

	"github.com/aquamind/growthengine/pkg/anchor"
	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/mortality"
	"github.com/aquamind/growthengine/pkg/sensorqc"
	"github.com/aquamind/growthengine/pkg/stage"
	"github.com/aquamind/growthengine/pkg/tgc"
)

// DailyInputs is the bulk-preloaded input set for one window (§4.5.1). All
// maps are keyed by a calendar-day truncated time.Time.
type DailyInputs struct {
	Anchors         anchor.Set
	Temperatures    map[time.Time]float64 // sensor daily mean; absent key means no reading
	MortalityTotals map[time.Time]int64
	FeedTotals      map[time.Time]float64
	Placements      map[time.Time]int64
}

// Request bundles everything the engine needs for one assignment window.
// Nothing in Run touches a repository: all preload happens before this
// struct is built (§4.5.1, §4.5.3 "no DB access; all preloaded").
type Request struct {
	Assignment model.Assignment
	BatchStartDate time.Time

	StartDate time.Time
	EndDate   time.Time

	TGC       *tgc.Calculator
	Mortality *mortality.Calculator
	Stages    *stage.Cache

	Inputs DailyInputs

	// PriorState, when non-nil, is the last ActualDailyAssignmentState row
	// before StartDate; when present it seeds the loop directly, bypassing
	// bootstrap (§4.5.2).
	PriorState *model.ActualDailyAssignmentState

	// Bootstrap inputs, used only when PriorState is nil.
	SourceAssignment                       *model.Assignment
	SourceLatestState                      *model.ActualDailyAssignmentState
	ScenarioInitialWeightG                 *float64
	HadCompletedTransferInOnAssignmentDate bool
}

func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Run reconstructs the dense daily state series for the window, applying
// the stop conditions of §4.5.3 (window clamped to the assignment's
// departure date) and returning a skipped result when the adjusted window is
// empty.
func Run(req Request) ([]model.ActualDailyAssignmentState, *model.EngineResult) {
	result := model.NewEngineResult()

	start := dateKey(req.StartDate)
	end := dateKey(req.EndDate)
	if req.Assignment.DepartureDate != nil {
		lastDay := dateKey(*req.Assignment.DepartureDate).AddDate(0, 0, -1)
		if lastDay.Before(end) {
			end = lastDay
		}
	}
	if end.Before(start) {
		result.MarkSkipped("window outside assignment bounds")
		return nil, result
	}

	weight, population, curStage := seed(req)
	prevBiomass := float64(population) * weight / 1000.0
	tempDetector := sensorqc.NewDetector(0.167, 1.5)

	var states []model.ActualDailyAssignmentState
	var anomalies int
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		row, newWeight, newPopulation, newStage, newBiomass := step(req, d, weight, population, prevBiomass, curStage)
		states = append(states, row)
		weight, population, curStage = newWeight, newPopulation, newStage
		prevBiomass = newBiomass

		if row.TempC != nil {
			if anomalous, severity := tempDetector.Observe(*row.TempC); anomalous {
				anomalies++
				result.AddWarning("sensor temperature anomaly on %s (severity %.1fx)", d.Format("2006-01-02"), severity)
			}
		}
	}

	result.Stats["rows"] = len(states)
	result.Stats["sensor_anomalies"] = anomalies
	return states, result
}

// seed resolves the initial (weight, population, stage) for the window,
// either from the prior state row or via bootstrap (§4.5.2).
func seed(req Request) (weight float64, population int64, st model.LifecycleStage) {
	if req.PriorState != nil {
		return req.PriorState.AvgWeightG, req.PriorState.Population, req.PriorState.Stage
	}

	st = req.Assignment.Stage
	weight = bootstrapWeight(req)

	population = req.Assignment.PopulationCount
	if req.HadCompletedTransferInOnAssignmentDate {
		population = 0
	}
	return weight, population, st
}

// bootstrapWeight implements the weight-priority order of §4.5.2. The order
// is critical: checking transfer-measured weight before the assignment's own
// avg_weight_g avoids the "stage-transition spike" bug where an upstream
// writer bug sets a transfer destination's avg_weight_g to the stage minimum
// (§9 open question — the workaround is kept here; see DESIGN.md).
func bootstrapWeight(req Request) float64 {
	if req.Assignment.TransferSourceAssignmentID != nil {
		if req.Assignment.TransferMeasuredWeightG != nil && *req.Assignment.TransferMeasuredWeightG > 0 {
			return *req.Assignment.TransferMeasuredWeightG
		}
		if req.SourceLatestState != nil && req.SourceLatestState.AvgWeightG > 0 {
			return req.SourceLatestState.AvgWeightG
		}
		if req.SourceAssignment != nil && req.SourceAssignment.AvgWeightG > 0 {
			return req.SourceAssignment.AvgWeightG
		}
	} else if req.Assignment.AvgWeightG > 0 {
		return req.Assignment.AvgWeightG
	}

	if req.Stages != nil {
		if minW, ok := req.Stages.MinWeightFor(req.Assignment.Stage); ok && minW > 0 {
			return minW
		}
	}
	if req.ScenarioInitialWeightG != nil && *req.ScenarioInitialWeightG > 0 {
		return *req.ScenarioInitialWeightG
	}
	if req.Stages != nil {
		if minW, ok := req.Stages.ExpectedMinWeight(req.Assignment.Stage); ok && minW > 0 {
			return minW
		}
	}
	return 1.0
}

// step computes one day's state row per §4.5.3.
func step(
	req Request,
	date time.Time,
	prevWeight float64,
	prevPopulation int64,
	prevBiomass float64,
	prevStage model.LifecycleStage,
) (row model.ActualDailyAssignmentState, newWeight float64, newPopulation int64, newStage model.LifecycleStage, newBiomass float64) {
	prov := model.Provenance{}

	// 1. Temperature (resolved first: weight's TGC growth below falls back
	// to this same profile-interpolated value, not just a sensor reading).
	var tempC *float64
	var tempConfidence float64
	if measured, ok := req.Inputs.Temperatures[dateKey(date)]; ok {
		v := measured
		tempC = &v
		tempConfidence = 1.0
		prov.Temp = model.FieldProvenance{Tag: model.TagMeasured, Confidence: 1.0}
	} else if req.TGC != nil && req.TGC.Profile != nil {
		dayNumber := dayNumberFor(req.BatchStartDate, date)
		v := req.TGC.TemperatureForDay(dayNumber)
		tempC = &v
		tempConfidence = 0.5
		prov.Temp = model.FieldProvenance{Tag: model.TagProfile, Confidence: 0.5}
	} else {
		prov.Temp = model.FieldProvenance{Tag: model.TagNone, Confidence: 0.0}
	}

	// 2. Weight.
	var anchorType *model.AnchorType
	if a, ok := req.Inputs.Anchors.For(date); ok {
		newWeight = a.WeightG
		prov.Weight = model.FieldProvenance{Tag: model.TagMeasured, Confidence: a.Confidence}
		t := a.Type
		anchorType = &t
	} else if tempC != nil {
		newWeight = req.TGC.Grow(prevWeight, *tempC, 1, prevStage)
		prov.Weight = model.FieldProvenance{Tag: model.TagTGCComputed, Confidence: math.Min(tempConfidence, 0.8)}
	} else {
		newWeight = prevWeight
		prov.Weight = model.FieldProvenance{Tag: model.TagUnchanged, Confidence: 0.3}
	}

	// 3. Mortality.
	var mortalityCount int64
	if total, ok := req.Inputs.MortalityTotals[dateKey(date)]; ok && total > 0 {
		mortalityCount = total
		prov.Mortality = model.FieldProvenance{Tag: model.TagActual, Confidence: 1.0}
	} else if req.Mortality != nil {
		deaths, _, _ := req.Mortality.DailyMortality(req.Assignment.ID, date, prevStage, prevPopulation, nil)
		mortalityCount = deaths
		prov.Mortality = model.FieldProvenance{Tag: model.TagModel, Confidence: 0.4}
	} else {
		prov.Mortality = model.FieldProvenance{Tag: model.TagNone, Confidence: 0.0}
	}

	// 4. Feed.
	var feedKg float64
	if total, ok := req.Inputs.FeedTotals[dateKey(date)]; ok && total > 0 {
		feedKg = total
		prov.Feed = model.FieldProvenance{Tag: model.TagActual, Confidence: 1.0}
	} else {
		prov.Feed = model.FieldProvenance{Tag: model.TagNone, Confidence: 0.0}
	}

	// 5. Placements in.
	placementsIn := req.Inputs.Placements[dateKey(date)]

	// 6. Population.
	newPopulation = prevPopulation + placementsIn - mortalityCount
	if newPopulation < 0 {
		newPopulation = 0
	}

	// 7. Biomass.
	newBiomass = float64(newPopulation) * newWeight / 1000.0

	// 8. Observed FCR.
	var observedFCR *float64
	biomassGain := newBiomass - prevBiomass
	if feedKg > 0 && biomassGain > 1.0 {
		v := math.Min(feedKg/biomassGain, 10.0)
		observedFCR = &v
		prov.FCR = &model.FieldProvenance{Tag: model.TagObserved, Confidence: 1.0}
	}

	// 9. Stage transition.
	newStage = prevStage
	if req.Stages != nil {
		newStage = req.Stages.ResolveByWeight(prevStage, newWeight)
	}

	row = model.ActualDailyAssignmentState{
		AssignmentID:   req.Assignment.ID,
		BatchID:        req.Assignment.BatchID,
		ContainerID:    req.Assignment.ContainerID,
		Stage:          newStage,
		Date:           date,
		DayNumber:      dayNumberFor(req.BatchStartDate, date),
		AvgWeightG:     newWeight,
		Population:     newPopulation,
		BiomassKg:      newBiomass,
		TempC:          tempC,
		MortalityCount: mortalityCount,
		FeedKg:         feedKg,
		ObservedFCR:    observedFCR,
		AnchorType:     anchorType,
		Provenance:     prov,
	}
	return row, newWeight, newPopulation, newStage, newBiomass
}

// dayNumberFor computes the 1-based day number of date relative to the
// batch's start date.
func dayNumberFor(batchStart, date time.Time) int {
	days := int(dateKey(date).Sub(dateKey(batchStart)).Hours() / 24)
	return days + 1
}
