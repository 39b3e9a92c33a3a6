// Package testfixture builds realistic AquaMind domain objects for use in
// package-level tests, grounded on the teacher's seeded test-data generator
// pattern: every value traces back to a math/rand.Rand seeded once at
// construction, so a given seed reproduces an identical fixture set.
package testfixture

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
)

// Generator produces correlated, realistic domain objects for a fixed seed.
type Generator struct {
	rand *rand.Rand
	seed int64
	base time.Time // anchor date new entities are built relative to
}

// NewGenerator returns a Generator seeded for reproducible fixtures, anchored
// at 2024-01-01 unless overridden with WithBase.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
		base: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithBase overrides the anchor date used for generated timestamps.
func (g *Generator) WithBase(base time.Time) *Generator {
	g.base = base
	return g
}

// GetSeed returns the seed the generator was constructed with.
func (g *Generator) GetSeed() int64 {
	return g.seed
}

func clampFloat64(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// GenerateTemperatureProfile builds a day-indexed profile around a seasonal
// mean, days long, keyed by day_number per §9's reusability invariant.
func (g *Generator) GenerateTemperatureProfile(days int) model.TemperatureProfile {
	meanC := 8.0 + g.rand.Float64()*6.0 // 8-14 C mean, realistic sea-cage range
	readings := make([]model.TemperatureReading, days)
	for i := 0; i < days; i++ {
		seasonal := 2.0 * float64(i%365) / 365.0
		noise := (g.rand.Float64() - 0.5) * 0.8
		readings[i] = model.TemperatureReading{
			DayNumber: i + 1,
			TempC:     clampFloat64(meanC+seasonal+noise, 0.0, 20.0),
		}
	}
	return model.TemperatureProfile{
		ID:       fmt.Sprintf("profile-%d", g.rand.Int63()),
		Name:     fmt.Sprintf("generated-profile-%d", g.rand.Intn(1000)),
		Readings: readings,
	}
}

// GenerateTGCModel returns a TGC model with a value in the range observed
// across Norwegian salmon production (0.018-0.032), with per-stage overrides
// occasionally present.
func (g *Generator) GenerateTGCModel(profileID string) model.TGCModel {
	m := model.TGCModel{
		ID:                  fmt.Sprintf("tgc-%d", g.rand.Int63()),
		Name:                fmt.Sprintf("generated-tgc-%d", g.rand.Intn(1000)),
		TGCValue:            0.018 + g.rand.Float64()*0.014,
		TemperatureExponent: 1.0,
		WeightExponent:      1.0 / 3.0,
		ProfileID:           profileID,
	}
	if g.rand.Float64() < 0.3 {
		m.StageOverrides = []model.TGCModelOverride{
			{Stage: model.StageSmolt, TGCValue: m.TGCValue * (0.9 + g.rand.Float64()*0.2)},
		}
	}
	return m
}

// GenerateFCRModel returns a stage-indexed FCR model covering the full
// lifecycle progression.
func (g *Generator) GenerateFCRModel() model.FCRModel {
	stages := model.StageOrder()
	entries := make([]model.FCRStageEntry, 0, len(stages))
	for _, s := range stages {
		fcr := 0.8 + g.rand.Float64()*0.6
		if s.IsNonFeeding() {
			fcr = 0
		}
		entries = append(entries, model.FCRStageEntry{
			Stage:        s,
			FCRValue:     fcr,
			DurationDays: 60 + g.rand.Intn(120),
		})
	}
	m := model.FCRModel{
		ID:     fmt.Sprintf("fcr-%d", g.rand.Int63()),
		Name:   fmt.Sprintf("generated-fcr-%d", g.rand.Intn(1000)),
		Stages: entries,
	}
	if g.rand.Float64() < 0.25 {
		m.Overrides = []model.FCRWeightBandOverride{
			{Stage: model.StageAdult, MinWeightG: 2000, MaxWeightG: 5000, FCRValue: 1.1 + g.rand.Float64()*0.3},
		}
	}
	return m
}

// GenerateMortalityModel returns a base daily (or weekly) rate model with
// occasional stage overrides.
func (g *Generator) GenerateMortalityModel() model.MortalityModel {
	freq := model.MortalityDaily
	if g.rand.Float64() < 0.3 {
		freq = model.MortalityWeekly
	}
	base := 0.01 + g.rand.Float64()*0.05
	m := model.MortalityModel{
		ID:              fmt.Sprintf("mortality-%d", g.rand.Int63()),
		Name:            fmt.Sprintf("generated-mortality-%d", g.rand.Intn(1000)),
		Frequency:       freq,
		BaseRatePercent: base,
	}
	if g.rand.Float64() < 0.4 {
		rate := base * (0.5 + g.rand.Float64())
		m.StageOverrides = []model.MortalityStageOverride{
			{Stage: model.StageSmolt, DailyRatePercent: &rate},
		}
	}
	return m
}

// GenerateBatch returns an active batch starting at the generator's anchor
// date, offset by a random number of days in [0, 90).
func (g *Generator) GenerateBatch() model.Batch {
	start := g.base.AddDate(0, 0, g.rand.Intn(90))
	return model.Batch{
		ID:             fmt.Sprintf("batch-%d", g.rand.Int63()),
		ExternalNumber: fmt.Sprintf("B-%04d", g.rand.Intn(9999)),
		Species:        "Salmo salar",
		StartDate:      start,
		Status:         model.BatchActive,
	}
}

// GenerateContainer returns a container in either freshwater or seawater,
// with a plausible geography trail.
func (g *Generator) GenerateContainer() model.Container {
	if g.rand.Float64() < 0.4 {
		return model.Container{
			ID:             fmt.Sprintf("container-%d", g.rand.Int63()),
			Name:           fmt.Sprintf("tank-%d", g.rand.Intn(200)),
			GeographyTrail: []string{"hall-a", "freshwater-station", "western-norway"},
			Class:          model.ContainerFreshwater,
		}
	}
	return model.Container{
		ID:             fmt.Sprintf("container-%d", g.rand.Int63()),
		Name:           fmt.Sprintf("pen-%d", g.rand.Intn(200)),
		GeographyTrail: []string{"site-north", "western-norway"},
		Class:          model.ContainerSeawater,
	}
}

// GenerateAssignment returns an active assignment for the given batch and
// container, with population/weight in a realistic juvenile range.
func (g *Generator) GenerateAssignment(batchID, containerID string) model.Assignment {
	population := int64(5000 + g.rand.Intn(45000))
	weight := 60.0 + g.rand.Float64()*200.0
	a := model.Assignment{
		ID:              fmt.Sprintf("assignment-%d", g.rand.Int63()),
		BatchID:         batchID,
		ContainerID:     containerID,
		Stage:           model.StageParr,
		AssignmentDate:  g.base,
		PopulationCount: population,
		AvgWeightG:      weight,
	}
	a.BiomassKg = a.Biomass()
	return a
}

// GenerateTransferDestination returns a destination assignment created from
// a completed transfer out of source, with a measured anchor weight distinct
// from (and lower than) the destination's own erroneous AvgWeightG — the
// exact shape of S2 in the testable-properties suite.
func (g *Generator) GenerateTransferDestination(source model.Assignment, containerID string, measuredWeightG float64) model.Assignment {
	sourceID := source.ID
	weight := measuredWeightG
	return model.Assignment{
		ID:                         fmt.Sprintf("assignment-%d", g.rand.Int63()),
		BatchID:                    source.BatchID,
		ContainerID:                containerID,
		Stage:                      model.StageSmolt,
		AssignmentDate:             source.AssignmentDate.AddDate(0, 0, 1+g.rand.Intn(30)),
		PopulationCount:            source.PopulationCount,
		AvgWeightG:                 weight * (2 + g.rand.Float64()*4), // the Event Engine's erroneous stage-min write
		TransferSourceAssignmentID: &sourceID,
		TransferMeasuredWeightG:    &weight,
	}
}

// GenerateGrowthSamples returns count weight samples for an assignment,
// spaced days+rand apart starting at the assignment's anchor date.
func (g *Generator) GenerateGrowthSamples(assignmentID string, startWeightG float64, count int) []model.GrowthSample {
	samples := make([]model.GrowthSample, count)
	weight := startWeightG
	date := g.base
	for i := 0; i < count; i++ {
		date = date.AddDate(0, 0, 5+g.rand.Intn(10))
		weight += weight * (0.01 + g.rand.Float64()*0.03)
		w := weight
		samples[i] = model.GrowthSample{
			ID:           fmt.Sprintf("growth-sample-%d", g.rand.Int63()),
			AssignmentID: assignmentID,
			SampleDate:   date,
			AvgWeightG:   &w,
		}
	}
	return samples
}

// GenerateEnvironmentalReadings returns one temperature reading per day for
// days days, starting at the generator's anchor date.
func (g *Generator) GenerateEnvironmentalReadings(containerID string, days int) []model.EnvironmentalReading {
	readings := make([]model.EnvironmentalReading, days)
	meanC := 8.0 + g.rand.Float64()*6.0
	for i := 0; i < days; i++ {
		readings[i] = model.EnvironmentalReading{
			ID:          fmt.Sprintf("reading-%d", g.rand.Int63()),
			ContainerID: containerID,
			Parameter:   "temperature",
			Value:       clampFloat64(meanC+(g.rand.Float64()-0.5)*1.5, 0.0, 20.0),
			RecordedAt:  g.base.AddDate(0, 0, i),
		}
	}
	return readings
}

// GenerateMortalityEvent returns a die-off event for the given batch,
// scoped to containerID when non-empty.
func (g *Generator) GenerateMortalityEvent(batchID, containerID string, count int64) model.MortalityEvent {
	var cid *string
	if containerID != "" {
		cid = &containerID
	}
	return model.MortalityEvent{
		ID:        fmt.Sprintf("mortality-event-%d", g.rand.Int63()),
		BatchID:   batchID,
		ContainerID: cid,
		EventDate: g.base.AddDate(0, 0, g.rand.Intn(60)),
		Count:     count,
		BiomassKg: float64(count) * (0.08 + g.rand.Float64()*0.2),
		Cause:     model.MortalityCause("disease"),
	}
}

// GenerateTransferAction returns a completed transfer between two
// assignments, carrying a measured weight anchor.
func (g *Generator) GenerateTransferAction(sourceID, destID string, population int64, measuredWeightG float64) model.TransferAction {
	return model.TransferAction{
		ID:                      fmt.Sprintf("transfer-%d", g.rand.Int63()),
		SourceAssignmentID:      sourceID,
		DestinationAssignmentID: destID,
		TransferDate:            g.base.AddDate(0, 0, g.rand.Intn(30)),
		Status:                  model.TransferCompleted,
		PopulationCount:         population,
		MeasuredAvgWeightG:      &measuredWeightG,
		SelectionMethod:         model.SelectionRandom,
	}
}

// GenerateTreatment returns a health treatment for an assignment, including
// a weighing anchor when includesWeighing is set.
func (g *Generator) GenerateTreatment(assignmentID string, includesWeighing bool, weightG float64) model.Treatment {
	t := model.Treatment{
		ID:               fmt.Sprintf("treatment-%d", g.rand.Int63()),
		AssignmentID:     assignmentID,
		TreatmentDate:    g.base.AddDate(0, 0, g.rand.Intn(60)),
		IncludesWeighing: includesWeighing,
	}
	if includesWeighing {
		t.MeasuredAvgWeightG = &weightG
	}
	lice := g.rand.Float64() * 3.0
	t.LiceCount = &lice
	return t
}

// GenerateScenario returns a forward-simulation scenario wired to the given
// model IDs, starting at the generator's anchor date.
func (g *Generator) GenerateScenario(tgcModelID, fcrModelID, mortalityModelID string) model.Scenario {
	return model.Scenario{
		ID:               fmt.Sprintf("scenario-%d", g.rand.Int63()),
		Name:             fmt.Sprintf("generated-scenario-%d", g.rand.Intn(1000)),
		StartDate:        g.base,
		DurationDays:     180 + g.rand.Intn(360),
		InitialCount:     int64(5000 + g.rand.Intn(45000)),
		InitialWeightG:   60.0 + g.rand.Float64()*40.0,
		TGCModelID:       tgcModelID,
		FCRModelID:       fcrModelID,
		MortalityModelID: mortalityModelID,
		InitialStage:     model.StageParr,
	}
}

// GenerateDiverseScenarios returns count scenarios spanning distinct starting
// stages and durations, each wired to its own freshly generated model set —
// useful for sensitivity-analysis and projection-engine tests that need more
// than one independent trajectory.
func (g *Generator) GenerateDiverseScenarios(count int) []model.Scenario {
	stages := model.StageOrder()
	scenarios := make([]model.Scenario, count)
	for i := 0; i < count; i++ {
		profile := g.GenerateTemperatureProfile(400)
		tgc := g.GenerateTGCModel(profile.ID)
		fcr := g.GenerateFCRModel()
		mortality := g.GenerateMortalityModel()
		s := g.GenerateScenario(tgc.ID, fcr.ID, mortality.ID)
		s.InitialStage = stages[g.rand.Intn(len(stages))]
		scenarios[i] = s
	}
	return scenarios
}
