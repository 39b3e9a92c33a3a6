package database

import (
	"encoding/json"

	"github.com/aquamind/growthengine/pkg/model"
)

// marshalJSON encodes v to a JSON string, defaulting to "" on error (only
// reachable for unserializable inputs, never for these plain domain structs).
func marshalJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// unmarshalJSON decodes s into out, leaving out at its zero value when s is
// empty or malformed rather than erroring — legacy rows may predate a field.
func unmarshalJSON(s string, out interface{}) {
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), out)
}

func batchToModel(b Batch) model.Batch {
	return model.Batch{
		ID:                    b.ID,
		ExternalNumber:        b.ExternalNumber,
		Species:               b.Species,
		StartDate:             b.StartDate,
		ActualEndDate:         b.ActualEndDate,
		Status:                model.BatchStatus(b.Status),
		PinnedScenarioID:      b.PinnedScenarioID,
		PinnedProjectionRunID: b.PinnedProjectionRunID,
	}
}

func batchFromModel(b model.Batch) Batch {
	return Batch{
		ID:                    b.ID,
		ExternalNumber:        b.ExternalNumber,
		Species:               b.Species,
		StartDate:             b.StartDate,
		ActualEndDate:         b.ActualEndDate,
		Status:                string(b.Status),
		PinnedScenarioID:      b.PinnedScenarioID,
		PinnedProjectionRunID: b.PinnedProjectionRunID,
	}
}

func containerToModel(c Container) model.Container {
	var trail []string
	unmarshalJSON(c.GeographyTrail, &trail)
	return model.Container{
		ID:             c.ID,
		Name:           c.Name,
		GeographyTrail: trail,
		Class:          model.ContainerClass(c.Class),
	}
}

func assignmentToModel(a Assignment) model.Assignment {
	return model.Assignment{
		ID:                         a.ID,
		BatchID:                    a.BatchID,
		ContainerID:                a.ContainerID,
		Stage:                      model.LifecycleStage(a.Stage),
		AssignmentDate:             a.AssignmentDate,
		DepartureDate:              a.DepartureDate,
		PopulationCount:            a.PopulationCount,
		AvgWeightG:                 a.AvgWeightG,
		BiomassKg:                  a.BiomassKg,
		TransferSourceAssignmentID: a.TransferSourceAssignmentID,
		TransferMeasuredWeightG:    a.TransferMeasuredWeightG,
	}
}

func tgcModelToModel(t TGCModel) model.TGCModel {
	var overrides []model.TGCModelOverride
	unmarshalJSON(t.StageOverrides, &overrides)
	return model.TGCModel{
		ID:                  t.ID,
		Name:                t.Name,
		TGCValue:            t.TGCValue,
		TemperatureExponent: t.TemperatureExponent,
		WeightExponent:      t.WeightExponent,
		ProfileID:           t.ProfileID,
		StageOverrides:      overrides,
	}
}

func fcrModelToModel(f FCRModel) model.FCRModel {
	var stages []model.FCRStageEntry
	var overrides []model.FCRWeightBandOverride
	unmarshalJSON(f.Stages, &stages)
	unmarshalJSON(f.Overrides, &overrides)
	return model.FCRModel{
		ID:        f.ID,
		Name:      f.Name,
		Stages:    stages,
		Overrides: overrides,
	}
}

func mortalityModelToModel(m MortalityModel) model.MortalityModel {
	var overrides []model.MortalityStageOverride
	unmarshalJSON(m.StageOverrides, &overrides)
	return model.MortalityModel{
		ID:              m.ID,
		Name:            m.Name,
		Frequency:       model.MortalityFrequency(m.Frequency),
		BaseRatePercent: m.BaseRatePercent,
		StageOverrides:  overrides,
	}
}

func temperatureProfileToModel(p TemperatureProfile) model.TemperatureProfile {
	var readings []model.TemperatureReading
	unmarshalJSON(p.Readings, &readings)
	return model.TemperatureProfile{
		ID:       p.ID,
		Name:     p.Name,
		Readings: readings,
	}
}

func tgcModelFromModel(t model.TGCModel) TGCModel {
	return TGCModel{
		ID:                  t.ID,
		Name:                t.Name,
		TGCValue:            t.TGCValue,
		TemperatureExponent: t.TemperatureExponent,
		WeightExponent:      t.WeightExponent,
		ProfileID:           t.ProfileID,
		StageOverrides:      marshalJSON(t.StageOverrides),
	}
}

func fcrModelFromModel(f model.FCRModel) FCRModel {
	return FCRModel{
		ID:        f.ID,
		Name:      f.Name,
		Stages:    marshalJSON(f.Stages),
		Overrides: marshalJSON(f.Overrides),
	}
}

func mortalityModelFromModel(m model.MortalityModel) MortalityModel {
	return MortalityModel{
		ID:              m.ID,
		Name:            m.Name,
		Frequency:       string(m.Frequency),
		BaseRatePercent: m.BaseRatePercent,
		StageOverrides:  marshalJSON(m.StageOverrides),
	}
}

func temperatureProfileFromModel(p model.TemperatureProfile) TemperatureProfile {
	return TemperatureProfile{
		ID:       p.ID,
		Name:     p.Name,
		Readings: marshalJSON(p.Readings),
	}
}

func stageConstraintToModel(s StageConstraint) model.StageConstraint {
	return model.StageConstraint{
		Stage:               model.LifecycleStage(s.Stage),
		MinWeightG:          s.MinWeightG,
		MaxWeightG:          s.MaxWeightG,
		TypicalDurationDays: s.TypicalDurationDays,
	}
}

func scenarioToModel(s Scenario) model.Scenario {
	var constraints *model.BiologicalConstraints
	if s.BiologicalConstraints != "" {
		constraints = &model.BiologicalConstraints{}
		unmarshalJSON(s.BiologicalConstraints, constraints)
	}
	var changes []model.ScenarioModelChange
	unmarshalJSON(s.ModelChanges, &changes)
	return model.Scenario{
		ID:                    s.ID,
		Name:                  s.Name,
		StartDate:             s.StartDate,
		DurationDays:          s.DurationDays,
		InitialCount:          s.InitialCount,
		InitialWeightG:        s.InitialWeightG,
		TGCModelID:            s.TGCModelID,
		FCRModelID:            s.FCRModelID,
		MortalityModelID:      s.MortalityModelID,
		BiologicalConstraints: constraints,
		BatchID:               s.BatchID,
		InitialStage:          model.LifecycleStage(s.InitialStage),
		ModelChanges:          changes,
	}
}

func scenarioFromModel(s model.Scenario) Scenario {
	constraintsJSON := ""
	if s.BiologicalConstraints != nil {
		constraintsJSON = marshalJSON(s.BiologicalConstraints)
	}
	return Scenario{
		ID:                    s.ID,
		Name:                  s.Name,
		StartDate:             s.StartDate,
		DurationDays:          s.DurationDays,
		InitialCount:          s.InitialCount,
		InitialWeightG:        s.InitialWeightG,
		TGCModelID:            s.TGCModelID,
		FCRModelID:            s.FCRModelID,
		MortalityModelID:      s.MortalityModelID,
		BiologicalConstraints: constraintsJSON,
		BatchID:               s.BatchID,
		InitialStage:          string(s.InitialStage),
		ModelChanges:          marshalJSON(s.ModelChanges),
	}
}

func actualStateToModel(a ActualDailyAssignmentState) model.ActualDailyAssignmentState {
	var sources map[string]string
	var confidence map[string]float64
	unmarshalJSON(a.Sources, &sources)
	unmarshalJSON(a.ConfidenceScores, &confidence)

	var anchor *model.AnchorType
	if a.AnchorType != nil {
		t := model.AnchorType(*a.AnchorType)
		anchor = &t
	}

	return model.ActualDailyAssignmentState{
		AssignmentID:   a.AssignmentID,
		BatchID:        a.BatchID,
		ContainerID:    a.ContainerID,
		Stage:          model.LifecycleStage(a.Stage),
		Date:           a.Date,
		DayNumber:      a.DayNumber,
		AvgWeightG:     a.AvgWeightG,
		Population:     a.Population,
		BiomassKg:      a.BiomassKg,
		TempC:          a.TempC,
		MortalityCount: a.MortalityCount,
		FeedKg:         a.FeedKg,
		ObservedFCR:    a.ObservedFCR,
		AnchorType:     anchor,
		Provenance:     provenanceFromFlat(sources, confidence),
	}
}

func actualStateFromModel(s model.ActualDailyAssignmentState) ActualDailyAssignmentState {
	var anchor *string
	if s.AnchorType != nil {
		t := string(*s.AnchorType)
		anchor = &t
	}
	return ActualDailyAssignmentState{
		AssignmentID:     s.AssignmentID,
		BatchID:          s.BatchID,
		ContainerID:      s.ContainerID,
		Stage:            string(s.Stage),
		Date:             s.Date,
		DayNumber:        s.DayNumber,
		AvgWeightG:       s.AvgWeightG,
		Population:       s.Population,
		BiomassKg:        s.BiomassKg,
		TempC:            s.TempC,
		MortalityCount:   s.MortalityCount,
		FeedKg:           s.FeedKg,
		ObservedFCR:      s.ObservedFCR,
		AnchorType:       anchor,
		Sources:          marshalJSON(s.Provenance.Sources()),
		ConfidenceScores: marshalJSON(s.Provenance.ConfidenceScores()),
	}
}

// provenanceFromFlat reconstructs a Provenance from the flattened
// sources/confidence_scores maps read back from storage.
func provenanceFromFlat(sources map[string]string, confidence map[string]float64) model.Provenance {
	field := func(name string) model.FieldProvenance {
		return model.FieldProvenance{
			Tag:        model.ProvenanceTag(sources[name]),
			Confidence: confidence[name],
		}
	}
	p := model.Provenance{
		Weight:    field("weight"),
		Temp:      field("temp"),
		Mortality: field("mortality"),
		Feed:      field("feed"),
	}
	if tag, ok := sources["fcr"]; ok {
		p.FCR = &model.FieldProvenance{Tag: model.ProvenanceTag(tag), Confidence: confidence["fcr"]}
	}
	return p
}

func scenarioProjectionToModel(p ScenarioProjection) model.ScenarioProjection {
	return model.ScenarioProjection{
		ScenarioID:       p.ScenarioID,
		ProjectionDate:   p.ProjectionDate,
		DayNumber:        p.DayNumber,
		AvgWeightG:       p.AvgWeightG,
		Population:       p.Population,
		BiomassKg:        p.BiomassKg,
		DailyFeedKg:      p.DailyFeedKg,
		CumulativeFeedKg: p.CumulativeFeedKg,
		TempC:            p.TempC,
		Stage:            model.LifecycleStage(p.Stage),
	}
}

func scenarioProjectionFromModel(p model.ScenarioProjection) ScenarioProjection {
	return ScenarioProjection{
		ScenarioID:       p.ScenarioID,
		ProjectionDate:   p.ProjectionDate,
		DayNumber:        p.DayNumber,
		AvgWeightG:       p.AvgWeightG,
		Population:       p.Population,
		BiomassKg:        p.BiomassKg,
		DailyFeedKg:      p.DailyFeedKg,
		CumulativeFeedKg: p.CumulativeFeedKg,
		TempC:            p.TempC,
		Stage:            string(p.Stage),
	}
}

func liveProjectionToModel(r LiveForwardProjection) model.LiveForwardProjection {
	var bias model.TemperatureBiasProvenance
	unmarshalJSON(r.Bias, &bias)
	return model.LiveForwardProjection{
		AssignmentID:   r.AssignmentID,
		ComputedDate:   r.ComputedDate,
		ProjectionDate: r.ProjectionDate,
		AvgWeightG:     r.AvgWeightG,
		Population:     r.Population,
		BiomassKg:      r.BiomassKg,
		TempC:          r.TempC,
		TGCUsed:        r.TGCUsed,
		Stage:          model.LifecycleStage(r.Stage),
		Bias:           bias,
	}
}

func liveProjectionFromModel(r model.LiveForwardProjection) LiveForwardProjection {
	return LiveForwardProjection{
		AssignmentID:   r.AssignmentID,
		ComputedDate:   r.ComputedDate,
		ProjectionDate: r.ProjectionDate,
		AvgWeightG:     r.AvgWeightG,
		Population:     r.Population,
		BiomassKg:      r.BiomassKg,
		TempC:          r.TempC,
		TGCUsed:        r.TGCUsed,
		Stage:          string(r.Stage),
		Bias:           marshalJSON(r.Bias),
	}
}

func forecastSummaryToModel(s ContainerForecastSummary) model.ContainerForecastSummary {
	var bias model.TemperatureBiasProvenance
	unmarshalJSON(s.Bias, &bias)
	return model.ContainerForecastSummary{
		AssignmentID: s.AssignmentID,

		CurrentDate:       s.CurrentDate,
		CurrentAvgWeightG: s.CurrentAvgWeightG,
		CurrentPopulation: s.CurrentPopulation,
		CurrentBiomassKg:  s.CurrentBiomassKg,
		CurrentStage:      model.LifecycleStage(s.CurrentStage),

		ProjectedHarvestDate:    s.ProjectedHarvestDate,
		ProjectedHarvestWeightG: s.ProjectedHarvestWeightG,
		DaysToHarvest:           s.DaysToHarvest,

		ProjectedTransferDate:    s.ProjectedTransferDate,
		ProjectedTransferWeightG: s.ProjectedTransferWeightG,
		DaysToTransfer:           s.DaysToTransfer,

		OriginalPlannedHarvestDate: s.OriginalPlannedHarvestDate,
		HarvestVarianceDays:        s.HarvestVarianceDays,

		HasPlannedHarvest:  s.HasPlannedHarvest,
		HasPlannedTransfer: s.HasPlannedTransfer,

		NeedsPlanningAttention: s.NeedsPlanningAttention,
		StateConfidence:        s.StateConfidence,
		Bias:                   bias,

		LastComputedAt: s.LastComputedAt,
	}
}

func forecastSummaryFromModel(s model.ContainerForecastSummary) ContainerForecastSummary {
	return ContainerForecastSummary{
		AssignmentID: s.AssignmentID,

		CurrentDate:       s.CurrentDate,
		CurrentAvgWeightG: s.CurrentAvgWeightG,
		CurrentPopulation: s.CurrentPopulation,
		CurrentBiomassKg:  s.CurrentBiomassKg,
		CurrentStage:      string(s.CurrentStage),

		ProjectedHarvestDate:    s.ProjectedHarvestDate,
		ProjectedHarvestWeightG: s.ProjectedHarvestWeightG,
		DaysToHarvest:           s.DaysToHarvest,

		ProjectedTransferDate:    s.ProjectedTransferDate,
		ProjectedTransferWeightG: s.ProjectedTransferWeightG,
		DaysToTransfer:           s.DaysToTransfer,

		OriginalPlannedHarvestDate: s.OriginalPlannedHarvestDate,
		HarvestVarianceDays:        s.HarvestVarianceDays,

		HasPlannedHarvest:  s.HasPlannedHarvest,
		HasPlannedTransfer: s.HasPlannedTransfer,

		NeedsPlanningAttention: s.NeedsPlanningAttention,
		StateConfidence:        s.StateConfidence,
		Bias:                   marshalJSON(s.Bias),

		LastComputedAt: s.LastComputedAt,
	}
}
