package config

import (
	"fmt"
	"os"

	"github.com/aquamind/growthengine/pkg/model"
	"gopkg.in/yaml.v3"
)

// ModelPack is a bundle of TGC/FCR/mortality models and temperature profiles
// checked into an ops repo as a single YAML file, for seeding or updating a
// deployment's model library without hand-writing SQL.
type ModelPack struct {
	TemperatureProfiles []model.TemperatureProfile
	TGCModels           []model.TGCModel
	FCRModels           []model.FCRModel
	MortalityModels     []model.MortalityModel
}

// yamlModelPack mirrors ModelPack with yaml tags; pkg/model stays
// serialization-agnostic, the same separation internal/database draws
// between its GORM-tagged rows and plain model structs.
type yamlModelPack struct {
	TemperatureProfiles []yamlTemperatureProfile `yaml:"temperature_profiles"`
	TGCModels           []yamlTGCModel           `yaml:"tgc_models"`
	FCRModels           []yamlFCRModel           `yaml:"fcr_models"`
	MortalityModels     []yamlMortalityModel     `yaml:"mortality_models"`
}

type yamlTemperatureReading struct {
	DayNumber int     `yaml:"day_number"`
	TempC     float64 `yaml:"temp_c"`
}

type yamlTemperatureProfile struct {
	ID       string                   `yaml:"id"`
	Name     string                   `yaml:"name"`
	Readings []yamlTemperatureReading `yaml:"readings"`
}

type yamlTGCModelOverride struct {
	Stage    string  `yaml:"stage"`
	TGCValue float64 `yaml:"tgc_value"`
}

type yamlTGCModel struct {
	ID                  string                 `yaml:"id"`
	Name                string                 `yaml:"name"`
	TGCValue            float64                `yaml:"tgc_value"`
	TemperatureExponent float64                `yaml:"temperature_exponent"`
	WeightExponent      float64                `yaml:"weight_exponent"`
	ProfileID           string                 `yaml:"profile_id"`
	StageOverrides      []yamlTGCModelOverride `yaml:"stage_overrides"`
}

type yamlFCRStageEntry struct {
	Stage        string  `yaml:"stage"`
	FCRValue     float64 `yaml:"fcr_value"`
	DurationDays int     `yaml:"duration_days"`
}

type yamlFCRWeightBandOverride struct {
	Stage      string  `yaml:"stage"`
	MinWeightG float64 `yaml:"min_weight_g"`
	MaxWeightG float64 `yaml:"max_weight_g"`
	FCRValue   float64 `yaml:"fcr_value"`
}

type yamlFCRModel struct {
	ID        string                      `yaml:"id"`
	Name      string                      `yaml:"name"`
	Stages    []yamlFCRStageEntry         `yaml:"stages"`
	Overrides []yamlFCRWeightBandOverride `yaml:"overrides"`
}

type yamlMortalityStageOverride struct {
	Stage             string   `yaml:"stage"`
	DailyRatePercent  *float64 `yaml:"daily_rate_percent"`
	WeeklyRatePercent *float64 `yaml:"weekly_rate_percent"`
}

type yamlMortalityModel struct {
	ID              string                       `yaml:"id"`
	Name            string                       `yaml:"name"`
	Frequency       string                       `yaml:"frequency"`
	BaseRatePercent float64                      `yaml:"base_rate_percent"`
	StageOverrides  []yamlMortalityStageOverride `yaml:"stage_overrides"`
}

// LoadModelPack reads and parses a model pack from a YAML file.
func LoadModelPack(path string) (ModelPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelPack{}, fmt.Errorf("reading model pack %s: %w", path, err)
	}
	var raw yamlModelPack
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ModelPack{}, fmt.Errorf("parsing model pack %s: %w", path, err)
	}
	return raw.toModelPack(), nil
}

func (raw yamlModelPack) toModelPack() ModelPack {
	pack := ModelPack{
		TemperatureProfiles: make([]model.TemperatureProfile, len(raw.TemperatureProfiles)),
		TGCModels:           make([]model.TGCModel, len(raw.TGCModels)),
		FCRModels:           make([]model.FCRModel, len(raw.FCRModels)),
		MortalityModels:     make([]model.MortalityModel, len(raw.MortalityModels)),
	}
	for i, p := range raw.TemperatureProfiles {
		readings := make([]model.TemperatureReading, len(p.Readings))
		for j, r := range p.Readings {
			readings[j] = model.TemperatureReading{DayNumber: r.DayNumber, TempC: r.TempC}
		}
		pack.TemperatureProfiles[i] = model.TemperatureProfile{ID: p.ID, Name: p.Name, Readings: readings}
	}
	for i, t := range raw.TGCModels {
		overrides := make([]model.TGCModelOverride, len(t.StageOverrides))
		for j, o := range t.StageOverrides {
			overrides[j] = model.TGCModelOverride{Stage: model.LifecycleStage(o.Stage), TGCValue: o.TGCValue}
		}
		pack.TGCModels[i] = model.TGCModel{
			ID:                  t.ID,
			Name:                t.Name,
			TGCValue:            t.TGCValue,
			TemperatureExponent: t.TemperatureExponent,
			WeightExponent:      t.WeightExponent,
			ProfileID:           t.ProfileID,
			StageOverrides:      overrides,
		}
	}
	for i, f := range raw.FCRModels {
		stages := make([]model.FCRStageEntry, len(f.Stages))
		for j, s := range f.Stages {
			stages[j] = model.FCRStageEntry{Stage: model.LifecycleStage(s.Stage), FCRValue: s.FCRValue, DurationDays: s.DurationDays}
		}
		overrides := make([]model.FCRWeightBandOverride, len(f.Overrides))
		for j, o := range f.Overrides {
			overrides[j] = model.FCRWeightBandOverride{
				Stage:      model.LifecycleStage(o.Stage),
				MinWeightG: o.MinWeightG,
				MaxWeightG: o.MaxWeightG,
				FCRValue:   o.FCRValue,
			}
		}
		pack.FCRModels[i] = model.FCRModel{ID: f.ID, Name: f.Name, Stages: stages, Overrides: overrides}
	}
	for i, m := range raw.MortalityModels {
		overrides := make([]model.MortalityStageOverride, len(m.StageOverrides))
		for j, o := range m.StageOverrides {
			overrides[j] = model.MortalityStageOverride{
				Stage:             model.LifecycleStage(o.Stage),
				DailyRatePercent:  o.DailyRatePercent,
				WeeklyRatePercent: o.WeeklyRatePercent,
			}
		}
		pack.MortalityModels[i] = model.MortalityModel{
			ID:              m.ID,
			Name:            m.Name,
			Frequency:       model.MortalityFrequency(m.Frequency),
			BaseRatePercent: m.BaseRatePercent,
			StageOverrides:  overrides,
		}
	}
	return pack
}
