// Package fcr implements the Feed Conversion Ratio calculator (§4.2).
package fcr

import (
	"sort"

	"github.com/aquamind/growthengine/pkg/model"
)

const defaultFCR = 1.2

// DailyFeed is the output of a daily feed computation.
type DailyFeed struct {
	DailyFeedKg        float64
	FeedPerFishG       float64
	FeedingRatePercent float64
	BiomassGainKg      float64
}

// Calculator is the FCR capability: a stage -> (fcr, duration) table plus
// optional weight-band overrides, mirroring the TGC calculator's
// parameter-holding style.
type Calculator struct {
	Stages    map[model.LifecycleStage]model.FCRStageEntry
	Overrides []model.FCRWeightBandOverride // sorted by MinWeightG within New
}

// New constructs a Calculator from a model.FCRModel, sorting weight-band
// overrides by MinWeightG so FCRFor can scan them in order (§4.2).
func New(m model.FCRModel) *Calculator {
	stages := make(map[model.LifecycleStage]model.FCRStageEntry, len(m.Stages))
	for _, s := range m.Stages {
		stages[s.Stage] = s
	}
	overrides := make([]model.FCRWeightBandOverride, len(m.Overrides))
	copy(overrides, m.Overrides)
	sort.Slice(overrides, func(i, j int) bool { return overrides[i].MinWeightG < overrides[j].MinWeightG })
	return &Calculator{Stages: stages, Overrides: overrides}
}

// FCRFor resolves the effective FCR: a weight-band override (ordered by
// MinWeightG) when the given weight falls in its band, else the stage
// default, else the global default of 1.2.
func (c *Calculator) FCRFor(stage model.LifecycleStage, weightG *float64) float64 {
	if weightG != nil {
		for _, o := range c.Overrides {
			if o.Stage != stage {
				continue
			}
			if *weightG >= o.MinWeightG && (o.MaxWeightG == 0 || *weightG <= o.MaxWeightG) {
				return o.FCRValue
			}
		}
	}
	if entry, ok := c.Stages[stage]; ok {
		return entry.FCRValue
	}
	return defaultFCR
}

// DailyFeedFor computes feed requirement from weight gain:
//
//	daily_feed_kg = max(0, weight_gain_g * population / 1000) * fcr
func (c *Calculator) DailyFeedFor(avgWeightG, weightGainG float64, population int64, fcrValue float64) DailyFeed {
	biomassGainKg := weightGainG * float64(population) / 1000.0
	if biomassGainKg < 0 {
		biomassGainKg = 0
	}
	dailyFeedKg := biomassGainKg * fcrValue

	var feedPerFishG, ratePercent float64
	if population > 0 {
		feedPerFishG = dailyFeedKg * 1000.0 / float64(population)
	}
	biomassKg := avgWeightG * float64(population) / 1000.0
	if biomassKg > 0 {
		ratePercent = dailyFeedKg / biomassKg * 100.0
	}

	return DailyFeed{
		DailyFeedKg:        dailyFeedKg,
		FeedPerFishG:       feedPerFishG,
		FeedingRatePercent: ratePercent,
		BiomassGainKg:      biomassGainKg,
	}
}

// EstimateDaysInStage estimates days to reach targetWeight from
// currentWeight under a constant compound daily growth rate.
func (c *Calculator) EstimateDaysInStage(currentWeight, targetWeight, dailyGrowthRate float64) int {
	if currentWeight <= 0 || targetWeight <= currentWeight || dailyGrowthRate <= 0 {
		return 0
	}
	days := 0
	w := currentWeight
	for w < targetWeight && days < 100000 {
		w *= 1 + dailyGrowthRate
		days++
	}
	return days
}

// Validate checks model parameters per §4.2: Egg/Alevin stages may have
// fcr == 0 (no external feeding); every other stage must have fcr > 0, and
// values outside [0.5, 3.0] are flagged.
func (c *Calculator) Validate() (bool, []string) {
	var errs []string
	for stage, entry := range c.Stages {
		if stage.IsNonFeeding() {
			if entry.FCRValue < 0 {
				errs = append(errs, "non-feeding stage FCR must be >= 0")
			}
			continue
		}
		if entry.FCRValue <= 0 {
			errs = append(errs, "stage "+string(stage)+" must have fcr > 0")
			continue
		}
		if entry.FCRValue < 0.5 || entry.FCRValue > 3.0 {
			errs = append(errs, "stage "+string(stage)+" fcr is outside the plausible [0.5, 3.0] range")
		}
	}
	return len(errs) == 0, errs
}
