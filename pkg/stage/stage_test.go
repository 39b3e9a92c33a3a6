package stage

import (
	"testing"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestResolveByWeight_TransitionsAtMaxWeight(t *testing.T) {
	c := NewCache([]model.StageConstraint{
		{Stage: model.StageParr, MinWeightG: 10, MaxWeightG: 100},
		{Stage: model.StageSmolt, MinWeightG: 100},
	}, model.FCRModel{})

	assert.Equal(t, model.StageParr, c.ResolveByWeight(model.StageParr, 99.9))
	assert.Equal(t, model.StageSmolt, c.ResolveByWeight(model.StageParr, 100.0))
}

func TestResolveByWeight_TerminalStageStays(t *testing.T) {
	c := NewCache([]model.StageConstraint{
		{Stage: model.StageAdult, MinWeightG: 1000, MaxWeightG: 8000},
	}, model.FCRModel{})
	assert.Equal(t, model.StageAdult, c.ResolveByWeight(model.StageAdult, 9000))
}

func TestResolveByWeight_NoConstraintKeepsStage(t *testing.T) {
	c := NewCache(nil, model.FCRModel{})
	assert.Equal(t, model.StageParr, c.ResolveByWeight(model.StageParr, 5000))
}

func TestResolveByElapsedDays_CumulativeDurations(t *testing.T) {
	c := NewCache(nil, model.FCRModel{
		Stages: []model.FCRStageEntry{
			{Stage: model.StageEgg, DurationDays: 10},
			{Stage: model.StageAlevin, DurationDays: 10},
			{Stage: model.StageFry, DurationDays: 20},
		},
	})
	assert.Equal(t, model.StageEgg, c.ResolveByElapsedDays(model.StageEgg, 5))
	assert.Equal(t, model.StageAlevin, c.ResolveByElapsedDays(model.StageEgg, 15))
	assert.Equal(t, model.StageFry, c.ResolveByElapsedDays(model.StageEgg, 25))
}

func TestResolveByElapsedDays_UnconfiguredDurationPersists(t *testing.T) {
	c := NewCache(nil, model.FCRModel{
		Stages: []model.FCRStageEntry{
			{Stage: model.StageEgg, DurationDays: 10},
			{Stage: model.StageAlevin, DurationDays: 0},
		},
	})
	assert.Equal(t, model.StageAlevin, c.ResolveByElapsedDays(model.StageEgg, 10000))
}

func TestMinMaxWeightFor(t *testing.T) {
	c := NewCache([]model.StageConstraint{
		{Stage: model.StageParr, MinWeightG: 10, MaxWeightG: 100},
		{Stage: model.StageSmolt, MinWeightG: 100, MaxWeightG: 0},
	}, model.FCRModel{})

	minW, ok := c.MinWeightFor(model.StageParr)
	assert.True(t, ok)
	assert.Equal(t, 10.0, minW)

	_, ok = c.MaxWeightFor(model.StageSmolt)
	assert.False(t, ok, "zero max_weight_g means unbounded")

	_, ok = c.MinWeightFor(model.StageAdult)
	assert.False(t, ok)
}
