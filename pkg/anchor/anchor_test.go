package anchor

import (
	"testing"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func TestBuild_GrowthSampleOnly(t *testing.T) {
	weight := 120.0
	set := Build(Inputs{
		GrowthSamples: []model.GrowthSample{
			{SampleDate: d(t, "2024-01-05"), AvgWeightG: &weight},
		},
	})
	a, ok := set.For(d(t, "2024-01-05"))
	require.True(t, ok)
	assert.Equal(t, model.AnchorGrowthSample, a.Type)
	assert.Equal(t, 120.0, a.WeightG)
}

// §4.4's priority rule: a growth sample on the same date wins over a
// transfer, which wins over a weighed treatment.
func TestBuild_PriorityResolution(t *testing.T) {
	gsWeight, trWeight, tmtWeight := 100.0, 200.0, 300.0
	date := d(t, "2024-02-01")
	set := Build(Inputs{
		GrowthSamples: []model.GrowthSample{{SampleDate: date, AvgWeightG: &gsWeight}},
		Transfers: []model.TransferAction{
			{TransferDate: date, Status: model.TransferCompleted, MeasuredAvgWeightG: &trWeight},
		},
		Treatments: []model.Treatment{
			{TreatmentDate: date, IncludesWeighing: true, MeasuredAvgWeightG: &tmtWeight},
		},
	})
	a, ok := set.For(date)
	require.True(t, ok)
	assert.Equal(t, model.AnchorGrowthSample, a.Type)
	assert.Equal(t, 100.0, a.WeightG)
}

func TestBuild_TransferWinsOverTreatment(t *testing.T) {
	trWeight, tmtWeight := 200.0, 300.0
	date := d(t, "2024-02-01")
	set := Build(Inputs{
		Transfers: []model.TransferAction{
			{TransferDate: date, Status: model.TransferCompleted, MeasuredAvgWeightG: &trWeight},
		},
		Treatments: []model.Treatment{
			{TreatmentDate: date, IncludesWeighing: true, MeasuredAvgWeightG: &tmtWeight},
		},
	})
	a, ok := set.For(date)
	require.True(t, ok)
	assert.Equal(t, model.AnchorTransfer, a.Type)
	assert.Equal(t, 200.0, a.WeightG)
}

func TestBuild_PendingTransferIgnored(t *testing.T) {
	weight := 200.0
	date := d(t, "2024-02-01")
	set := Build(Inputs{
		Transfers: []model.TransferAction{
			{TransferDate: date, Status: model.TransferPending, MeasuredAvgWeightG: &weight},
		},
	})
	_, ok := set.For(date)
	assert.False(t, ok)
}

func TestBuild_TreatmentWithoutWeighingIgnored(t *testing.T) {
	weight := 300.0
	date := d(t, "2024-02-01")
	set := Build(Inputs{
		Treatments: []model.Treatment{
			{TreatmentDate: date, IncludesWeighing: false, MeasuredAvgWeightG: &weight},
		},
	})
	_, ok := set.For(date)
	assert.False(t, ok)
}

func TestBuild_SelectionBiasAppliedToTransfer(t *testing.T) {
	weight := 100.0
	date := d(t, "2024-02-01")

	largest := Build(Inputs{Transfers: []model.TransferAction{
		{TransferDate: date, Status: model.TransferCompleted, MeasuredAvgWeightG: &weight, SelectionMethod: model.SelectionLargest},
	}})
	a, _ := largest.For(date)
	assert.InDelta(t, 88.0, a.WeightG, 1e-9)

	smallest := Build(Inputs{Transfers: []model.TransferAction{
		{TransferDate: date, Status: model.TransferCompleted, MeasuredAvgWeightG: &weight, SelectionMethod: model.SelectionSmallest},
	}})
	a, _ = smallest.For(date)
	assert.InDelta(t, 112.0, a.WeightG, 1e-9)
}
