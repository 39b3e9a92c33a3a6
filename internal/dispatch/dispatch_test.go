package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	enqueued []RecomputeWindow
	err      error
}

func (f *fakeQueue) Enqueue(ctx context.Context, window RecomputeWindow) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, window)
	return nil
}

func newDispatcher(queue TaskQueue) *Dispatcher {
	return NewDispatcher(queue, zerolog.Nop())
}

func d(s string) time.Time {
	parsed, _ := time.Parse("2006-01-02", s)
	return parsed
}

func TestOnGrowthSampleCreated_EnqueuesAssignmentWindow(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)

	sampleDate := d("2024-03-10")
	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", sampleDate)

	require.Len(t, queue.enqueued, 1)
	win := queue.enqueued[0]
	assert.Equal(t, "assignment-1", win.AssignmentID)
	assert.Empty(t, win.BatchID)
	assert.Equal(t, sampleDate.AddDate(0, 0, -2), win.Start)
	assert.Equal(t, sampleDate.AddDate(0, 0, 2), win.End)
}

func TestOnMortalityEventCreated_EnqueuesBatchWindow(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)

	eventDate := d("2024-03-10")
	disp.OnMortalityEventCreated(context.Background(), "batch-1", eventDate)

	require.Len(t, queue.enqueued, 1)
	win := queue.enqueued[0]
	assert.Equal(t, "batch-1", win.BatchID)
	assert.Empty(t, win.AssignmentID)
	assert.Equal(t, eventDate.AddDate(0, 0, -1), win.Start)
	assert.Equal(t, eventDate.AddDate(0, 0, 1), win.End)
}

func TestOnTransferCompleted_EnqueuesDestinationAssignmentWindow(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)

	transferDate := d("2024-03-10")
	disp.OnTransferCompleted(context.Background(), "assignment-dest", transferDate)

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "assignment-dest", queue.enqueued[0].AssignmentID)
}

func TestOnTreatmentCreated_IgnoredWithoutWeighing(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)

	disp.OnTreatmentCreated(context.Background(), "assignment-1", d("2024-03-10"), false)
	assert.Empty(t, queue.enqueued)
}

func TestOnTreatmentCreated_EnqueuesWhenWeighingIncluded(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)

	disp.OnTreatmentCreated(context.Background(), "assignment-1", d("2024-03-10"), true)
	assert.Len(t, queue.enqueued, 1)
}

// Repeated events for the same (assignment, date) within the dedup TTL must
// not enqueue twice.
func TestDedup_SuppressesRepeatWithinTTL(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)
	now := d("2024-03-10")
	disp.Now = func() time.Time { return now }

	sampleDate := d("2024-03-10")
	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", sampleDate)
	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", sampleDate)

	assert.Len(t, queue.enqueued, 1)
}

func TestDedup_AllowsReenqueueAfterTTLExpires(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)
	current := d("2024-03-10")
	disp.Now = func() time.Time { return current }

	sampleDate := d("2024-03-10")
	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", sampleDate)

	current = current.Add(defaultDedupTTL + time.Second)
	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", sampleDate)

	assert.Len(t, queue.enqueued, 2)
}

func TestDedup_DistinctKeysDoNotSuppressEachOther(t *testing.T) {
	queue := &fakeQueue{}
	disp := newDispatcher(queue)
	now := d("2024-03-10")
	disp.Now = func() time.Time { return now }

	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", now)
	disp.OnGrowthSampleCreated(context.Background(), "assignment-2", now)
	disp.OnGrowthSampleCreated(context.Background(), "assignment-1", now.AddDate(0, 0, 1))

	assert.Len(t, queue.enqueued, 3)
}

// §4.9: a queue failure is logged and swallowed, never propagated to the
// caller — dispatch is best-effort, the scheduler's catch-up covers misses.
func TestEnqueueFailure_SwallowedNotPanicked(t *testing.T) {
	queue := &fakeQueue{err: errors.New("queue unavailable")}
	disp := newDispatcher(queue)

	assert.NotPanics(t, func() {
		disp.OnGrowthSampleCreated(context.Background(), "assignment-1", d("2024-03-10"))
	})
}
