// Package dispatch implements the Event Dispatcher (§4.9): when writer-side
// observations are created, it enqueues bounded recompute windows without
// thrashing, via an in-memory TTL dedup cache keyed like the teacher's
// mutex-guarded tracker structs (pkg/policy.PolicyEngine, pkg/queue).
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultDedupTTL      = 60 * time.Second
	assignmentWindowDays = 2
	batchWindowDays      = 1
)

// RecomputeWindow is one enqueued recompute task: either assignment-scoped
// (GrowthSample, Treatment) or batch-scoped (MortalityEvent).
type RecomputeWindow struct {
	AssignmentID string // empty for batch-scoped windows
	BatchID      string // empty for assignment-scoped windows
	Start        time.Time
	End          time.Time
}

// TaskQueue is the injectable recompute task sink. internal/database provides
// the concrete implementation, which the dispatcher and internal/scheduler
// enqueue through; tests can substitute a recording fake.
type TaskQueue interface {
	Enqueue(ctx context.Context, window RecomputeWindow) error
}

// Dispatcher enqueues recompute windows in reaction to observation writes.
// The in-memory dedup cache is not shared across processes (§5) — it is a
// best-effort thrash guard, not a correctness mechanism; the Scheduler's
// periodic catch-up covers anything it misses.
type Dispatcher struct {
	Queue TaskQueue
	Log   zerolog.Logger

	// Now is the time source, overridable in tests; defaults to time.Now.
	Now func() time.Time

	dedupTTL time.Duration
	mu       sync.Mutex
	dedup    map[string]time.Time // key -> expiry
}

// NewDispatcher constructs a Dispatcher with the default 60s dedup TTL.
func NewDispatcher(queue TaskQueue, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		Queue:    queue,
		Log:      log.With().Str("component", "dispatch").Logger(),
		Now:      time.Now,
		dedupTTL: defaultDedupTTL,
		dedup:    make(map[string]time.Time),
	}
}

// OnGrowthSampleCreated reacts to a GrowthSample creation: enqueue
// [sampleDate-2, sampleDate+2] for the assignment.
func (d *Dispatcher) OnGrowthSampleCreated(ctx context.Context, assignmentID string, sampleDate time.Time) {
	d.dispatchAssignment(ctx, assignmentID, sampleDate)
}

// OnMortalityEventCreated reacts to a MortalityEvent creation: enqueue
// [eventDate-1, eventDate+1] at the batch level, since mortality events are
// not assignment-scoped (§4.5.5 distribution happens across a batch's active
// assignments).
func (d *Dispatcher) OnMortalityEventCreated(ctx context.Context, batchID string, eventDate time.Time) {
	d.dispatchBatch(ctx, batchID, eventDate)
}

// OnTransferCompleted reacts to a TransferAction reaching COMPLETED status:
// enqueue [transferDate-2, transferDate+2] for the destination assignment,
// since a completed transfer may carry a measured-weight anchor (§4.4
// priority 2).
func (d *Dispatcher) OnTransferCompleted(ctx context.Context, destinationAssignmentID string, transferDate time.Time) {
	d.dispatchAssignment(ctx, destinationAssignmentID, transferDate)
}

// OnTreatmentCreated reacts to a Treatment creation only when it includes a
// weighing event (§4.9 rule); a treatment without includesWeighing never
// changes an anchor and is ignored.
func (d *Dispatcher) OnTreatmentCreated(ctx context.Context, assignmentID string, treatmentDate time.Time, includesWeighing bool) {
	if !includesWeighing {
		return
	}
	d.dispatchAssignment(ctx, assignmentID, treatmentDate)
}

func (d *Dispatcher) dispatchAssignment(ctx context.Context, assignmentID string, date time.Time) {
	key := fmt.Sprintf("recompute:dedup:%s:%s", assignmentID, date.Format("2006-01-02"))
	if d.alreadyDispatched(key) {
		return
	}
	window := RecomputeWindow{
		AssignmentID: assignmentID,
		Start:        date.AddDate(0, 0, -assignmentWindowDays),
		End:          date.AddDate(0, 0, assignmentWindowDays),
	}
	d.enqueue(ctx, window)
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, batchID string, date time.Time) {
	key := fmt.Sprintf("recompute:dedup:batch:%s:%s", batchID, date.Format("2006-01-02"))
	if d.alreadyDispatched(key) {
		return
	}
	window := RecomputeWindow{
		BatchID: batchID,
		Start:   date.AddDate(0, 0, -batchWindowDays),
		End:     date.AddDate(0, 0, batchWindowDays),
	}
	d.enqueue(ctx, window)
}

// enqueue hands the window to the task queue. If the queue is unavailable,
// this is logged and swallowed (§4.9: "best-effort optimization, not
// correctness-critical — the scheduler will catch up").
func (d *Dispatcher) enqueue(ctx context.Context, window RecomputeWindow) {
	if err := d.Queue.Enqueue(ctx, window); err != nil {
		d.Log.Warn().
			Err(err).
			Str("assignment_id", window.AssignmentID).
			Str("batch_id", window.BatchID).
			Msg("recompute enqueue failed, degrading open")
	}
}

// alreadyDispatched checks and sets the dedup key atomically. An expired
// entry is overwritten when its own key comes round again; entries for other
// keys are never removed.
func (d *Dispatcher) alreadyDispatched(key string) bool {
	now := d.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.dedup[key]; ok && now.Before(expiry) {
		return true
	}
	d.dedup[key] = now.Add(d.dedupTTL)
	return false
}
