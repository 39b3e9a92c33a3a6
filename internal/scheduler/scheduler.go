// Package scheduler implements the Scheduler / Catch-up job (§4.10): a
// periodic fleet-wide recompute pass over ACTIVE, scenario-pinned batches,
// bounded by a plain goroutine worker pool in the teacher's ticker +
// stopChan + sync.WaitGroup style (pkg/simulator.ComputeSimulator), not
// errgroup or a semaphore package.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/aquamind/growthengine/internal/dispatch"
	"github.com/aquamind/growthengine/pkg/model"
	"github.com/rs/zerolog"
)

const (
	defaultWorkers    = 4
	defaultWindowDays = 7
)

// BatchSource resolves the ACTIVE, scenario-pinned batches to sweep.
// Batches without a pinned scenario are reported separately so the caller
// can log a warning and skip them (§4.10).
type BatchSource interface {
	LoadActiveScenarioPinnedBatches(ctx context.Context, batchIDs []string) (pinned []model.Batch, skippedUnpinned []model.Batch, err error)
}

// Scheduler runs the periodic catch-up sweep.
type Scheduler struct {
	Queue   dispatch.TaskQueue
	Source  BatchSource
	Log     zerolog.Logger
	Workers int
	// WindowDays is the recompute lookback window (default 7, §4.10).
	WindowDays int

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler constructs a Scheduler with default worker count and window.
func NewScheduler(queue dispatch.TaskQueue, source BatchSource, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Queue:      queue,
		Source:     source,
		Log:        log.With().Str("component", "scheduler").Logger(),
		Workers:    defaultWorkers,
		WindowDays: defaultWindowDays,
		stopChan:   make(chan struct{}),
	}
}

// Start runs RunOnce on a fixed interval until Stop is called. It spawns one
// background goroutine and returns immediately.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.wg.Add(1)
	go s.loop(ctx, interval)
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx, nil, false, time.Now()); err != nil {
				s.Log.Error().Err(err).Msg("catch-up sweep failed")
			}
		}
	}
}

// Stop halts the background loop started by Start and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// RunOnce sweeps batchIDs (or every ACTIVE batch when nil) once: for each
// scenario-pinned batch it enqueues a batch-level recompute over the last
// WindowDays days, via a pool of at most s.Workers goroutines. dryRun
// enumerates without enqueueing (§4.10).
func (s *Scheduler) RunOnce(ctx context.Context, batchIDs []string, dryRun bool, now time.Time) (*model.EngineResult, error) {
	result := model.NewEngineResult()

	pinned, skipped, err := s.Source.LoadActiveScenarioPinnedBatches(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	for _, b := range skipped {
		s.Log.Warn().Str("batch_id", b.ID).Msg("batch has no pinned scenario, skipping catch-up sweep")
		result.AddWarning("batch %s skipped: no pinned scenario", b.ID)
	}

	workers := s.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	jobs := make(chan model.Batch)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				if dryRun {
					continue
				}
				window := dispatch.RecomputeWindow{
					BatchID: batch.ID,
					Start:   now.AddDate(0, 0, -s.WindowDays),
					End:     now,
				}
				if err := s.Queue.Enqueue(ctx, window); err != nil {
					mu.Lock()
					result.AddWarning("batch %s: enqueue failed: %v", batch.ID, err)
					mu.Unlock()
				}
			}
		}()
	}

	for _, batch := range pinned {
		select {
		case <-ctx.Done():
		case jobs <- batch:
		}
	}
	close(jobs)
	wg.Wait()

	return result, nil
}
