package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	workerPollInterval = 10 * time.Second
	workerClaimLimit    = 20
)

// runRecomputeWorker drains RecomputeTask rows enqueued by the dispatcher and
// the scheduler's catch-up sweep: for each, it reruns the Assimilation
// Engine over the task's window, then the Live Projection and Forecast
// engines for every assignment touched, so a recompute window always ends
// with an up-to-date planning rollup.
func runRecomputeWorker(ctx context.Context) {
	ticker := time.NewTicker(workerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processPendingTasks(ctx)
		}
	}
}

func processPendingTasks(ctx context.Context) {
	tasks, err := repo.ClaimPendingTasks(ctx, workerClaimLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to claim pending recompute tasks")
		return
	}

	for _, task := range tasks {
		assignmentIDs, err := assignmentsForTask(ctx, task.AssignmentID, task.BatchID)
		if err != nil {
			log.Error().Err(err).Uint("task_id", task.ID).Msg("failed to resolve assignments for recompute task")
			if markErr := repo.MarkTaskFailed(ctx, task.ID, err); markErr != nil {
				log.Error().Err(markErr).Uint("task_id", task.ID).Msg("failed to mark recompute task failed")
			}
			continue
		}

		var firstFailure error
		for _, assignmentID := range assignmentIDs {
			if err := recomputeAssignment(ctx, assignmentID, task.WindowStart, task.WindowEnd); err != nil {
				log.Error().Err(err).Str("assignment_id", assignmentID).Uint("task_id", task.ID).Msg("recompute failed")
				if firstFailure == nil {
					firstFailure = err
				}
			}
		}

		if firstFailure != nil {
			if err := repo.MarkTaskFailed(ctx, task.ID, firstFailure); err != nil {
				log.Error().Err(err).Uint("task_id", task.ID).Msg("failed to mark recompute task failed")
			}
			continue
		}
		if err := repo.MarkTaskDone(ctx, task.ID); err != nil {
			log.Error().Err(err).Uint("task_id", task.ID).Msg("failed to mark recompute task done")
		}
	}
}

// assignmentsForTask resolves an assignment-scoped task to its one
// assignment, or a batch-scoped task to every active assignment in the
// batch.
func assignmentsForTask(ctx context.Context, assignmentID, batchID string) ([]string, error) {
	if assignmentID != "" {
		return []string{assignmentID}, nil
	}
	assignments, err := repo.LoadActiveAssignmentsForBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	return ids, nil
}

// recomputeAssignment runs assimilation over the window, then refreshes the
// assignment's live forward projections and forecast summary.
func recomputeAssignment(ctx context.Context, assignmentID string, start, end time.Time) error {
	result, err := assimilationEngine.AssimilateWindow(ctx, assignmentID, start, end)
	if err != nil {
		return err
	}
	if !result.Success {
		log.Warn().Str("assignment_id", assignmentID).Strs("errors", result.Errors).Msg("assimilation window completed with errors")
	}

	now := time.Now()
	if _, liveResult := liveProjectionEngine.Run(ctx, assignmentID, now); !liveResult.Success {
		log.Warn().Str("assignment_id", assignmentID).Strs("errors", liveResult.Errors).Msg("live projection refresh failed")
	}
	if _, forecastResult := forecastEngine.Summarize(ctx, assignmentID, now); !forecastResult.Success {
		log.Warn().Str("assignment_id", assignmentID).Strs("errors", forecastResult.Errors).Msg("forecast summary refresh failed")
	}
	return nil
}
