package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"drivesync/internal/interfaces"
	"drivesync/internal/models"
	"drivesync/internal/rclone"
)

// ErrPairFailed marks an rclone invocation that exited unsuccessfully.
var ErrPairFailed = errors.New("sync command failed")

// RCloneExecutor runs the pairs of one job, one rclone process at a time.
type RCloneExecutor struct {
	client  *rclone.Client
	printer interfaces.Printer
	policy  models.FailurePolicy
	dryRun  bool
}

func NewRCloneExecutor(client *rclone.Client, printer interfaces.Printer, policy models.FailurePolicy, dryRun bool) *RCloneExecutor {
	if policy == "" {
		policy = models.FailurePolicyAbort
	}
	return &RCloneExecutor{
		client:  client,
		printer: printer,
		policy:  policy,
		dryRun:  dryRun,
	}
}

// Execute runs pairs in order. Under the abort policy the first failure
// stops the job and is returned; under continue it is only recorded on
// the result. Cancellation always stops the job.
func (r *RCloneExecutor) Execute(ctx context.Context, jobID string, pairs []models.Pair) (*models.JobResult, error) {
	result := models.NewJobResult(jobID, len(pairs))
	result.MarkStarted()

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			result.MarkPairFailed(err.Error())
			result.MarkCompleted()
			return result, err
		}

		r.printer.Printf("Syncing drives: %s -> %s", pair.Source.Label, pair.Destination.Label)

		if r.dryRun {
			r.printer.Printf("Dry run: %s", r.client.CommandLine(pair))
			result.MarkPairDone()
			continue
		}

		if err := r.runPair(ctx, jobID, pair, result); err != nil {
			if ctx.Err() != nil || r.policy == models.FailurePolicyAbort {
				result.MarkCompleted()
				return result, err
			}
		}
	}

	result.MarkCompleted()
	return result, nil
}

func (r *RCloneExecutor) runPair(ctx context.Context, jobID string, pair models.Pair, result *models.JobResult) error {
	slog.Debug("running rclone",
		"job_id", jobID,
		"mode", pair.Mode,
		"source", pair.Source.Path,
		"dest", pair.Destination.Path,
		"args", pair.Args)

	out, err := r.client.Run(ctx, pair)
	if len(out) > 0 {
		r.printer.Record(string(out))
	}

	stats := ParseStats(out)
	result.Transferred += stats.Bytes

	if err != nil {
		pairErr := fmt.Errorf("%w: job %s, %s -> %s: %w", ErrPairFailed, jobID, pair.Source.Label, pair.Destination.Label, err)
		result.MarkPairFailed(pairErr.Error())
		slog.Error("rclone pair failed",
			"job_id", jobID,
			"source", pair.Source.Label,
			"dest", pair.Destination.Label,
			"error", err)
		return pairErr
	}

	result.MarkPairDone()
	slog.Info("rclone pair completed",
		"job_id", jobID,
		"source", pair.Source.Label,
		"dest", pair.Destination.Label,
		"transferred_bytes", stats.Bytes,
		"files", stats.Files,
		"errors", stats.Errors)
	return nil
}
