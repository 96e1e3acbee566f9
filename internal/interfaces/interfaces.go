package interfaces

import (
	"context"

	"drivesync/internal/models"
)

// CommandRunner runs an external program to completion.
type CommandRunner interface {
	// Output returns standard output only.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// CombinedOutput returns standard output and standard error interleaved.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Labeler resolves the volume label of a mounted filesystem.
// An unlabeled volume yields an empty string and no error.
type Labeler interface {
	Label(ctx context.Context, mount string) (string, error)
}

// DriveSnapshotter enumerates the labeled drives currently attached.
type DriveSnapshotter interface {
	Snapshot(ctx context.Context, includeNetwork bool) (*models.Snapshot, error)
}

// PairExecutor runs every pair of a planned job.
type PairExecutor interface {
	Execute(ctx context.Context, jobID string, pairs []models.Pair) (*models.JobResult, error)
}

// Printer is the console + run log sink for progress lines.
type Printer interface {
	Print(msg string)
	Printf(format string, args ...any)
	// Record writes to the run log only, never to the console.
	Record(msg string)
}

// Confirmer blocks until the user agrees to continue.
type Confirmer interface {
	Confirm(prompt string) error
}

// Notifier delivers the outcome of a run.
type Notifier interface {
	IsEnabled() bool
	NotifyRunCompleted(summary *models.RunSummary) error
	NotifyRunFailed(summary *models.RunSummary, runErr error) error
}

// GateDecision represents whether a run can proceed
type GateDecision struct {
	Allowed bool
	Reason  string
	Details map[string]interface{}
}

// Gatekeeper performs the checks that must pass before any drive is touched.
type Gatekeeper interface {
	CanStartRun(ctx context.Context) GateDecision
}
