package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/jonboulle/clockwork"
	"github.com/ncruces/go-strftime"

	"drivesync/internal/config"
	"drivesync/internal/interfaces"
	"drivesync/internal/models"
	"drivesync/internal/planner"
)

var (
	ErrDuplicateLabel = errors.New("duplicate drive label")
	ErrRunBlocked     = errors.New("run blocked")
	ErrPairsFailed    = errors.New("one or more sync commands failed")
)

const (
	startLayout   = "%Y/%m/%d %H:%M:%S"
	ConfirmPrompt = "Press Enter to continue"
)

// Options are the per-invocation switches that do not live in the config file.
type Options struct {
	AssumeYes bool
	DryRun    bool
}

type SyncService struct {
	config     *config.Config
	drives     interfaces.DriveSnapshotter
	executor   interfaces.PairExecutor
	gatekeeper interfaces.Gatekeeper
	printer    interfaces.Printer
	confirmer  interfaces.Confirmer
	notifier   interfaces.Notifier
	clock      clockwork.Clock
	opts       Options
}

func NewSyncService(
	cfg *config.Config,
	drives interfaces.DriveSnapshotter,
	executor interfaces.PairExecutor,
	gatekeeper interfaces.Gatekeeper,
	printer interfaces.Printer,
	confirmer interfaces.Confirmer,
	notifier interfaces.Notifier,
	clock clockwork.Clock,
	opts Options,
) *SyncService {
	return &SyncService{
		config:     cfg,
		drives:     drives,
		executor:   executor,
		gatekeeper: gatekeeper,
		printer:    printer,
		confirmer:  confirmer,
		notifier:   notifier,
		clock:      clock,
		opts:       opts,
	}
}

// Run enumerates drives once, then plans and executes every job in
// declared order. The summary is returned even when the run fails.
func (s *SyncService) Run(ctx context.Context) (*models.RunSummary, error) {
	// The config's load time already fed $datetime{}; the start line shows the same instant.
	startedAt := s.config.LoadedAt
	if startedAt.IsZero() {
		startedAt = s.clock.Now()
	}
	summary := &models.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: startedAt,
		DryRun:    s.opts.DryRun,
	}

	err := s.run(ctx, summary)
	summary.CompletedAt = s.clock.Now()

	s.printSummary(summary, err)
	s.notify(summary, err)

	return summary, err
}

func (s *SyncService) run(ctx context.Context, summary *models.RunSummary) error {
	s.printer.Printf("Starting rclone sync @ %s", strftime.Format(startLayout, summary.StartedAt))
	slog.Info("starting run",
		"run_id", summary.RunID,
		"jobs", len(s.config.Jobs),
		"mode", s.config.Run.SyncMode,
		"dry_run", s.opts.DryRun)

	decision := s.gatekeeper.CanStartRun(ctx)
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrRunBlocked, decision.Reason)
	}

	snapshot, err := s.collectDrives(ctx)
	if err != nil {
		return err
	}

	s.printer.Print("\nCurrently available drives (label: path):")
	s.printer.Print(renderDriveTable(snapshot))

	if !s.opts.AssumeYes {
		if err := s.confirmer.Confirm(ConfirmPrompt); err != nil {
			return fmt.Errorf("failed to confirm run: %w", err)
		}
	}

	plans := planner.New(snapshot, s.config.Run.RemotePrefix, s.config.Run.SyncMode, s.config.Run.Args)
	for i := range s.config.Jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runJob(ctx, plans, &s.config.Jobs[i], summary); err != nil {
			return err
		}
	}

	s.printer.Print("")

	// Under the continue policy failures do not stop the run, but it still fails.
	if summary.PairsFailed() > 0 {
		return fmt.Errorf("%w: %d of %d jobs affected", ErrPairsFailed, summary.Count(models.JobStatusFailed), len(summary.Jobs))
	}
	return nil
}

func (s *SyncService) collectDrives(ctx context.Context) (*models.Snapshot, error) {
	s.printer.Print("Collecting drive info. If there are network shares, it may take a while.")

	snapshot, err := s.drives.Snapshot(ctx, s.config.Run.ExtendedDriveSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate drives: %w", err)
	}
	slog.Debug("drive snapshot taken", "labels", snapshot.Labels())

	duplicates := snapshot.Duplicates()
	if len(duplicates) == 0 {
		return snapshot, nil
	}

	if s.config.Run.StrictLabels {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, strings.Join(duplicates, ", "))
	}

	for _, label := range duplicates {
		drive, _ := snapshot.Lookup(label)
		slog.Warn("drive label mounted more than once", "label", label, "using", drive.Mount)
		s.printer.Printf("Warning: label %s is mounted more than once, using %s", label, drive.Mount)
	}
	return snapshot, nil
}

func (s *SyncService) runJob(ctx context.Context, plans *planner.Planner, job *models.SyncJob, summary *models.RunSummary) error {
	s.printer.Printf("\nSyncing id: %s", job.ID)

	plan := plans.Plan(job)
	for _, label := range plan.Missing {
		s.printer.Printf("Drive %s not available", label)
	}

	if plan.Skipped() {
		s.printer.Print("Less than two drives available, skipping.")
		result := models.NewJobResult(job.ID, 0)
		result.Missing = plan.Missing
		result.MarkSkipped()
		summary.Add(result)
		slog.Info("job skipped", "job_id", job.ID, "available", len(plan.Endpoints), "missing", plan.Missing)
		return nil
	}

	result, err := s.executor.Execute(ctx, job.ID, plan.Pairs())
	if result != nil {
		result.Missing = plan.Missing
		summary.Add(result)
	}
	if err != nil {
		return err
	}

	slog.Info("job finished",
		"job_id", job.ID,
		"status", result.Status,
		"pairs_done", result.PairsDone,
		"pairs_failed", result.PairsFailed)
	return nil
}

func (s *SyncService) printSummary(summary *models.RunSummary, runErr error) {
	if runErr != nil && !errors.Is(runErr, ErrPairsFailed) {
		s.printer.Printf("Aborted: %v", runErr)
	} else {
		s.printer.Printf("Finished: %d done, %d skipped, %d failed in %s",
			summary.Count(models.JobStatusDone),
			summary.Count(models.JobStatusSkipped),
			summary.Count(models.JobStatusFailed),
			summary.Duration())
	}

	slog.Info("run finished",
		"run_id", summary.RunID,
		"duration", summary.Duration(),
		"pairs_failed", summary.PairsFailed(),
		"transferred_bytes", summary.Transferred(),
		"error", runErr)
}

// notify never fails the run; delivery errors are only logged.
func (s *SyncService) notify(summary *models.RunSummary, runErr error) {
	if s.notifier == nil || !s.notifier.IsEnabled() {
		return
	}

	var err error
	if runErr != nil {
		err = s.notifier.NotifyRunFailed(summary, runErr)
	} else {
		err = s.notifier.NotifyRunCompleted(summary)
	}
	if err != nil {
		slog.Error("failed to send run notification", "run_id", summary.RunID, "error", err)
	}
}

func renderDriveTable(snapshot *models.Snapshot) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Label", "Path", "FS", "Free", "Total"})

	var drives []models.Drive
	if snapshot != nil {
		drives = snapshot.Drives
	}
	for _, drive := range drives {
		free, total := "-", "-"
		if drive.Total > 0 {
			free = models.FormatBytes(int64(drive.Free))
			total = models.FormatBytes(int64(drive.Total))
		}
		tw.AppendRow(table.Row{drive.Label, drive.Mount, drive.FSType, free, total})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}
