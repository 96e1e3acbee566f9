package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"drivesync/internal/config"
	"drivesync/internal/drives"
	"drivesync/internal/executor"
	"drivesync/internal/gatekeeper"
	"drivesync/internal/models"
	"drivesync/internal/notifications"
	"drivesync/internal/process"
	"drivesync/internal/rclone"
	"drivesync/internal/runlog"
	"drivesync/internal/services"
)

type syncFlags struct {
	configPath      string
	rclonePath      string
	yes             bool
	dryRun          bool
	continueOnError bool
}

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	flags := &syncFlags{}

	rootCmd := &cobra.Command{
		Use:           "drivesync",
		Short:         "Mirror folders across whichever drives and rclone remotes are connected",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), flags, in, out)
		},
	}

	rootCmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (prompted for when omitted)")
	rootCmd.Flags().StringVarP(&flags.rclonePath, "rclone-path", "r", "", "Directory containing the rclone executable")
	rootCmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Do not wait for confirmation after listing drives")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print rclone command lines without running them")
	rootCmd.Flags().BoolVar(&flags.continueOnError, "continue-on-error", false, "Keep going after a failed rclone call")

	rootCmd.AddCommand(newSampleConfigCommand(out))

	return rootCmd
}

func newSampleConfigCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Print an annotated example configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(out, config.SampleConfig())
			return err
		},
	}
}

func runSync(ctx context.Context, flags *syncFlags, in io.Reader, out io.Writer) error {
	lock, err := acquireRunLock(runLockPath)
	if err != nil {
		return err
	}
	defer releaseRunLock(lock)

	prompter := newPrompter(in, out)

	configPath := flags.configPath
	if configPath == "" {
		configPath, err = prompter.ConfigPath()
		if err != nil {
			return err
		}
	}

	clock := clockwork.NewRealClock()
	cfg, err := config.Load(configPath, clock.Now())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg.Logging, os.Stderr)

	if flags.continueOnError {
		cfg.Run.OnFailure = models.FailurePolicyContinue
	}

	runner := process.NewExecRunner()
	client := rclone.NewClient(rclone.BinaryPath(flags.rclonePath), runner)
	printer := runlog.New(out, cfg.Run.OutputFile)

	slog.Info("configuration loaded",
		"path", configPath,
		"jobs", len(cfg.Jobs),
		"on_failure", cfg.Run.OnFailure,
		"run_log", printer.Path())

	hostname, err := os.Hostname()
	if err != nil {
		slog.Debug("failed to read hostname", "error", err)
	}

	service := services.NewSyncService(
		cfg,
		drives.NewResolver(drives.NewSystemLister(), drives.DefaultLabeler(runner)),
		executor.NewRCloneExecutor(client, printer, cfg.Run.OnFailure, flags.dryRun),
		gatekeeper.New(client, flags.dryRun),
		printer,
		prompter,
		notifications.NewPushoverNotifier(cfg.Notifications.Pushover, hostname),
		clock,
		services.Options{AssumeYes: flags.yes, DryRun: flags.dryRun},
	)

	_, err = service.Run(ctx)
	return err
}
