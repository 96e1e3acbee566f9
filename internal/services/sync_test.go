package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"drivesync/internal/config"
	"drivesync/internal/interfaces"
	"drivesync/internal/mocks"
	"drivesync/internal/models"
	"drivesync/internal/testutil"
)

var testStart = time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)

type testDeps struct {
	drives     *mocks.MockDriveSnapshotter
	executor   *mocks.MockPairExecutor
	gatekeeper *mocks.MockGatekeeper
	confirmer  *mocks.MockConfirmer
	notifier   *mocks.MockNotifier
	printer    *testutil.RecordingPrinter
}

func createTestConfig(jobs ...*models.SyncJob) *config.Config {
	cfg := &config.Config{
		Run: config.RunConfig{
			SyncMode:     models.SyncModeSync,
			Args:         []string{"--fast-list"},
			OnFailure:    models.FailurePolicyAbort,
			RemotePrefix: config.DefaultRemotePrefix,
		},
		LoadedAt: testStart,
	}
	for _, job := range jobs {
		cfg.Jobs = append(cfg.Jobs, *job)
	}
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config, opts Options) (*SyncService, *testDeps) {
	deps := &testDeps{
		drives:     mocks.NewMockDriveSnapshotter(t),
		executor:   mocks.NewMockPairExecutor(t),
		gatekeeper: mocks.NewMockGatekeeper(t),
		confirmer:  mocks.NewMockConfirmer(t),
		notifier:   mocks.NewMockNotifier(t),
		printer:    &testutil.RecordingPrinter{},
	}
	service := NewSyncService(cfg, deps.drives, deps.executor, deps.gatekeeper, deps.printer,
		deps.confirmer, deps.notifier, clockwork.NewFakeClockAt(testStart), opts)
	return service, deps
}

func allowRun(deps *testDeps) {
	deps.gatekeeper.On("CanStartRun", mock.Anything).Return(interfaces.GateDecision{Allowed: true}).Once()
}

func doneResult(jobID string, pairs int) *models.JobResult {
	result := models.NewJobResult(jobID, pairs)
	result.PairsDone = pairs
	result.Status = models.JobStatusDone
	return result
}

func TestRun_SyncsEveryJobInOrder(t *testing.T) {
	photos := testutil.CreateTestJob(func(j *models.SyncJob) {
		j.ID = "photos"
		j.Drives = []string{"A", "B", "*gdrive"}
	})
	music := testutil.CreateTestJob(func(j *models.SyncJob) {
		j.ID = "music"
		j.Path = "Music"
		j.Drives = []string{"B", "A"}
		j.OverwriteMode = models.SyncModeCopy
	})
	cfg := createTestConfig(photos, music)
	service, deps := newTestService(t, cfg, Options{})

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, false).
		Return(testutil.CreateTestSnapshot("A", "/mnt/a", "B", "/mnt/b"), nil).Once()
	deps.confirmer.On("Confirm", ConfirmPrompt).Return(nil).Once()

	deps.executor.On("Execute", mock.Anything, "photos", mock.MatchedBy(func(pairs []models.Pair) bool {
		return len(pairs) == 2 &&
			pairs[0].Source.Path == "/mnt/a/Backup/Photos" &&
			pairs[0].Destination.Path == "/mnt/b/Backup/Photos" &&
			pairs[1].Destination.Path == "gdrive:Backup/Photos" &&
			pairs[0].Mode == models.SyncModeSync
	})).Return(doneResult("photos", 2), nil).Once()

	deps.executor.On("Execute", mock.Anything, "music", mock.MatchedBy(func(pairs []models.Pair) bool {
		return len(pairs) == 1 &&
			pairs[0].Source.Label == "B" &&
			pairs[0].Destination.Label == "A" &&
			pairs[0].Mode == models.SyncModeCopy
	})).Return(doneResult("music", 1), nil).Once()

	deps.notifier.On("IsEnabled").Return(true).Once()
	deps.notifier.On("NotifyRunCompleted", mock.AnythingOfType("*models.RunSummary")).Return(nil).Once()

	summary, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, testStart, summary.StartedAt)
	require.Len(t, summary.Jobs, 2)
	assert.Equal(t, "photos", summary.Jobs[0].JobID)
	assert.Equal(t, "music", summary.Jobs[1].JobID)
	assert.Equal(t, 2, summary.Count(models.JobStatusDone))

	console := deps.printer.Console
	assert.Equal(t, "Starting rclone sync @ 2024/03/01 09:30:15", console[0])
	assert.Equal(t, "Collecting drive info. If there are network shares, it may take a while.", console[1])
	assert.Equal(t, "\nCurrently available drives (label: path):", console[2])
	assert.Contains(t, console[3], "/mnt/a")
	assert.Contains(t, console, "\nSyncing id: photos")
	assert.Contains(t, console, "\nSyncing id: music")
}

func TestRun_SkipsJobsWithFewerThanTwoDrives(t *testing.T) {
	job := testutil.CreateTestJob(func(j *models.SyncJob) {
		j.Drives = []string{"A", "MISSING"}
	})
	service, deps := newTestService(t, createTestConfig(job), Options{AssumeYes: true})

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, false).
		Return(testutil.CreateTestSnapshot("A", "/mnt/a"), nil).Once()
	deps.notifier.On("IsEnabled").Return(false).Once()

	summary, err := service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Jobs, 1)
	assert.Equal(t, models.JobStatusSkipped, summary.Jobs[0].Status)
	assert.Equal(t, []string{"MISSING"}, summary.Jobs[0].Missing)
	assert.Contains(t, deps.printer.Console, "Drive MISSING not available")
	assert.Contains(t, deps.printer.Console, "Less than two drives available, skipping.")
	deps.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	deps.confirmer.AssertNotCalled(t, "Confirm", mock.Anything)
}

func TestRun_AbortStopsRemainingJobs(t *testing.T) {
	first := testutil.CreateTestJob(func(j *models.SyncJob) { j.ID = "first"; j.Drives = []string{"A", "B"} })
	second := testutil.CreateTestJob(func(j *models.SyncJob) { j.ID = "second"; j.Drives = []string{"A", "B"} })
	service, deps := newTestService(t, createTestConfig(first, second), Options{AssumeYes: true})

	pairErr := errors.New("sync command failed: job first, A -> B: exit status 1")
	failed := models.NewJobResult("first", 1)
	failed.MarkPairFailed(pairErr.Error())
	failed.MarkCompleted()

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, false).
		Return(testutil.CreateTestSnapshot("A", "/mnt/a", "B", "/mnt/b"), nil).Once()
	deps.executor.On("Execute", mock.Anything, "first", mock.Anything).Return(failed, pairErr).Once()
	deps.notifier.On("IsEnabled").Return(true).Once()
	deps.notifier.On("NotifyRunFailed", mock.AnythingOfType("*models.RunSummary"), pairErr).
		Return(errors.New("pushover down")).Once()

	summary, err := service.Run(context.Background())
	require.ErrorIs(t, err, pairErr)

	require.Len(t, summary.Jobs, 1)
	assert.Equal(t, models.JobStatusFailed, summary.Jobs[0].Status)
	assert.NotContains(t, deps.printer.Console, "\nSyncing id: second")
	assert.Contains(t, deps.printer.Console, "Aborted: "+pairErr.Error())
}

func TestRun_DuplicateLabels(t *testing.T) {
	job := testutil.CreateTestJob(func(j *models.SyncJob) { j.Drives = []string{"A", "B"} })
	snapshot := testutil.CreateTestSnapshot("A", "/mnt/a", "A", "/mnt/a2", "B", "/mnt/b")

	t.Run("first mount wins", func(t *testing.T) {
		service, deps := newTestService(t, createTestConfig(job), Options{AssumeYes: true})
		allowRun(deps)
		deps.drives.On("Snapshot", mock.Anything, false).Return(snapshot, nil).Once()
		deps.executor.On("Execute", mock.Anything, "test-job", mock.MatchedBy(func(pairs []models.Pair) bool {
			return len(pairs) == 1 && pairs[0].Source.Path == "/mnt/a/Backup/Photos"
		})).Return(doneResult("test-job", 1), nil).Once()
		deps.notifier.On("IsEnabled").Return(false).Once()

		_, err := service.Run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, deps.printer.Console, "Warning: label A is mounted more than once, using /mnt/a")
	})

	t.Run("strict labels", func(t *testing.T) {
		cfg := createTestConfig(job)
		cfg.Run.StrictLabels = true
		service, deps := newTestService(t, cfg, Options{AssumeYes: true})
		allowRun(deps)
		deps.drives.On("Snapshot", mock.Anything, false).Return(snapshot, nil).Once()
		deps.notifier.On("IsEnabled").Return(false).Once()

		_, err := service.Run(context.Background())
		require.ErrorIs(t, err, ErrDuplicateLabel)
		assert.Contains(t, err.Error(), "A")
	})
}

func TestRun_GatekeeperBlocks(t *testing.T) {
	service, deps := newTestService(t, createTestConfig(testutil.CreateTestJob()), Options{})

	deps.gatekeeper.On("CanStartRun", mock.Anything).
		Return(interfaces.GateDecision{Allowed: false, Reason: "rclone executable not available"}).Once()
	deps.notifier.On("IsEnabled").Return(false).Once()

	summary, err := service.Run(context.Background())
	require.ErrorIs(t, err, ErrRunBlocked)
	assert.Contains(t, err.Error(), "rclone executable not available")
	assert.Empty(t, summary.Jobs)
	deps.drives.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything)
}

func TestRun_ConfirmationRefused(t *testing.T) {
	service, deps := newTestService(t, createTestConfig(testutil.CreateTestJob()), Options{})
	notInteractive := errors.New("stdin is not a terminal")

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, false).Return(testutil.CreateTestSnapshot(), nil).Once()
	deps.confirmer.On("Confirm", ConfirmPrompt).Return(notInteractive).Once()
	deps.notifier.On("IsEnabled").Return(false).Once()

	_, err := service.Run(context.Background())
	require.ErrorIs(t, err, notInteractive)
	assert.Contains(t, err.Error(), "failed to confirm run")
}

func TestRun_ExtendedDriveSearch(t *testing.T) {
	cfg := createTestConfig(testutil.CreateTestJob())
	cfg.Run.ExtendedDriveSearch = true
	service, deps := newTestService(t, cfg, Options{AssumeYes: true})

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, true).Return(nil, errors.New("lsblk: not found")).Once()
	deps.notifier.On("IsEnabled").Return(false).Once()

	_, err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enumerate drives")
}

func TestRun_CancelledBeforeJobs(t *testing.T) {
	service, deps := newTestService(t, createTestConfig(testutil.CreateTestJob()), Options{AssumeYes: true})
	ctx, cancel := context.WithCancel(context.Background())

	deps.gatekeeper.On("CanStartRun", mock.Anything).Return(interfaces.GateDecision{Allowed: true}).Once()
	deps.drives.On("Snapshot", mock.Anything, false).
		Run(func(mock.Arguments) { cancel() }).
		Return(testutil.CreateTestSnapshot("BACKUP_A", "/a", "BACKUP_B", "/b"), nil).Once()
	deps.notifier.On("IsEnabled").Return(false).Once()

	_, err := service.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRenderDriveTable(t *testing.T) {
	snapshot := &models.Snapshot{Drives: []models.Drive{
		{Label: "BACKUP_A", Mount: "/mnt/a", FSType: "ext4", Total: 2 << 30, Free: 1 << 30},
		{Label: "NAS", Mount: "/mnt/nas", FSType: "cifs"},
	}}

	rendered := renderDriveTable(snapshot)

	assert.Contains(t, rendered, "BACKUP_A")
	assert.Contains(t, rendered, "/mnt/nas")
	assert.Contains(t, rendered, "1.0 GiB")
	assert.Contains(t, rendered, "2.0 GiB")
	assert.Contains(t, renderDriveTable(nil), "LABEL")
}

func TestRun_ContinuePolicyStillFailsRun(t *testing.T) {
	first := testutil.CreateTestJob(func(j *models.SyncJob) { j.ID = "first"; j.Drives = []string{"A", "B"} })
	second := testutil.CreateTestJob(func(j *models.SyncJob) { j.ID = "second"; j.Drives = []string{"A", "B"} })
	cfg := createTestConfig(first, second)
	cfg.Run.OnFailure = models.FailurePolicyContinue
	service, deps := newTestService(t, cfg, Options{AssumeYes: true})

	failed := models.NewJobResult("first", 1)
	failed.MarkPairFailed("sync command failed: job first, A -> B: exit status 1")
	failed.MarkCompleted()

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, false).
		Return(testutil.CreateTestSnapshot("A", "/mnt/a", "B", "/mnt/b"), nil).Once()
	deps.executor.On("Execute", mock.Anything, "first", mock.Anything).Return(failed, nil).Once()
	deps.executor.On("Execute", mock.Anything, "second", mock.Anything).Return(doneResult("second", 1), nil).Once()
	deps.notifier.On("IsEnabled").Return(true).Once()
	deps.notifier.On("NotifyRunFailed", mock.AnythingOfType("*models.RunSummary"),
		mock.MatchedBy(func(err error) bool { return errors.Is(err, ErrPairsFailed) })).Return(nil).Once()

	summary, err := service.Run(context.Background())
	require.ErrorIs(t, err, ErrPairsFailed)

	require.Len(t, summary.Jobs, 2, "remaining jobs still run")
	assert.Equal(t, 1, summary.PairsFailed())
	assert.Contains(t, deps.printer.Console, "Finished: 1 done, 0 skipped, 1 failed in 0s")
}

func TestRun_StartLineUsesConfigLoadTime(t *testing.T) {
	cfg := createTestConfig(testutil.CreateTestJob(func(j *models.SyncJob) { j.Drives = []string{"A", "B"} }))
	cfg.LoadedAt = time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)
	service, deps := newTestService(t, cfg, Options{AssumeYes: true, DryRun: true})

	allowRun(deps)
	deps.drives.On("Snapshot", mock.Anything, false).Return(testutil.CreateTestSnapshot(), nil).Once()
	deps.notifier.On("IsEnabled").Return(false).Once()

	summary, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.LoadedAt, summary.StartedAt)
	assert.Equal(t, "Starting rclone sync @ 2023/12/31 23:59:59", deps.printer.Console[0])
}
