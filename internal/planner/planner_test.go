package planner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivesync/internal/models"
	"drivesync/internal/testutil"
)

func TestPlan_SharedPathKeepsDeclaredOrder(t *testing.T) {
	snapshot := testutil.CreateTestSnapshot("C", "/", "B", "/media/b", "A", "/media/a")
	job := testutil.CreateTestJob(func(j *models.SyncJob) {
		j.Path = "Photos"
		j.Drives = []string{"A", "MISSING", "B", "C"}
	})

	plan := New(snapshot, "*", models.SyncModeSync, nil).Plan(job)

	require.Len(t, plan.Endpoints, 3)
	assert.Equal(t, "A", plan.Endpoints[0].Label)
	assert.Equal(t, filepath.Join("/media/a", "Photos"), plan.Endpoints[0].Path)
	assert.Equal(t, "B", plan.Endpoints[1].Label)
	assert.Equal(t, "C", plan.Endpoints[2].Label)
	assert.Equal(t, []string{"MISSING"}, plan.Missing)
	assert.False(t, plan.Skipped())

	hub, ok := plan.Hub()
	require.True(t, ok)
	assert.Equal(t, "A", hub.Label)
}

func TestPlan_SkippedWithFewerThanTwoEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		drives []string
	}{
		{name: "none available", drives: []string{"X", "Y"}},
		{name: "only one available", drives: []string{"A", "Y"}},
	}

	snapshot := testutil.CreateTestSnapshot("A", "/media/a")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testutil.CreateTestJob(func(j *models.SyncJob) { j.Drives = tt.drives })

			plan := New(snapshot, "*", models.SyncModeSync, nil).Plan(job)

			assert.True(t, plan.Skipped())
			assert.Empty(t, plan.Pairs())
		})
	}
}

func TestPlan_RemoteAliasIgnoresSnapshot(t *testing.T) {
	job := testutil.CreateTestJob(func(j *models.SyncJob) {
		j.Path = `Backup\Photos`
		j.Drives = []string{"*gdrive", "*onedrive"}
	})

	plan := New(&models.Snapshot{}, "*", models.SyncModeCopy, nil).Plan(job)

	require.Len(t, plan.Endpoints, 2)
	assert.Equal(t, models.Endpoint{Label: "*gdrive", Path: "gdrive:Backup/Photos", Remote: true}, plan.Endpoints[0])
	assert.Equal(t, "onedrive:Backup/Photos", plan.Endpoints[1].Path)
	assert.Empty(t, plan.Missing)
}

func TestPlan_ExplicitPathsCarryEntryArgs(t *testing.T) {
	snapshot := testutil.CreateTestSnapshot("DATA", "/srv/data", "BACKUP", "/media/backup")
	job := &models.SyncJob{
		ID:   "docs",
		Args: []string{"--job"},
		Paths: []models.PathEntry{
			{Drive: "DATA", Path: "Documents"},
			{Drive: "GONE", Path: "Docs"},
			{Drive: "BACKUP", Path: "Docs", Args: []string{"--backup-dir", "old"}},
			{Drive: "*remote", Path: "docs", Args: []string{"--checksum"}},
		},
		OverwriteMode: models.SyncModeCopy,
	}

	plan := New(snapshot, "*", models.SyncModeSync, []string{"--global"}).Plan(job)
	pairs := plan.Pairs()

	require.Len(t, pairs, 2)
	assert.Equal(t, []string{"GONE"}, plan.Missing)

	assert.Equal(t, filepath.Join("/srv/data", "Documents"), pairs[0].Source.Path)
	assert.Equal(t, filepath.Join("/media/backup", "Docs"), pairs[0].Destination.Path)
	assert.Equal(t, models.SyncModeCopy, pairs[0].Mode)
	assert.Equal(t, []string{"--global", "--job", "--backup-dir", "old"}, pairs[0].Args)

	assert.Equal(t, "remote:docs", pairs[1].Destination.Path)
	assert.Equal(t, []string{"--global", "--job", "--checksum"}, pairs[1].Args)
}

func TestPairs_HubOnly(t *testing.T) {
	plan := &JobPlan{
		JobID: "star",
		Mode:  models.SyncModeSync,
		Endpoints: []models.Endpoint{
			{Label: "E0"}, {Label: "E1"}, {Label: "E2"}, {Label: "E3"},
		},
	}

	pairs := plan.Pairs()

	require.Len(t, pairs, 3)
	for i, pair := range pairs {
		assert.Equal(t, "E0", pair.Source.Label)
		assert.Equal(t, plan.Endpoints[i+1].Label, pair.Destination.Label)
	}
}

func TestPlan_GlobalModeWithoutOverride(t *testing.T) {
	snapshot := testutil.CreateTestSnapshot("BACKUP_A", "/a", "BACKUP_B", "/b")

	plan := New(snapshot, "*", models.SyncModeSync, nil).Plan(testutil.CreateTestJob())

	pairs := plan.Pairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, models.SyncModeSync, pairs[0].Mode)
}

func TestIsRemote(t *testing.T) {
	p := New(nil, "*", models.SyncModeSync, nil)

	assert.True(t, p.IsRemote("*gdrive"))
	assert.False(t, p.IsRemote("*"))
	assert.False(t, p.IsRemote("gdrive"))

	assert.False(t, New(nil, "", models.SyncModeSync, nil).IsRemote("*gdrive"))
}

func TestRemotePath(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		rel   string
		want  string
	}{
		{name: "no sub-path", alias: "gdrive", rel: "", want: "gdrive:"},
		{name: "relative", alias: "gdrive", rel: "Backup/Photos", want: "gdrive:Backup/Photos"},
		{name: "backslashes", alias: "gdrive", rel: `Backup\Photos`, want: "gdrive:Backup/Photos"},
		{name: "trailing slash", alias: "gdrive", rel: "Backup/", want: "gdrive:Backup"},
		{name: "explicit root kept", alias: "sftp", rel: "/srv/data", want: "sftp:/srv/data"},
		{name: "dot", alias: "gdrive", rel: ".", want: "gdrive:"},
		{name: "redundant separators", alias: "s3", rel: "bucket//dir/./x", want: "s3:bucket/dir/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemotePath(tt.alias, tt.rel)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, ":\\")
		})
	}
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/media/a", LocalPath("/media/a", ""))
	assert.Equal(t, filepath.Join("/media/a", "x", "y"), LocalPath("/media/a", "x/y"))
}
