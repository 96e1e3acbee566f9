package rclone

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivesync/internal/models"
	"drivesync/internal/testutil"
)

func testPair() models.Pair {
	return models.Pair{
		Source:      models.Endpoint{Label: "A", Path: "/mnt/a/Photos"},
		Destination: models.Endpoint{Label: "*gdrive", Path: "gdrive:Photos", Remote: true},
		Mode:        models.SyncModeSync,
		Args:        []string{"--fast-list", "--exclude", "*.tmp"},
	}
}

func TestBinaryPath(t *testing.T) {
	name := "rclone"
	if runtime.GOOS == "windows" {
		name = "rclone.exe"
	}

	assert.Equal(t, name, BinaryPath(""))
	assert.Equal(t, filepath.Join("opt", "rclone", name), BinaryPath(filepath.Join("opt", "rclone")))
}

func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"sync", "/mnt/a/Photos", "gdrive:Photos", "--fast-list", "--exclude", "*.tmp"},
		Args(testPair()))

	pair := testPair()
	pair.Mode = models.SyncModeCopy
	pair.Args = nil
	assert.Equal(t, []string{"copy", "/mnt/a/Photos", "gdrive:Photos"}, Args(pair))
}

func TestClient_CommandLine(t *testing.T) {
	client := NewClient("rclone", &testutil.FakeRunner{})
	assert.Equal(t, "rclone sync /mnt/a/Photos gdrive:Photos --fast-list --exclude *.tmp", client.CommandLine(testPair()))
}

func TestClient_Run(t *testing.T) {
	runner := &testutil.FakeRunner{
		Responses: []testutil.Response{{Output: []byte("Transferred: 3 files")}},
	}
	client := NewClient("/usr/bin/rclone", runner)

	out, err := client.Run(context.Background(), testPair())
	require.NoError(t, err)
	assert.Equal(t, "Transferred: 3 files", string(out))

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "/usr/bin/rclone", runner.Calls[0].Name)
	assert.Equal(t, Args(testPair()), runner.Calls[0].Args)
}

func TestClient_RunFailureKeepsOutput(t *testing.T) {
	exitErr := errors.New("exit status 3")
	runner := &testutil.FakeRunner{
		Responses: []testutil.Response{{Output: []byte("directory not found"), Err: exitErr}},
	}
	client := NewClient("rclone", runner)

	out, err := client.Run(context.Background(), testPair())
	require.Error(t, err)
	assert.ErrorIs(t, err, exitErr)
	assert.Contains(t, err.Error(), "rclone sync failed")
	assert.Equal(t, "directory not found", string(out))
}

func TestClient_Version(t *testing.T) {
	runner := &testutil.FakeRunner{
		Responses: []testutil.Response{{Output: []byte("rclone v1.66.0\n- os/version: debian 12\n")}},
	}
	client := NewClient("rclone", runner)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rclone v1.66.0", version)
	assert.Equal(t, "rclone version", runner.Calls[0].Line())
}

func TestClient_VersionMissingBinary(t *testing.T) {
	runner := &testutil.FakeRunner{
		Default: testutil.Response{Err: errors.New("executable file not found in $PATH")},
	}
	client := NewClient("rclone", runner)

	_, err := client.Version(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run rclone version")
}
