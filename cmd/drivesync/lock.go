package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another drivesync run is in progress")

var runLockPath = filepath.Join(os.TempDir(), "drivesync.lock")

func acquireRunLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	return lock, nil
}

func releaseRunLock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		slog.Warn("failed to release run lock", "path", lock.Path(), "error", err)
	}
}
