package models

import (
	"fmt"
	"strings"
)

type SyncMode string

const (
	SyncModeCopy SyncMode = "copy"
	SyncModeSync SyncMode = "sync"
)

// ParseSyncMode accepts the two rclone subcommands drivesync knows how to drive.
func ParseSyncMode(s string) (SyncMode, error) {
	switch mode := SyncMode(strings.TrimSpace(s)); mode {
	case SyncModeCopy, SyncModeSync:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid sync mode %q (expected copy or sync)", s)
	}
}

func (m SyncMode) String() string {
	return string(m)
}

// FailurePolicy decides what happens to the rest of the run after a pair fails.
type FailurePolicy string

const (
	FailurePolicyAbort    FailurePolicy = "abort"
	FailurePolicyContinue FailurePolicy = "continue"
)

// PathEntry is one (drive, path) element of an explicit-paths job.
type PathEntry struct {
	Drive string   `json:"drive"`
	Path  string   `json:"path"`
	Args  []string `json:"arguments,omitempty"`
}

// SyncJob is a folder kept in sync across several drives or remotes.
//
// A job uses either the shared form (Path + Drives) or the explicit form
// (Paths). The loader guarantees exactly one of the two is populated.
type SyncJob struct {
	ID            string      `json:"id"`
	Path          string      `json:"path,omitempty"`
	Drives        []string    `json:"drives,omitempty"`
	Paths         []PathEntry `json:"paths,omitempty"`
	Args          []string    `json:"arguments,omitempty"`
	OverwriteMode SyncMode    `json:"overwrite_mode,omitempty"`
}

// HasSharedPath reports whether the job declares one path for all of its drives.
func (j *SyncJob) HasSharedPath() bool {
	return len(j.Drives) > 0
}

// Entries flattens both job forms into an ordered list of path entries.
func (j *SyncJob) Entries() []PathEntry {
	if !j.HasSharedPath() {
		return j.Paths
	}
	entries := make([]PathEntry, 0, len(j.Drives))
	for _, drive := range j.Drives {
		entries = append(entries, PathEntry{Drive: drive, Path: j.Path})
	}
	return entries
}

// EffectiveMode returns the job override when set, the global mode otherwise.
func (j *SyncJob) EffectiveMode(global SyncMode) SyncMode {
	if j.OverwriteMode != "" {
		return j.OverwriteMode
	}
	return global
}
