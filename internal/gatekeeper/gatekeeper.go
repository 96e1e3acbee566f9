package gatekeeper

import (
	"context"
	"log/slog"

	"drivesync/internal/interfaces"
)

// VersionChecker is the part of the rclone client the gatekeeper needs.
type VersionChecker interface {
	Version(ctx context.Context) (string, error)
	Binary() string
}

// Gatekeeper enforces the preconditions of a run
type Gatekeeper struct {
	rclone VersionChecker
	dryRun bool
}

func New(rclone VersionChecker, dryRun bool) *Gatekeeper {
	return &Gatekeeper{
		rclone: rclone,
		dryRun: dryRun,
	}
}

// CanStartRun checks that the rclone executable can be invoked. A dry run
// never invokes rclone, so the check is skipped.
func (g *Gatekeeper) CanStartRun(ctx context.Context) interfaces.GateDecision {
	if g.dryRun {
		return interfaces.GateDecision{
			Allowed: true,
			Reason:  "Dry run, rclone not required",
		}
	}

	version, err := g.rclone.Version(ctx)
	if err != nil {
		slog.Error("rclone executable not usable", "binary", g.rclone.Binary(), "error", err)
		return interfaces.GateDecision{
			Allowed: false,
			Reason:  "rclone executable not available",
			Details: map[string]interface{}{
				"binary": g.rclone.Binary(),
				"error":  err.Error(),
			},
		}
	}

	slog.Debug("rclone available", "binary", g.rclone.Binary(), "version", version)
	return interfaces.GateDecision{
		Allowed: true,
		Reason:  "All checks passed",
		Details: map[string]interface{}{
			"version": version,
		},
	}
}
