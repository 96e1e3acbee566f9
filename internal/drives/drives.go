package drives

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"drivesync/internal/interfaces"
	"drivesync/internal/models"
	"drivesync/internal/sanitizer"
)

// SystemLabel is reported for the primary system volume without a lookup.
const SystemLabel = "C"

// Partition is a mounted filesystem as reported by the OS.
type Partition struct {
	Device string
	Mount  string
	FSType string
	Opts   []string
}

// PartitionLister abstracts the OS mount table.
type PartitionLister interface {
	Partitions(ctx context.Context, all bool) ([]Partition, error)
	Usage(ctx context.Context, mount string) (total, free uint64, err error)
}

var opticalFSTypes = map[string]bool{
	"iso9660": true,
	"udf":     true,
	"cdfs":    true,
}

var networkFSTypes = map[string]bool{
	"nfs":         true,
	"nfs4":        true,
	"cifs":        true,
	"smbfs":       true,
	"smb3":        true,
	"afpfs":       true,
	"ncpfs":       true,
	"9p":          true,
	"davfs":       true,
	"webdav":      true,
	"sshfs":       true,
	"fuse.sshfs":  true,
	"fuse.rclone": true,
}

// Resolver builds the drive snapshot for a run.
type Resolver struct {
	lister      PartitionLister
	labeler     interfaces.Labeler
	systemMount string
}

func NewResolver(lister PartitionLister, labeler interfaces.Labeler) *Resolver {
	return &Resolver{
		lister:      lister,
		labeler:     labeler,
		systemMount: SystemMount,
	}
}

// Snapshot enumerates mounted volumes and keeps the ones with a label.
// Optical media are always excluded; network filesystems only when
// includeNetwork is false.
func (r *Resolver) Snapshot(ctx context.Context, includeNetwork bool) (*models.Snapshot, error) {
	partitions, err := r.lister.Partitions(ctx, includeNetwork)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	snapshot := &models.Snapshot{}
	for _, p := range partitions {
		if IsOptical(p) {
			slog.Debug("skipping optical media", "mount", p.Mount, "fs_type", p.FSType)
			continue
		}
		if !includeNetwork && IsNetwork(p) {
			slog.Debug("skipping network mount", "mount", p.Mount, "fs_type", p.FSType)
			continue
		}

		label := r.label(ctx, p.Mount)
		if label == "" {
			continue
		}

		drive := models.Drive{
			Mount:  p.Mount,
			Label:  label,
			FSType: p.FSType,
		}
		if total, free, err := r.lister.Usage(ctx, p.Mount); err != nil {
			slog.Debug("failed to read drive usage", "mount", p.Mount, "error", err)
		} else {
			drive.Total = total
			drive.Free = free
		}

		snapshot.Drives = append(snapshot.Drives, drive)
	}

	slog.Debug("drive snapshot taken", "drives", len(snapshot.Drives), "partitions", len(partitions))
	return snapshot, nil
}

func (r *Resolver) label(ctx context.Context, mount string) string {
	if samePath(mount, r.systemMount) {
		return SystemLabel
	}

	label, err := r.labeler.Label(ctx, mount)
	if err != nil {
		slog.Debug("label lookup failed", "mount", mount, "error", err)
		return ""
	}

	label, _ = sanitizer.CleanLabel(label)
	return label
}

// IsOptical reports whether p is a CD/DVD/BD mount.
func IsOptical(p Partition) bool {
	if opticalFSTypes[strings.ToLower(p.FSType)] {
		return true
	}
	return lo.Contains(p.Opts, "cdrom")
}

// IsNetwork reports whether p is backed by a network or remote filesystem.
func IsNetwork(p Partition) bool {
	if networkFSTypes[strings.ToLower(p.FSType)] {
		return true
	}
	return strings.HasPrefix(p.Device, "//") || strings.HasPrefix(p.Device, `\\`)
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b)) && filepath.VolumeName(a) != ""
}
