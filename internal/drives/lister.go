package drives

import (
	"context"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// SystemLister reads the mount table through gopsutil.
type SystemLister struct{}

func NewSystemLister() *SystemLister {
	return &SystemLister{}
}

func (SystemLister) Partitions(ctx context.Context, all bool) ([]Partition, error) {
	stats, err := disk.PartitionsWithContext(ctx, all)
	if err != nil {
		return nil, err
	}

	partitions := make([]Partition, 0, len(stats))
	for _, s := range stats {
		partitions = append(partitions, Partition{
			Device: s.Device,
			Mount:  normalizeMount(s.Mountpoint),
			FSType: s.Fstype,
			Opts:   s.Opts,
		})
	}
	return partitions, nil
}

func (SystemLister) Usage(ctx context.Context, mount string) (uint64, uint64, error) {
	usage, err := disk.UsageWithContext(ctx, mount)
	if err != nil {
		return 0, 0, err
	}
	return usage.Total, usage.Free, nil
}

// normalizeMount turns a bare Windows drive ("D:") into its root ("D:\") so
// joining a relative path yields "D:\dir" rather than the drive-relative
// "D:dir". Other platforms are unaffected.
func normalizeMount(mount string) string {
	if vol := filepath.VolumeName(mount); vol != "" && vol == mount {
		return mount + string(filepath.Separator)
	}
	return mount
}
