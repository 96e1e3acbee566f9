//go:build windows

package drives

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"

	"drivesync/internal/interfaces"
)

// SystemMount is the root of the primary system volume.
const SystemMount = `C:\`

// VolumeInfoLabeler reads the label from GetVolumeInformation.
type VolumeInfoLabeler struct{}

func NewVolumeInfoLabeler() *VolumeInfoLabeler {
	return &VolumeInfoLabeler{}
}

func (VolumeInfoLabeler) Label(ctx context.Context, mount string) (string, error) {
	root, err := windows.UTF16PtrFromString(mount)
	if err != nil {
		return "", fmt.Errorf("invalid mount %q: %w", mount, err)
	}

	name := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumeInformation(root, &name[0], uint32(len(name)), nil, nil, nil, nil, 0); err != nil {
		return "", fmt.Errorf("failed to read volume information for %s: %w", mount, err)
	}
	return windows.UTF16ToString(name), nil
}

// DefaultLabeler returns the label lookup for this platform.
func DefaultLabeler(_ interfaces.CommandRunner) interfaces.Labeler {
	return NewVolumeInfoLabeler()
}
