//go:build !windows

package drives

import "drivesync/internal/interfaces"

// SystemMount is the root of the primary system volume.
const SystemMount = "/"

// DefaultLabeler returns the label lookup for this platform.
func DefaultLabeler(runner interfaces.CommandRunner) interfaces.Labeler {
	return NewBlockDeviceLabeler(runner)
}
