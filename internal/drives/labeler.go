package drives

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"drivesync/internal/interfaces"
)

// BlockDeviceLabeler resolves labels by asking lsblk for LABEL/MOUNTPOINT
// pairs. The table is read once and reused for every mount of the run.
type BlockDeviceLabeler struct {
	runner  interfaces.CommandRunner
	loaded  bool
	table   map[string]string
	loadErr error
}

func NewBlockDeviceLabeler(runner interfaces.CommandRunner) *BlockDeviceLabeler {
	return &BlockDeviceLabeler{runner: runner}
}

func (l *BlockDeviceLabeler) Label(ctx context.Context, mount string) (string, error) {
	if !l.loaded {
		l.loaded = true
		output, err := l.runner.Output(ctx, "lsblk", "-P", "-o", "LABEL,MOUNTPOINT")
		if err != nil {
			l.loadErr = fmt.Errorf("failed to run lsblk: %w", err)
		} else {
			l.table = ParseLSBLKMounts(string(output))
		}
	}
	if l.loadErr != nil {
		return "", l.loadErr
	}
	return l.table[mount], nil
}

var lsblkPairRe = regexp.MustCompile(`([A-Z:_-]+)="((?:[^"\\]|\\.)*)"`)

// ParseLSBLKMounts parses `lsblk -P -o LABEL,MOUNTPOINT` output into a
// mountpoint -> label map. Unmounted or unlabeled devices are omitted.
func ParseLSBLKMounts(output string) map[string]string {
	table := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := make(map[string]string)
		for _, m := range lsblkPairRe.FindAllStringSubmatch(line, -1) {
			fields[m[1]] = unescapeLSBLK(m[2])
		}
		label, mount := fields["LABEL"], fields["MOUNTPOINT"]
		if label == "" || mount == "" {
			continue
		}
		if _, seen := table[mount]; !seen {
			table[mount] = label
		}
	}
	return table
}

var lsblkHexRe = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)

// unescapeLSBLK decodes the \xHH escapes lsblk uses for spaces and other
// unsafe bytes in -P output.
func unescapeLSBLK(s string) string {
	return lsblkHexRe.ReplaceAllStringFunc(s, func(m string) string {
		b, err := strconv.ParseUint(m[2:], 16, 8)
		if err != nil {
			return m
		}
		return string([]byte{byte(b)})
	})
}
