package executor

import (
	"regexp"
	"strconv"
	"strings"
)

// Stats is the final transfer summary rclone prints with -v or --stats.
type Stats struct {
	Bytes      int64
	TotalBytes int64
	Errors     int
	Checks     int
	Files      int
}

var (
	// Match format: "Transferred:   46 MiB / 5.250 GiB, 1%, 6.346 MiB/s, ETA 13m59s"
	transferredBytesRe = regexp.MustCompile(`Transferred:\s+([0-9.]+\s*[KMGTP]?i?B)\s*/\s*([0-9.]+\s*[KMGTP]?i?B),`)
	// Match format: "Transferred:            3 / 3, 100%"
	transferredFilesRe = regexp.MustCompile(`Transferred:\s+([0-9]+)\s*/\s*([0-9]+),`)
	errorsRe           = regexp.MustCompile(`(?m)^\s*Errors:\s+([0-9]+)`)
	checksRe           = regexp.MustCompile(`Checks:\s+([0-9]+)\s*/\s*([0-9]+)`)
)

// ParseStats reads the last stats block found in captured rclone output.
// Unknown or absent values stay zero.
func ParseStats(output []byte) Stats {
	var stats Stats
	for _, line := range strings.Split(string(output), "\n") {
		if m := transferredBytesRe.FindStringSubmatch(line); len(m) >= 3 {
			stats.Bytes = parseBytes(m[1])
			stats.TotalBytes = parseBytes(m[2])
			continue
		}
		if m := transferredFilesRe.FindStringSubmatch(line); len(m) >= 2 {
			stats.Files, _ = strconv.Atoi(m[1])
			continue
		}
		if m := checksRe.FindStringSubmatch(line); len(m) >= 2 {
			stats.Checks, _ = strconv.Atoi(m[1])
			continue
		}
		if m := errorsRe.FindStringSubmatch(line); len(m) >= 2 {
			stats.Errors, _ = strconv.Atoi(m[1])
		}
	}
	return stats
}

func parseBytes(s string) int64 {
	s = strings.TrimSpace(s)

	units := []struct {
		suffixes   []string
		multiplier int64
	}{
		{[]string{"PiB", "PB"}, 1 << 50},
		{[]string{"TiB", "TB"}, 1 << 40},
		{[]string{"GiB", "GB"}, 1 << 30},
		{[]string{"MiB", "MB"}, 1 << 20},
		{[]string{"KiB", "KB"}, 1 << 10},
		{[]string{"B"}, 1},
	}

	multiplier := int64(1)
	for _, unit := range units {
		matched := false
		for _, suffix := range unit.suffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
				multiplier = unit.multiplier
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(value * float64(multiplier))
}
