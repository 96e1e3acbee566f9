package sanitizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanLabel normalizes a volume label as reported by the OS so it can be
// compared with labels typed into the configuration file.
// Returns the cleaned label and a boolean indicating if changes were made
func CleanLabel(label string) (string, bool) {
	original := label

	// Fixed-size OS buffers can leave trailing NULs behind
	cleaned := strings.TrimRight(label, "\x00")
	cleaned = strings.TrimSpace(cleaned)

	// Decomposed accents (macOS, some exFAT tools) compare equal to composed ones
	cleaned = norm.NFC.String(cleaned)

	return cleaned, cleaned != original
}

// RemotePath converts a configured path to the forward-slash form rclone
// expects after "remote:". Backslashes are converted on every platform.
func RemotePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
