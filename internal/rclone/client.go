package rclone

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"drivesync/internal/interfaces"
	"drivesync/internal/models"
)

const binaryName = "rclone"

// BinaryPath returns the rclone executable inside dir, or the bare name
// (resolved through PATH) when dir is empty.
func BinaryPath(dir string) string {
	name := binaryName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// Client invokes the rclone command line tool
type Client struct {
	binary string
	runner interfaces.CommandRunner
}

// NewClient creates a client for the given rclone executable
func NewClient(binary string, runner interfaces.CommandRunner) *Client {
	return &Client{
		binary: binary,
		runner: runner,
	}
}

// Binary returns the executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// Version returns the first line of `rclone version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, c.binary, "version")
	if err != nil {
		return "", fmt.Errorf("failed to run %s version: %w", c.binary, err)
	}
	line, _, _ := strings.Cut(string(bytes.TrimSpace(out)), "\n")
	return strings.TrimSpace(line), nil
}

// Args builds `<mode> <src> <dst> <args...>` for one pair.
func Args(pair models.Pair) []string {
	args := make([]string, 0, 3+len(pair.Args))
	args = append(args, pair.Mode.String(), pair.Source.Path, pair.Destination.Path)
	return append(args, pair.Args...)
}

// CommandLine renders the invocation for display.
func (c *Client) CommandLine(pair models.Pair) string {
	return strings.Join(append([]string{c.binary}, Args(pair)...), " ")
}

// Run executes one pair and returns the captured stdout and stderr. The
// output is returned even when rclone exits non-zero.
func (c *Client) Run(ctx context.Context, pair models.Pair) ([]byte, error) {
	out, err := c.runner.CombinedOutput(ctx, c.binary, Args(pair)...)
	if err != nil {
		return out, fmt.Errorf("rclone %s failed: %w", pair.Mode, err)
	}
	return out, nil
}
