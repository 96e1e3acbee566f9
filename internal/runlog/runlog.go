package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Logger prints progress lines to the console and appends them to an
// optional run log. The file is opened for every write and closed right
// away, so no handle is held while rclone runs.
type Logger struct {
	out  io.Writer
	fs   afero.Fs
	path string
}

func New(out io.Writer, path string) *Logger {
	return NewWithFs(out, afero.NewOsFs(), path)
}

func NewWithFs(out io.Writer, fs afero.Fs, path string) *Logger {
	return &Logger{out: out, fs: fs, path: path}
}

// Path returns the resolved log file path, empty when logging to file is off.
func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Print(msg string) {
	fmt.Fprintln(l.out, msg)
	l.Record(msg)
}

func (l *Logger) Printf(format string, args ...any) {
	l.Print(fmt.Sprintf(format, args...))
}

// Record appends msg to the log file only.
func (l *Logger) Record(msg string) {
	if l.path == "" {
		return
	}
	if err := l.appendLine(msg); err != nil {
		slog.Warn("failed to write run log", "path", l.path, "error", err)
	}
}

func (l *Logger) appendLine(msg string) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := l.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, "\n"+msg); err != nil {
		return fmt.Errorf("failed to append to log file: %w", err)
	}
	return nil
}
