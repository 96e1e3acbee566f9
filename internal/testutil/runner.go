package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call is one recorded command invocation.
type Call struct {
	Name string
	Args []string
}

// Line renders the call the way it would be typed in a shell.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is the scripted result of a command.
type Response struct {
	Output []byte
	Err    error
}

// FakeRunner records invocations and replays scripted responses in order.
// When the script runs out, Default is returned.
type FakeRunner struct {
	mu        sync.Mutex
	Calls     []Call
	Responses []Response
	Default   Response
}

func (f *FakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f.next(name, args)
}

func (f *FakeRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f.next(name, args)
}

func (f *FakeRunner) next(name string, args []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	if len(f.Responses) == 0 {
		return f.Default.Output, f.Default.Err
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp.Output, resp.Err
}

// MapLabeler returns labels from a fixed mount -> label map.
type MapLabeler struct {
	Labels map[string]string
	Errs   map[string]error
	Asked  []string
}

func (m *MapLabeler) Label(ctx context.Context, mount string) (string, error) {
	m.Asked = append(m.Asked, mount)
	if err, ok := m.Errs[mount]; ok {
		return "", err
	}
	return m.Labels[mount], nil
}

// RecordingPrinter keeps console and log lines apart for assertions.
type RecordingPrinter struct {
	Console []string
	Log     []string
}

func (p *RecordingPrinter) Print(msg string) {
	p.Console = append(p.Console, msg)
	p.Log = append(p.Log, msg)
}

func (p *RecordingPrinter) Printf(format string, args ...any) {
	p.Print(fmt.Sprintf(format, args...))
}

func (p *RecordingPrinter) Record(msg string) {
	p.Log = append(p.Log, msg)
}
