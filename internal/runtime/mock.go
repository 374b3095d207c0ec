package runtime

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse is the canned result for one command line.
type MockResponse struct {
	Output *Output
	Err    error
}

// MockRunner is a test double for Runner. Responses are keyed by the full
// command line ("pipx list"). Unregistered commands behave as if the
// program is not installed.
type MockRunner struct {
	mu        sync.Mutex
	responses map[string]MockResponse
	// Panic, when set, makes every Run call panic with this value.
	Panic any

	Calls []string
}

// NewMockRunner returns an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{responses: make(map[string]MockResponse)}
}

// On registers a successful (exit 0) response with the given stdout.
func (m *MockRunner) On(commandLine, stdout string) *MockRunner {
	return m.OnResult(commandLine, &Output{Stdout: stdout})
}

// OnExit registers a response with a non-zero exit status and stderr text.
func (m *MockRunner) OnExit(commandLine string, code int, stderr string) *MockRunner {
	return m.OnResult(commandLine, &Output{ExitCode: code, Stderr: stderr})
}

// OnResult registers an arbitrary output for commandLine.
func (m *MockRunner) OnResult(commandLine string, out *Output) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[commandLine] = MockResponse{Output: out}
	return m
}

// OnError registers a start failure for commandLine.
func (m *MockRunner) OnError(commandLine string, err error) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[commandLine] = MockResponse{Err: err}
	return m
}

// Run returns the registered response for the command line.
func (m *MockRunner) Run(_ context.Context, name string, args ...string) (*Output, error) {
	line := CommandLine(name, args...)

	m.mu.Lock()
	m.Calls = append(m.Calls, line)
	resp, ok := m.responses[line]
	panicValue := m.Panic
	m.mu.Unlock()

	if panicValue != nil {
		panic(panicValue)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return resp.Output, resp.Err
}

// Called reports whether commandLine was run at least once.
func (m *MockRunner) Called(commandLine string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Calls {
		if c == commandLine {
			return true
		}
	}
	return false
}

var _ Runner = (*MockRunner)(nil)
