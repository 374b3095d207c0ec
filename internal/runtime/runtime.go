package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when the requested program is not on PATH or
// cannot be started at all.
var ErrNotFound = errors.New("executable not found")

// Runner runs a program to completion and captures its output.
type Runner interface {
	// Run executes name with args. A non-zero exit status is reported in
	// Output.ExitCode with a nil error; the error is reserved for programs
	// that could not be started.
	Run(ctx context.Context, name string, args ...string) (*Output, error)
}

// Output captures the result of a finished process.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status 0.
func (o *Output) Success() bool {
	return o != nil && o.ExitCode == 0
}

// CommandLine renders name and args the way a user would type them.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	// Env entries are appended to the inherited process environment.
	Env []string
	// Stdout and Stderr, when set, also receive the live process output.
	Stdout io.Writer
	Stderr io.Writer
}

// Run resolves name on PATH and executes it, blocking until it exits.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(r.Stdout, &stdoutBuf)
	}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderrBuf)
	}

	err = cmd.Run()

	output := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return output, fmt.Errorf("running %s: %w", CommandLine(name, args...), err)
	}

	return output, nil
}

var _ Runner = (*ExecRunner)(nil)
