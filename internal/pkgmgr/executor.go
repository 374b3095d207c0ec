package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/superclaude-org/superclaude/internal/logging"
	"github.com/superclaude-org/superclaude/internal/runtime"
)

// UpgradeResult is the outcome of one upgrade attempt.
type UpgradeResult struct {
	Method  Method
	Command string
	Success bool
	Message string
	// Warning is set when the upgrade succeeded but the post-upgrade hook did not.
	Warning string
	// Err is nil on success, ErrNoPackageManager for an unresolved method,
	// and an *UpgradeError for a failed command.
	Err error
}

// Executor runs the upgrade command for a Resolution.
type Executor struct {
	runner      runtime.Runner
	prober      *runtime.Prober
	pypiPackage string
	npmPackage  string
	postUpgrade []string
	log         zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPostUpgrade sets the command run after a successful pip-family upgrade.
// An empty command disables the hook.
func WithPostUpgrade(command []string) ExecutorOption {
	return func(e *Executor) {
		e.postUpgrade = command
	}
}

// NewExecutor creates an Executor for the given package names.
func NewExecutor(r runtime.Runner, pypiPackage, npmPackage string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		runner:      r,
		prober:      runtime.NewProber(r),
		pypiPackage: pypiPackage,
		npmPackage:  npmPackage,
		log:         logging.Component("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CommandFor returns the upgrade command line for res without running it.
func (e *Executor) CommandFor(res Resolution) ([]string, error) {
	switch res.Method {
	case MethodPipx:
		return []string{"pipx", "upgrade", e.pypiPackage}, nil
	case MethodPipUser:
		return append(pipOrDefault(res.Pip), "install", "--upgrade", "--user", e.pypiPackage), nil
	case MethodPipGlobal:
		return append(pipOrDefault(res.Pip), "install", "--upgrade", e.pypiPackage), nil
	case MethodNPMGlobal:
		if res.NodeTool == ToolYarn {
			return []string{ToolYarn, "global", "upgrade", e.npmPackage}, nil
		}
		return []string{ToolNPM, "update", "-g", e.npmPackage}, nil
	default:
		return nil, ErrNoPackageManager
	}
}

// Upgrade runs exactly one upgrade command for res. There is no fallback to
// another method within a call; a failure carries remediation text naming
// the alternative to try.
func (e *Executor) Upgrade(ctx context.Context, res Resolution) UpgradeResult {
	argv, err := e.CommandFor(res)
	if err != nil {
		return UpgradeResult{
			Method:  res.Method,
			Message: "Could not determine how " + e.displayPackage(res.Method) + " was installed; install pipx or pip and retry.",
			Err:     err,
		}
	}

	line := runtime.CommandLine(argv[0], argv[1:]...)
	result := UpgradeResult{Method: res.Method, Command: line}

	e.log.Debug().Str("command", line).Msg("running upgrade")
	out, runErr := e.runner.Run(ctx, argv[0], argv[1:]...)

	if runErr != nil || !out.Success() {
		uerr := &UpgradeError{
			Method:  res.Method,
			Command: line,
			Err:     runErr,
		}
		if out != nil {
			uerr.ExitCode = out.ExitCode
			uerr.Stderr = out.Stderr
		}
		uerr.Remediation = e.remediation(res, uerr)

		result.Message = fmt.Sprintf("Upgrade failed: %s\n%s", line, uerr.Remediation)
		result.Err = uerr
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("Upgraded %s via %s", e.displayPackage(res.Method), res.Method)

	if res.Method.IsPipFamily() {
		result.Warning = e.runPostUpgrade(ctx)
	}
	return result
}

// runPostUpgrade runs the hook and returns a warning on failure. The hook
// targets the framework's own Python entry point; it is checked first with
// "<name> <subcommand> --help" so a different program of the same name
// (this helper included) is never driven with the hook's arguments.
func (e *Executor) runPostUpgrade(ctx context.Context) string {
	if len(e.postUpgrade) == 0 {
		return ""
	}
	line := runtime.CommandLine(e.postUpgrade[0], e.postUpgrade[1:]...)

	helpArgs := []string{"--help"}
	if len(e.postUpgrade) > 1 {
		helpArgs = []string{e.postUpgrade[1], "--help"}
	}
	if !e.prober.IsAvailable(ctx, e.postUpgrade[0], helpArgs...) {
		e.log.Debug().Str("command", line).Msg("post-upgrade command not available")
		return fmt.Sprintf("Package upgraded, but `%s` is not available on PATH; run it from the upgraded package to refresh installed files.", line)
	}
	out, err := e.runner.Run(ctx, e.postUpgrade[0], e.postUpgrade[1:]...)
	if err == nil && out.Success() {
		return ""
	}

	e.log.Debug().Err(err).Str("command", line).Msg("post-upgrade hook failed")
	return fmt.Sprintf("Package upgraded, but `%s` did not complete; run it manually to refresh installed files.", line)
}

func (e *Executor) remediation(res Resolution, uerr *UpgradeError) string {
	notFound := errors.Is(uerr.Err, runtime.ErrNotFound)
	stderr := strings.ToLower(uerr.Stderr)
	pkg := e.pypiPackage

	switch res.Method {
	case MethodPipx:
		if notFound {
			return "pipx is not on PATH. Install pipx, then run `pipx install " + pkg + "`."
		}
		return "Try `pipx reinstall " + pkg + "`, or `pipx install --force " + pkg + "` if it was not installed with pipx."
	case MethodPipUser:
		return "This Python is externally managed, so only user-scoped installs are allowed. " +
			"Recommended: `pipx install " + pkg + "`. Otherwise upgrade inside a virtual environment."
	case MethodPipGlobal:
		switch {
		case strings.Contains(stderr, "externally-managed-environment"):
			return "The global upgrade was refused because this Python is externally managed. " +
				"Try `pipx upgrade " + pkg + "` or `pip install --upgrade --user " + pkg + "`."
		case strings.Contains(stderr, "permission denied"):
			return "The global site-packages directory is not writable. " +
				"Try `pip install --upgrade --user " + pkg + "`, or rerun with elevated privileges."
		default:
			return "Global pip upgrade failed. Try `pip install --upgrade --user " + pkg + "` or install with `pipx install " + pkg + "`."
		}
	case MethodNPMGlobal:
		if res.NodeTool == ToolYarn {
			return "Try `yarn global add " + e.npmPackage + "@latest`."
		}
		return "Try `npm install -g " + e.npmPackage + "@latest`; prefix with sudo if the global prefix is not writable."
	}
	return ""
}

func (e *Executor) displayPackage(m Method) string {
	if m == MethodNPMGlobal {
		return e.npmPackage
	}
	return e.pypiPackage
}

// pipOrDefault copies pip so appends never alias the Resolution's slice.
func pipOrDefault(pip []string) []string {
	if len(pip) == 0 {
		return []string{"pip"}
	}
	out := make([]string, len(pip), len(pip)+4)
	copy(out, pip)
	return out
}
