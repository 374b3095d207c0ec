package pkgmgr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/superclaude-org/superclaude/internal/logging"
	"github.com/superclaude-org/superclaude/internal/runtime"
)

// ExternallyManagedMarker is the PEP 668 sentinel file placed in the
// interpreter's stdlib directory.
const ExternallyManagedMarker = "EXTERNALLY-MANAGED"

// stdlibQuery prints the interpreter's stdlib directory.
const stdlibQuery = "import sysconfig; print(sysconfig.get_path('stdlib'))"

// DefaultPythons are the interpreters tried, in order.
var DefaultPythons = []string{"python3", "python"}

// Classifier resolves the installation method of the framework.
type Classifier struct {
	runner      runtime.Runner
	prober      *runtime.Prober
	pypiPackage string
	npmPackage  string
	pythons     []string
	log         zerolog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithPythons overrides the interpreter names tried for the marker check
// and the `-m pip` fallback.
func WithPythons(names ...string) ClassifierOption {
	return func(c *Classifier) {
		c.pythons = names
	}
}

// NewClassifier creates a Classifier that looks for pypiPackage in pipx and
// npmPackage in the global npm/yarn listings.
func NewClassifier(r runtime.Runner, pypiPackage, npmPackage string, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		runner:      r,
		prober:      runtime.NewProber(r),
		pypiPackage: pypiPackage,
		npmPackage:  npmPackage,
		pythons:     DefaultPythons,
		log:         logging.Component("classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve classifies a Python installation. First match wins:
//  1. pipx is available and its listing names the package: pipx
//  2. the interpreter is externally managed: pip-user
//  3. pip is available: pip-global
//
// When both pipx and a leftover pip install exist, pipx wins. If pipx is the
// only tool present but does not list the package, pipx is still returned so
// the upgrade fails with pipx-specific advice. With no tool at all the
// result is ErrNoPackageManager.
func (c *Classifier) Resolve(ctx context.Context) (Resolution, error) {
	pipxAvailable := c.prober.IsAvailable(ctx, "pipx")
	if pipxAvailable && c.listingContains(ctx, c.pypiPackage, "pipx", "list") {
		c.log.Debug().Msg("package found in pipx listing")
		return Resolution{Method: MethodPipx}, nil
	}

	python, managed := c.externallyManaged(ctx)
	pip := c.findPip(ctx)

	if managed {
		if pip == nil {
			pip = []string{python, "-m", "pip"}
		}
		c.log.Debug().Str("python", python).Msg("interpreter is externally managed")
		return Resolution{Method: MethodPipUser, Pip: pip}, nil
	}

	if pip != nil {
		return Resolution{Method: MethodPipGlobal, Pip: pip}, nil
	}

	if pipxAvailable {
		return Resolution{Method: MethodPipx}, nil
	}

	return Resolution{Method: MethodUnknown}, ErrNoPackageManager
}

// ResolveNPM classifies an installation made through the npm wrapper,
// mirroring whichever of npm or yarn lists the package globally.
func (c *Classifier) ResolveNPM(ctx context.Context) (Resolution, error) {
	npmAvailable := c.prober.IsAvailable(ctx, ToolNPM)
	if npmAvailable && c.listingContains(ctx, c.npmPackage, ToolNPM, "ls", "-g", "--depth=0") {
		return Resolution{Method: MethodNPMGlobal, NodeTool: ToolNPM}, nil
	}

	yarnAvailable := c.prober.IsAvailable(ctx, ToolYarn)
	if yarnAvailable && c.listingContains(ctx, c.npmPackage, ToolYarn, "global", "list") {
		return Resolution{Method: MethodNPMGlobal, NodeTool: ToolYarn}, nil
	}

	switch {
	case npmAvailable:
		return Resolution{Method: MethodNPMGlobal, NodeTool: ToolNPM}, nil
	case yarnAvailable:
		return Resolution{Method: MethodNPMGlobal, NodeTool: ToolYarn}, nil
	}
	return Resolution{Method: MethodUnknown}, ErrNoPackageManager
}

// ForMethod builds a Resolution for an explicitly chosen method, filling in
// whichever pip invocation or node tool is present.
func (c *Classifier) ForMethod(ctx context.Context, m Method) (Resolution, error) {
	switch m {
	case MethodPipx:
		return Resolution{Method: m}, nil
	case MethodPipUser, MethodPipGlobal:
		return Resolution{Method: m, Pip: c.findPip(ctx)}, nil
	case MethodNPMGlobal:
		if res, err := c.ResolveNPM(ctx); err == nil {
			return res, nil
		}
		return Resolution{Method: m, NodeTool: ToolNPM}, nil
	}
	return Resolution{Method: MethodUnknown}, ErrNoPackageManager
}

// ExternallyManaged reports whether the first working interpreter carries
// the EXTERNALLY-MANAGED marker.
func (c *Classifier) ExternallyManaged(ctx context.Context) bool {
	_, managed := c.externallyManaged(ctx)
	return managed
}

// listingContains runs a listing command and does a case-sensitive
// substring match for pkg. Listing commands often exit non-zero for
// unrelated reasons (empty pipx venvs, npm peer warnings), so stdout is
// inspected regardless of the exit status.
func (c *Classifier) listingContains(ctx context.Context, pkg, name string, args ...string) bool {
	if pkg == "" {
		return false
	}
	out, err := c.runner.Run(ctx, name, args...)
	if err != nil || out == nil {
		return false
	}
	return strings.Contains(out.Stdout, pkg)
}

// externallyManaged returns the interpreter consulted and whether its stdlib
// directory holds the marker.
func (c *Classifier) externallyManaged(ctx context.Context) (string, bool) {
	for _, python := range c.pythons {
		out, err := c.runner.Run(ctx, python, "-c", stdlibQuery)
		if err != nil || !out.Success() {
			continue
		}
		stdlib := strings.TrimSpace(out.Stdout)
		if stdlib == "" {
			continue
		}
		_, statErr := os.Stat(filepath.Join(stdlib, ExternallyManagedMarker))
		return python, statErr == nil
	}
	return "", false
}

// findPip returns the first working pip invocation, or nil.
func (c *Classifier) findPip(ctx context.Context) []string {
	for _, name := range []string{"pip3", "pip"} {
		if c.prober.IsAvailable(ctx, name) {
			return []string{name}
		}
	}
	for _, python := range c.pythons {
		if c.prober.IsAvailable(ctx, python, "-m", "pip", "--version") {
			return []string{python, "-m", "pip"}
		}
	}
	return nil
}
