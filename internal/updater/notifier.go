package updater

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/superclaude-org/superclaude/internal/logging"
	"github.com/superclaude-org/superclaude/internal/pkgmgr"
	"github.com/superclaude-org/superclaude/internal/runtime"
)

// DefaultHintTimeout bounds the classification run to name the upgrade
// command in the banner.
const DefaultHintTimeout = 2 * time.Second

// MethodResolver determines the installation method.
type MethodResolver interface {
	Resolve(ctx context.Context) (pkgmgr.Resolution, error)
}

// ResolverFunc adapts a function to MethodResolver.
type ResolverFunc func(ctx context.Context) (pkgmgr.Resolution, error)

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx context.Context) (pkgmgr.Resolution, error) {
	return f(ctx)
}

// Upgrader runs or describes the upgrade for a Resolution.
type Upgrader interface {
	Upgrade(ctx context.Context, res pkgmgr.Resolution) pkgmgr.UpgradeResult
	CommandFor(res pkgmgr.Resolution) ([]string, error)
}

// NotifyOptions controls one MaybeNotify call.
type NotifyOptions struct {
	// Skip disables the check entirely.
	Skip bool
	// AutoApply upgrades instead of printing the banner.
	AutoApply bool
	// EnvOverride is the auto-update environment switch; it has the same
	// effect as AutoApply.
	EnvOverride bool
}

// NotifyReport describes what MaybeNotify did.
type NotifyReport struct {
	Check     CheckResult
	Notified  bool
	Attempted bool
	Upgrade   *pkgmgr.UpgradeResult
	Outcome   Outcome
}

// Notifier is the startup hook that tells the user about a newer release.
// It never fails the surrounding command.
type Notifier struct {
	checker   VersionChecker
	resolver  MethodResolver
	upgrader  Upgrader
	installed string
	cliName   string
	out       io.Writer
	hintLimit time.Duration
	log       zerolog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithOutput sets where the banner and upgrade messages are written.
func WithOutput(w io.Writer) NotifierOption {
	return func(n *Notifier) {
		n.out = w
	}
}

// WithCLIName sets the command name used in the fallback upgrade hint.
func WithCLIName(name string) NotifierOption {
	return func(n *Notifier) {
		n.cliName = name
	}
}

// WithHintTimeout bounds the classification behind the banner's upgrade
// hint. Past the deadline the generic update command is shown.
func WithHintTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.hintLimit = d
		}
	}
}

// NewNotifier creates a Notifier for the installed version.
func NewNotifier(checker VersionChecker, resolver MethodResolver, upgrader Upgrader, installed string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		checker:   checker,
		resolver:  resolver,
		upgrader:  upgrader,
		installed: installed,
		cliName:   "superclaude",
		out:       os.Stderr,
		hintLimit: DefaultHintTimeout,
		log:       logging.Component("notifier"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// MaybeNotify checks for a newer release and either prints a banner or, when
// automatic upgrade is requested, runs the upgrade. Failures of any kind,
// panics included, are logged at debug level and recorded in the report.
func (n *Notifier) MaybeNotify(ctx context.Context, opts NotifyOptions) (report NotifyReport) {
	report.Outcome = OK()
	if opts.Skip {
		return report
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("update notifier panicked: %v", r)
			n.log.Debug().Err(err).Msg("update check aborted")
			report.Outcome = Soft(err)
		}
	}()

	report.Check = n.checker.Check(ctx, n.installed)
	report.Outcome = report.Check.Outcome
	if report.Check.UpToDate {
		return report
	}

	current, latest := report.Check.InstalledVersion, report.Check.LatestVersion

	if !opts.AutoApply && !opts.EnvOverride {
		PrintUpdateBanner(n.out, current, latest, n.upgradeHint(ctx))
		report.Notified = true
		return report
	}

	res, err := n.resolver.Resolve(ctx)
	if err != nil {
		n.log.Debug().Err(err).Msg("could not determine installation method")
		PrintUpdateBanner(n.out, current, latest, n.cliName+" update")
		report.Notified = true
		report.Outcome = Soft(err)
		return report
	}

	fmt.Fprintf(n.out, "Updating %s -> %s via %s...\n", current, latest, res.Method)
	upgrade := n.upgrader.Upgrade(ctx, res)
	report.Attempted = true
	report.Upgrade = &upgrade

	if upgrade.Success {
		color.New(color.FgGreen).Fprintln(n.out, upgrade.Message)
		if upgrade.Warning != "" {
			color.New(color.FgYellow).Fprintln(n.out, upgrade.Warning)
		}
		return report
	}

	color.New(color.FgRed).Fprintln(n.out, upgrade.Message)
	n.log.Debug().Err(upgrade.Err).Str("method", res.Method.String()).Msg("automatic upgrade failed")
	report.Outcome = Soft(upgrade.Err)
	return report
}

// upgradeHint names the exact upgrade command when the method resolves, and
// the CLI's own update command otherwise.
func (n *Notifier) upgradeHint(ctx context.Context) string {
	fallback := n.cliName + " update"
	if n.resolver == nil || n.upgrader == nil {
		return fallback
	}
	hintCtx, cancel := context.WithTimeout(ctx, n.hintLimit)
	defer cancel()

	res, err := n.resolver.Resolve(hintCtx)
	if err != nil || hintCtx.Err() != nil {
		n.log.Debug().Err(err).Msg("could not determine installation method")
		return fallback
	}
	argv, err := n.upgrader.CommandFor(res)
	if err != nil || len(argv) == 0 {
		return fallback
	}
	return runtime.CommandLine(argv[0], argv[1:]...)
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, current, latest, command string) {
	bold := color.New(color.FgYellow, color.Bold)
	fmt.Fprintln(w)
	bold.Fprintf(w, "Update available: %s -> %s\n", current, latest)
	if command = strings.TrimSpace(command); command != "" {
		fmt.Fprintf(w, "    Run `%s` to upgrade\n", command)
	}
	fmt.Fprintln(w)
}
