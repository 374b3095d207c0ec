package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/pkgmgr"
	"github.com/superclaude-org/superclaude/internal/runtime"
	"github.com/superclaude-org/superclaude/internal/updater"
)

// updateEnv carries the collaborators shared by the startup check and the
// update and doctor commands. Tests build one with a mock runner and an
// httptest registry.
type updateEnv struct {
	settings   config.Settings
	stateDir   string
	installed  string
	runner     runtime.Runner
	httpClient *http.Client
	out        io.Writer
	now        func() time.Time
}

func newUpdateEnv(settings config.Settings) updateEnv {
	return updateEnv{
		settings:   settings,
		stateDir:   config.Dir(),
		installed:  buildVersion,
		runner:     &runtime.ExecRunner{},
		httpClient: http.DefaultClient,
		out:        os.Stderr,
		now:        time.Now,
	}
}

// source returns the registry source for the configured channel.
func (e updateEnv) source() string {
	if e.settings.Channel == config.ChannelNPM {
		return updater.SourceNPM
	}
	return updater.SourcePyPI
}

func (e updateEnv) registry() updater.Registry {
	if e.source() == updater.SourceNPM {
		return updater.NewNPMRegistry(e.settings.NPMRegistryURL, branding.NPMPackage(), e.httpClient)
	}
	return updater.NewPyPIRegistry(e.settings.PyPIURL, branding.PyPIPackage(), e.httpClient)
}

func (e updateEnv) cachePath() string {
	return updater.CachePath(e.stateDir, e.source())
}

func (e updateEnv) checker(force bool) *updater.Checker {
	return updater.NewChecker(e.registry(), e.cachePath(),
		updater.WithTimeout(e.settings.UpdateCheckTimeout),
		updater.WithNow(e.now),
		updater.WithForce(force),
	)
}

func (e updateEnv) classifier() *pkgmgr.Classifier {
	return pkgmgr.NewClassifier(e.runner, branding.PyPIPackage(), branding.NPMPackage())
}

func (e updateEnv) executor() *pkgmgr.Executor {
	return pkgmgr.NewExecutor(e.runner, branding.PyPIPackage(), branding.NPMPackage(),
		pkgmgr.WithPostUpgrade(branding.PostUpgradeCommand()))
}

// resolver picks the classification for the configured channel.
func (e updateEnv) resolver() updater.MethodResolver {
	c := e.classifier()
	if e.source() == updater.SourceNPM {
		return updater.ResolverFunc(c.ResolveNPM)
	}
	return updater.ResolverFunc(c.Resolve)
}

// resolve classifies the installation, honoring an explicit method name.
func (e updateEnv) resolve(ctx context.Context, method string) (pkgmgr.Resolution, error) {
	if method == "" {
		return e.resolver().Resolve(ctx)
	}
	m, err := pkgmgr.ParseMethod(method)
	if err != nil {
		return pkgmgr.Resolution{}, err
	}
	if method == pkgmgr.ToolYarn {
		return pkgmgr.Resolution{Method: m, NodeTool: pkgmgr.ToolYarn}, nil
	}
	return e.classifier().ForMethod(ctx, m)
}

func newNotifier(env updateEnv) *updater.Notifier {
	return updater.NewNotifier(env.checker(false), env.resolver(), env.executor(), env.installed,
		updater.WithOutput(env.out),
		updater.WithCLIName(branding.CLIName()),
	)
}
