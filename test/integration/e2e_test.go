//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/pkgmgr"
	"github.com/superclaude-org/superclaude/internal/runtime"
	"github.com/superclaude-org/superclaude/internal/updater"
)

const pipxListing = `if [ "$1" = "list" ]; then echo "   package SuperClaude 4.0.6, installed using Python 3.12"; fi`

// newNotifier wires the startup hook the way the CLI does, against real
// processes and the given clock.
func newNotifier(t *testing.T, registryURL string, now func() time.Time, out *bytes.Buffer) *updater.Notifier {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.Load()
	settings := config.Current()

	runner := &runtime.ExecRunner{}
	reg := updater.NewPyPIRegistry(registryURL, branding.PyPIPackage(), nil)
	checker := updater.NewChecker(reg, updater.CachePath(config.Dir(), reg.Source()),
		updater.WithTimeout(settings.UpdateCheckTimeout),
		updater.WithNow(now),
	)
	classifier := pkgmgr.NewClassifier(runner, branding.PyPIPackage(), branding.NPMPackage())
	executor := pkgmgr.NewExecutor(runner, branding.PyPIPackage(), branding.NPMPackage(),
		pkgmgr.WithPostUpgrade(branding.PostUpgradeCommand()))

	return updater.NewNotifier(checker, updater.ResolverFunc(classifier.Resolve), executor, "4.0.6",
		updater.WithOutput(out))
}

// TestStartupCheckCachesForADay covers the full startup sequence: the first
// run queries the registry and writes the cache, a run an hour later is
// served from the cache, and a run a day later queries again.
func TestStartupCheckCachesForADay(t *testing.T) {
	env := setupTestEnv(t)
	env.writeTool(t, "pipx", pipxListing)
	server, hits := fakePyPI(t, "4.0.8")

	start := time.Now()
	clock := start
	now := func() time.Time { return clock }

	var out bytes.Buffer
	report := newNotifier(t, server.URL, now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{})
	if !report.Notified || report.Check.FromCache {
		t.Fatalf("first run report = %+v", report)
	}
	if !strings.Contains(out.String(), "4.0.6 -> 4.0.8") || !strings.Contains(out.String(), "pipx upgrade SuperClaude") {
		t.Errorf("banner = %q", out.String())
	}
	assertFileExists(t, filepath.Join(env.HomeDir, "pypi-version-check.json"))

	clock = start.Add(time.Hour)
	out.Reset()
	report = newNotifier(t, server.URL, now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{})
	if !report.Check.FromCache || hits.Load() != 1 {
		t.Errorf("second run: FromCache=%v hits=%d", report.Check.FromCache, hits.Load())
	}

	clock = start.Add(25 * time.Hour)
	out.Reset()
	newNotifier(t, server.URL, now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{})
	if hits.Load() != 2 {
		t.Errorf("registry hits after a day = %d, want 2", hits.Load())
	}

	if env.called(t, "pipx upgrade SuperClaude") {
		t.Error("banner runs must not upgrade")
	}
}

// TestAutoUpdateFromEnvironment enables the environment switch and expects
// the pipx upgrade followed by the post-upgrade hook.
func TestAutoUpdateFromEnvironment(t *testing.T) {
	env := setupTestEnv(t)
	env.writeTool(t, "pipx", pipxListing)
	env.writeTool(t, "superclaude", "exit 0")
	server, _ := fakePyPI(t, "4.0.8")
	t.Setenv("SUPERCLAUDE_AUTO_UPDATE", "yes")

	var out bytes.Buffer
	report := newNotifier(t, server.URL, time.Now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{
		EnvOverride: config.AutoUpdateFromEnv(),
	})

	if !report.Attempted || report.Upgrade == nil || !report.Upgrade.Success {
		t.Fatalf("report = %+v, output = %q", report, out.String())
	}
	if !env.called(t, "pipx upgrade SuperClaude") {
		t.Errorf("calls = %v", env.calls(t))
	}
	if !env.called(t, "superclaude install --help") || !env.called(t, "superclaude install --force") {
		t.Errorf("post-upgrade hook not probed and run; calls = %v", env.calls(t))
	}
}

// TestAutoUpdatePipGlobalRunsHook upgrades through a plain pip and expects
// the post-upgrade hook to follow.
func TestAutoUpdatePipGlobalRunsHook(t *testing.T) {
	env := setupTestEnv(t)
	env.writeTool(t, "pip3", "exit 0")
	env.writeTool(t, "superclaude", "exit 0")
	server, _ := fakePyPI(t, "4.0.8")

	var out bytes.Buffer
	report := newNotifier(t, server.URL, time.Now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{AutoApply: true})

	if report.Upgrade == nil || report.Upgrade.Method != pkgmgr.MethodPipGlobal || !report.Upgrade.Success {
		t.Fatalf("report = %+v, output = %q", report, out.String())
	}
	if !env.called(t, "pip3 install --upgrade SuperClaude") {
		t.Errorf("calls = %v", env.calls(t))
	}
	if !env.called(t, "superclaude install --force") {
		t.Errorf("post-upgrade hook not run; calls = %v", env.calls(t))
	}
}

// TestAutoUpdateFailureNeverTouchesCache fails the upgrade and checks the
// cache still holds the registry's answer.
func TestAutoUpdateFailureNeverTouchesCache(t *testing.T) {
	env := setupTestEnv(t)
	env.writeTool(t, "pip3", `if [ "$1" = "install" ]; then echo "error: externally-managed-environment" >&2; exit 1; fi`)
	server, _ := fakePyPI(t, "4.0.8")

	var out bytes.Buffer
	report := newNotifier(t, server.URL, time.Now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{AutoApply: true})

	if report.Outcome.Kind != updater.OutcomeSoftFailure {
		t.Errorf("Outcome = %v, want soft-failure", report.Outcome.Kind)
	}
	if !strings.Contains(out.String(), "externally managed") {
		t.Errorf("output lacks remediation: %q", out.String())
	}

	entry, err := updater.LoadCache(filepath.Join(env.HomeDir, "pypi-version-check.json"))
	if err != nil || entry == nil || entry.LatestVersion != "4.0.8" {
		t.Errorf("cache entry = %+v, err = %v", entry, err)
	}
}

// TestUnreachableRegistryIsSilent points at a closed server.
func TestUnreachableRegistryIsSilent(t *testing.T) {
	setupTestEnv(t)
	server, _ := fakePyPI(t, "4.0.8")
	url := server.URL
	server.Close()

	var out bytes.Buffer
	report := newNotifier(t, url, time.Now, &out).MaybeNotify(context.Background(), updater.NotifyOptions{})

	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
	if report.Outcome.Kind != updater.OutcomeSoftFailure || !report.Check.UpToDate {
		t.Errorf("report = %+v", report)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}
