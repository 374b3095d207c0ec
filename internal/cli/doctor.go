package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/pkgmgr"
	"github.com/superclaude-org/superclaude/internal/runtime"
	"github.com/superclaude-org/superclaude/internal/updater"
)

// doctorTools are probed in this order.
var doctorTools = []string{"pipx", "pip3", "pip", "python3", "npm", "yarn"}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the " + branding.DisplayName() + " installation",
	Long: `Reports which package managers are on PATH, how ` + branding.DisplayName() + ` appears to
be installed, whether the interpreter is externally managed and whether the
version cache files are valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := newUpdateEnv(config.Current())
		env.out = cmd.OutOrStdout()
		runDoctor(cmd.Context(), env)
		return nil
	},
}

var (
	markOK   = color.New(color.FgGreen).Sprint("[ OK ]")
	markMiss = color.New(color.FgRed).Sprint("[MISS]")
	markWarn = color.New(color.FgYellow).Sprint("[WARN]")
	markFail = color.New(color.FgRed).Sprint("[FAIL]")
	markInfo = "[INFO]"
)

func runDoctor(ctx context.Context, env updateEnv) {
	runToolsCheck(ctx, env.out, env.runner)
	runInstallCheck(ctx, env)
	runCacheCheck(env.out, env.stateDir, env.now())
}

func runToolsCheck(ctx context.Context, w io.Writer, r runtime.Runner) {
	fmt.Fprintln(w, "Package managers:")
	prober := runtime.NewProber(r)
	for _, name := range doctorTools {
		if prober.IsAvailable(ctx, name) {
			fmt.Fprintf(w, "  %s %s\n", markOK, name)
		} else {
			fmt.Fprintf(w, "  %s %s not found\n", markMiss, name)
		}
	}
}

func runInstallCheck(ctx context.Context, env updateEnv) {
	w := env.out
	fmt.Fprintln(w, "Installation:")

	if env.classifier().ExternallyManaged(ctx) {
		fmt.Fprintf(w, "  %s Python is externally managed; pip upgrades use --user\n", markInfo)
	}

	res, err := env.resolver().Resolve(ctx)
	if err != nil {
		if errors.Is(err, pkgmgr.ErrNoPackageManager) {
			fmt.Fprintf(w, "  %s no supported package manager found (install pipx or pip)\n", markFail)
			return
		}
		fmt.Fprintf(w, "  %s could not determine install method: %v\n", markWarn, err)
		return
	}
	fmt.Fprintf(w, "  %s install method: %s\n", markOK, res)

	if argv, err := env.executor().CommandFor(res); err == nil {
		fmt.Fprintf(w, "  %s upgrade command: %s\n", markInfo, runtime.CommandLine(argv[0], argv[1:]...))
	}
}

func runCacheCheck(w io.Writer, stateDir string, now time.Time) {
	fmt.Fprintln(w, "Version cache:")
	for _, source := range []string{updater.SourcePyPI, updater.SourceNPM} {
		name := updater.CacheFileName(source)
		path := updater.CachePath(stateDir, source)

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "  %s %s not created yet\n", markInfo, name)
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "  %s %s: %v\n", markWarn, name, err)
			continue
		}

		issues, err := updater.ValidateCache(data)
		if err != nil {
			fmt.Fprintf(w, "  %s %s: %v\n", markFail, name, err)
			continue
		}
		if len(issues) > 0 {
			fmt.Fprintf(w, "  %s %s has %d validation issue(s); it will be rebuilt on the next check:\n", markFail, name, len(issues))
			for _, issue := range issues {
				if issue.Path != "" {
					fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
				} else {
					fmt.Fprintf(w, "    - %s\n", issue.Message)
				}
			}
			continue
		}

		entry, err := updater.LoadCache(path)
		if err != nil || entry == nil {
			fmt.Fprintf(w, "  %s %s: %v\n", markWarn, name, err)
			continue
		}
		freshness := "fresh"
		if !updater.IsCacheFresh(entry, now, updater.DefaultCacheMaxAge) {
			freshness = "stale"
		}
		fmt.Fprintf(w, "  %s %s: latest %s, checked %s (%s)\n", markOK, name,
			entry.LatestVersion, entry.CheckedAt().Format(time.RFC3339), freshness)
	}
}
