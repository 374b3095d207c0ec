package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/updater"
)

var (
	updateCheck  bool
	updateForce  bool
	updateMethod string
)

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Only check for updates, don't install")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Run the upgrade even if already on the latest version")
	updateCmd.Flags().StringVar(&updateMethod, "method", "", "Override install method detection (pipx, pip-user, pip-global, npm-global)")

	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Upgrade " + branding.DisplayName() + " to the latest release",
	Long: `Queries the package registry for the latest release and upgrades with
the tool that installed ` + branding.DisplayName() + `.

  superclaude update                    # upgrade to latest
  superclaude update --check            # check only
  superclaude update --method pip-user  # skip install method detection`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := newUpdateEnv(config.Current())
		env.out = cmd.OutOrStdout()
		outcome := runUpdate(cmd.Context(), env, updateOptions{
			checkOnly: updateCheck,
			force:     updateForce,
			method:    updateMethod,
		})
		if outcome.Kind == updater.OutcomeHardFailure {
			return outcome.Err
		}
		return nil
	},
}

type updateOptions struct {
	checkOnly bool
	force     bool
	method    string
}

// runUpdate is the explicit upgrade path. Unlike the startup check it always
// queries the registry, and every failure is a hard failure.
func runUpdate(ctx context.Context, env updateEnv, opts updateOptions) updater.Outcome {
	w := env.out
	fmt.Fprintln(w, "Checking for updates...")

	result := env.checker(true).Check(ctx, env.installed)
	available := !result.UpToDate
	if err := result.Outcome.Err; err != nil {
		if !errors.Is(err, updater.ErrInvalidVersion) || result.LatestVersion == "" {
			return updater.Hard(fmt.Errorf("checking for updates: %w", err))
		}
		// Development builds cannot be compared; treat them as updateable.
		available = true
	}

	if opts.checkOnly {
		if available {
			fmt.Fprintf(w, "Update available: %s -> %s\n", env.installed, result.LatestVersion)
		} else {
			fmt.Fprintf(w, "You are on the latest version (%s)\n", env.installed)
		}
		return updater.OK()
	}

	if !available && !opts.force {
		fmt.Fprintf(w, "You are on the latest version (%s)\n", env.installed)
		return updater.OK()
	}

	res, err := env.resolve(ctx, opts.method)
	if err != nil {
		return updater.Hard(fmt.Errorf("determining install method: %w", err))
	}

	fmt.Fprintf(w, "Upgrading %s -> %s via %s...\n", env.installed, result.LatestVersion, res)
	upgrade := env.executor().Upgrade(ctx, res)
	if !upgrade.Success {
		color.New(color.FgRed).Fprintln(w, upgrade.Message)
		return updater.Hard(upgrade.Err)
	}

	color.New(color.FgGreen).Fprintln(w, upgrade.Message)
	if upgrade.Warning != "" {
		printWarning(w, upgrade.Warning)
	}
	return updater.OK()
}

func printWarning(w io.Writer, msg string) {
	color.New(color.FgYellow).Fprintln(w, msg)
}
