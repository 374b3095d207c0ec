package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/logging"
	"github.com/superclaude-org/superclaude/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	noUpdateCheck bool
	autoUpdate    bool
	debugLogging  bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&noUpdateCheck, "no-update-check", false, "Skip the startup update check")
	rootCmd.PersistentFlags().BoolVar(&autoUpdate, "auto-update", false, "Upgrade automatically when a newer release exists")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps its installation current. It detects whether the
framework was installed with pipx, pip or npm, checks the package registry
for a newer release and runs the matching upgrade command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		settings := config.Current()

		level := settings.LogLevel
		if debugLogging {
			level = "debug"
		}
		logging.Init(level, os.Stderr)

		// Skip the startup check for commands that manage their own state.
		switch cmd.Name() {
		case "update", "config", "get", "set", "help", "completion":
			return
		}

		notifier := newNotifier(newUpdateEnv(settings))
		notifier.MaybeNotify(cmd.Context(), updater.NotifyOptions{
			Skip:        noUpdateCheck || settings.SkipUpdateCheck,
			AutoApply:   autoUpdate || settings.AutoUpdate,
			EnvOverride: config.AutoUpdateFromEnv(),
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
