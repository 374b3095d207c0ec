package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/updater"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Prints the installed version and build details. The latest known release
comes from the version cache and never triggers a registry query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := newUpdateEnv(config.Current())
		return writeVersion(cmd.OutOrStdout(), collectVersionInfo(env), versionShort, versionJSON)
	},
}

// versionInfo is the `version --json` document.
type versionInfo struct {
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	Date            string `json:"date"`
	Module          string `json:"module"`
	Channel         string `json:"channel"`
	Package         string `json:"package"`
	LatestKnown     string `json:"latest_known,omitempty"`
	LastChecked     string `json:"last_checked,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// collectVersionInfo reads build info and the cached registry answer for the
// configured channel.
func collectVersionInfo(env updateEnv) versionInfo {
	info := versionInfo{
		Version: env.installed,
		Commit:  buildCommit,
		Date:    buildDate,
		Module:  branding.GoModule(),
		Channel: env.source(),
		Package: branding.PyPIPackage(),
	}
	if info.Channel == updater.SourceNPM {
		info.Package = branding.NPMPackage()
	}

	entry, err := updater.LoadCache(env.cachePath())
	if err != nil || entry == nil {
		return info
	}
	info.LatestKnown = entry.LatestVersion
	info.LastChecked = entry.CheckedAt().UTC().Format(time.RFC3339)
	info.UpdateAvailable, _ = updater.IsUpdateAvailable(env.installed, entry.LatestVersion)
	return info
}

func writeVersion(w io.Writer, info versionInfo, short, asJSON bool) error {
	if short {
		fmt.Fprintln(w, info.Version)
		return nil
	}

	if asJSON {
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	fmt.Fprintf(w, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), info.Version, info.Commit, info.Date)
	fmt.Fprintf(w, "package: %s (%s)\n", info.Package, info.Channel)
	switch {
	case info.LatestKnown == "":
		fmt.Fprintln(w, "latest: unknown (run `"+branding.CLIName()+" update --check`)")
	case info.UpdateAvailable:
		fmt.Fprintf(w, "latest: %s, update available\n", info.LatestKnown)
	default:
		fmt.Fprintf(w, "latest: %s\n", info.LatestKnown)
	}
	return nil
}
