// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Package names here are the ones looked up on PyPI
// and npm and passed to pip, pipx, npm and yarn.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string   `yaml:"cli_name"`
	DisplayName     string   `yaml:"display_name"`
	Description     string   `yaml:"description"`
	HomeDir         string   `yaml:"home_dir"`
	EnvPrefix       string   `yaml:"env_prefix"`
	GoModule        string   `yaml:"go_module"`
	PyPIPackage     string   `yaml:"pypi_package"`
	NPMPackage      string   `yaml:"npm_package"`
	PostUpgradeArgs []string `yaml:"post_upgrade_args"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:         "superclaude",
			DisplayName:     "SuperClaude",
			Description:     "Installer and update helper for the SuperClaude framework",
			HomeDir:         ".superclaude",
			EnvPrefix:       "SUPERCLAUDE",
			GoModule:        "github.com/superclaude-org/superclaude",
			PyPIPackage:     "SuperClaude",
			NPMPackage:      "@bifrost_inc/superclaude",
			PostUpgradeArgs: []string{"install", "--force"},
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "superclaude").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "SuperClaude").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".superclaude").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SUPERCLAUDE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// PyPIPackage returns the distribution name published on PyPI.
func PyPIPackage() string { load(); return defaults.PyPIPackage }

// NPMPackage returns the package name published on the npm registry.
func NPMPackage() string { load(); return defaults.NPMPackage }

// PostUpgradeCommand returns the command run after a successful pip-family
// upgrade, e.g. ["superclaude", "install", "--force"]. It names the Python
// package's console script, not this helper.
func PostUpgradeCommand() []string {
	load()
	cmd := make([]string, 0, len(defaults.PostUpgradeArgs)+1)
	cmd = append(cmd, defaults.CLIName)
	return append(cmd, defaults.PostUpgradeArgs...)
}

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "SUPERCLAUDE_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
