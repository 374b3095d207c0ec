// Package config manages user-level settings stored at ~/.superclaude/config.yaml.
// It provides functions to load, read and write configuration keys such as
// the update-check switches, the registry channel and the registry URLs.
// Every key can also be set through a SUPERCLAUDE_<KEY> environment variable.
package config
