//go:build integration

package integration_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
)

// testEnv holds the isolated state directory and fake tool directory.
type testEnv struct {
	HomeDir string // SUPERCLAUDE_HOME, holds config.yaml and the version caches
	BinDir  string // prepended to PATH, holds fake package manager scripts
	LogPath string // every fake tool appends its argv here
}

// setupTestEnv creates isolated temp directories and points SUPERCLAUDE_HOME
// and PATH at them. Only the fake tools are reachable on PATH.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake package managers are shell scripts")
	}

	env := &testEnv{
		HomeDir: t.TempDir(),
		BinDir:  t.TempDir(),
	}
	env.LogPath = filepath.Join(env.BinDir, "calls.log")

	t.Setenv("SUPERCLAUDE_HOME", env.HomeDir)
	t.Setenv("PATH", env.BinDir)
	return env
}

// writeTool installs a shell script named name in the fake bin directory.
// body runs after the invocation has been logged; "$1" etc. are the args.
func (e *testEnv) writeTool(t *testing.T, name, body string) {
	t.Helper()
	script := "#!/bin/sh\necho \"" + name + " $*\" >> \"" + e.LogPath + "\"\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(e.BinDir, name), []byte(script), 0755); err != nil {
		t.Fatalf("writing fake %s: %v", name, err)
	}
}

// calls returns the logged tool invocations.
func (e *testEnv) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.LogPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading call log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func (e *testEnv) called(t *testing.T, line string) bool {
	t.Helper()
	for _, c := range e.calls(t) {
		if c == line {
			return true
		}
	}
	return false
}

// fakePyPI serves version as the latest SuperClaude release and counts hits.
func fakePyPI(t *testing.T, version string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/SuperClaude/json" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Write([]byte(`{"info": {"version": "` + version + `"}}`))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}
