package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/superclaude-org/superclaude/internal/config"
	"github.com/superclaude-org/superclaude/internal/runtime"
	"github.com/superclaude-org/superclaude/internal/updater"
)

func TestCollectVersionInfo_FromCache(t *testing.T) {
	env, _, hits := testEnv(t, "4.0.6", "9.9.9", runtime.NewMockRunner())
	checked := time.Unix(1760000000, 0)
	entry := &updater.VersionCacheEntry{LastChecked: checked.Unix(), LatestVersion: "4.0.8", Source: updater.SourcePyPI}
	if err := updater.SaveCache(env.cachePath(), entry); err != nil {
		t.Fatal(err)
	}

	info := collectVersionInfo(env)

	if hits.Load() != 0 {
		t.Errorf("registry hits = %d, want 0", hits.Load())
	}
	if info.LatestKnown != "4.0.8" || !info.UpdateAvailable {
		t.Errorf("info = %+v", info)
	}
	if info.Package != "SuperClaude" || info.Channel != updater.SourcePyPI {
		t.Errorf("info = %+v", info)
	}
	if info.LastChecked != "2025-10-09T08:53:20Z" {
		t.Errorf("LastChecked = %q", info.LastChecked)
	}
}

func TestCollectVersionInfo_NoCache(t *testing.T) {
	env, _, _ := testEnv(t, "4.0.6", "4.0.8", runtime.NewMockRunner())
	env.settings.Channel = config.ChannelNPM

	info := collectVersionInfo(env)
	if info.LatestKnown != "" || info.UpdateAvailable {
		t.Errorf("info = %+v", info)
	}
	if info.Package != "@bifrost_inc/superclaude" || info.Channel != updater.SourceNPM {
		t.Errorf("info = %+v", info)
	}
}

func TestWriteVersion(t *testing.T) {
	info := versionInfo{Version: "4.0.6", Commit: "abc123", Date: "2025-10-01", Channel: "pypi", Package: "SuperClaude", LatestKnown: "4.0.8", UpdateAvailable: true}

	tests := []struct {
		name   string
		short  bool
		asJSON bool
		want   []string
	}{
		{name: "short", short: true, want: []string{"4.0.6\n"}},
		{name: "text", want: []string{"superclaude version 4.0.6 (commit: abc123", "package: SuperClaude (pypi)", "latest: 4.0.8, update available"}},
		{name: "json", asJSON: true, want: []string{`"latest_known": "4.0.8"`, `"update_available": true`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeVersion(&buf, info, tt.short, tt.asJSON); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
		})
	}

	var buf bytes.Buffer
	if err := writeVersion(&buf, info, false, true); err != nil {
		t.Fatal(err)
	}
	var decoded versionInfo
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded != info {
		t.Errorf("decoded = %+v, want %+v", decoded, info)
	}
}
