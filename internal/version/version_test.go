package version

import (
	"strings"
	"testing"
)

func TestSummary(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc123", BuildDate: "2026-01-02", GoVersion: "go1.24", Platform: "linux/arm64"}
	want := "switchlight 1.2.3 (commit abc123, built 2026-01-02, go1.24 linux/arm64)"
	if got := info.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != String() {
		t.Errorf("Version = %q, want %q", info.Version, String())
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %q", info.Platform)
	}
}
