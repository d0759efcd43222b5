package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFull(t *testing.T) {
	result := Full()
	if !strings.HasPrefix(result, "rack ") {
		t.Fatalf("Full() = %q, want rack prefix", result)
	}
	if !strings.Contains(result, Version) {
		t.Errorf("Full() %q does not contain version %q", result, Version)
	}
}

func TestShort(t *testing.T) {
	if Short() != Version {
		t.Errorf("Short() = %q, want %q", Short(), Version)
	}
}

func TestCurrent(t *testing.T) {
	b := Current()
	if b.Go == "" || b.Version != Version {
		t.Errorf("Current() = %+v", b)
	}
}

func TestBackfill(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "dev", "none", "unknown"
	backfill(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-03-14T10:00:00Z"},
		},
	})
	if Version != "v1.2.3" || Commit != "0123456" || Date != "2025-03-14T10:00:00Z" {
		t.Errorf("backfill = %s %s %s", Version, Commit, Date)
	}

	Version, Commit = "v9.9.9", "abc"
	backfill(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fffffff"}},
	})
	if Version != "v9.9.9" || Commit != "abc" {
		t.Errorf("ldflags values overwritten: %s %s", Version, Commit)
	}

	backfill(nil)
}
