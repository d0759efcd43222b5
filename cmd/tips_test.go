package cmd

import (
	"regexp"
	"strings"
	"testing"

	"github.com/rnwolfe/rack/internal/tips"
)

var tipCommand = regexp.MustCompile("`rack ([a-z0-9]+)(?: ([a-z0-9]+))?")

func TestTips_NameRealCommands(t *testing.T) {
	for _, tip := range tips.All() {
		m := tipCommand.FindStringSubmatch(tip)
		if m == nil {
			continue
		}
		args := []string{m[1]}
		if m[2] != "" {
			args = append(args, m[2])
		}
		found, _, err := rootCmd.Find(args)
		if err != nil || found == rootCmd {
			t.Errorf("tip %q names an unknown command %v", tip, args)
		}
	}
}

func TestRunTips_All(t *testing.T) {
	tipsShowAll = true
	t.Cleanup(func() { tipsShowAll = false })

	out := captureStdout(t, func() {
		if err := runTips(nil, nil); err != nil {
			t.Fatalf("runTips: %v", err)
		}
	})
	if got := strings.Count(out, "✦"); got != len(tips.All()) {
		t.Errorf("listed %d tips, want %d", got, len(tips.All()))
	}
}
