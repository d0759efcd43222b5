package ui

import (
	"strings"
	"testing"
)

func TestGreet(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"", "▤ Here's your day."},
		{"Ryan", "▤ Hey Ryan, here's your day."},
	}

	for _, tt := range tests {
		got := Greet(tt.name)
		if got != tt.expected {
			t.Errorf("Greet(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestMinutes(t *testing.T) {
	tests := map[int]string{
		0:   "0m",
		45:  "45m",
		60:  "1h",
		90:  "1h 30m",
		360: "6h",
		-25: "-25m",
		-90: "-1h 30m",
	}
	for in, want := range tests {
		if got := Minutes(in); got != want {
			t.Errorf("Minutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestBar(t *testing.T) {
	if Bar(1, 2, 0) != "" {
		t.Error("zero-width bar should be empty")
	}
	for _, tc := range []struct{ used, total int }{{0, 100}, {50, 100}, {100, 100}, {150, 100}, {10, 0}} {
		bar := Bar(tc.used, tc.total, 10)
		if n := strings.Count(bar, "█") + strings.Count(bar, "░"); n != 10 {
			t.Errorf("Bar(%d, %d) has %d cells, want 10", tc.used, tc.total, n)
		}
	}
}

func TestBadge(t *testing.T) {
	for _, name := range []string{"URGENT", "MONSTER", "SOMETHING"} {
		if !strings.Contains(Badge(name), name) {
			t.Errorf("Badge(%q) lost its label", name)
		}
	}
}

func TestIconConstants(t *testing.T) {
	icons := []string{
		IconRack, IconTop3, IconToday, IconDone, IconOverdue, IconMonster,
		IconRecur, IconBackup, IconFire, IconLock, IconWarn, IconError,
		IconOk, IconArrow, IconDot,
	}
	for i, icon := range icons {
		if icon == "" {
			t.Errorf("Icon at index %d is empty", i)
		}
	}
}
