package cmd

import (
	"context"
	"testing"

	"github.com/rnwolfe/rack/internal/task"
)

// appTestEnv isolates XDG dirs and closes the process app after the test.
func appTestEnv(t *testing.T) *app {
	t.Helper()
	configTestEnv(t)
	t.Setenv("RACK_BACKUP_PASSPHRASE", "")
	t.Cleanup(closeApp)

	a, err := openApp(context.Background())
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	return a
}

func intp(n int) *int { return &n }

// seedTask adds a task through the planner and returns it.
func seedTask(t *testing.T, a *app, desc string, u task.Update) task.Task {
	t.Helper()
	tk, err := a.planner.AddTask(context.Background(), task.NewTask{Description: desc, Fields: u})
	if err != nil {
		t.Fatalf("AddTask(%q): %v", desc, err)
	}
	return tk
}

// ratedToday returns an update for a fully rated task scheduled for today.
func ratedToday(impact, estimate int) task.Update {
	return task.Update{
		Status:       task.Set(task.StatusToday),
		Impact:       task.Set(impact),
		Consequences: task.Set(3),
		Friction:     task.Set(2),
		Estimate:     task.Set(estimate),
	}
}

func TestOpenApp_ReusesInstance(t *testing.T) {
	a := appTestEnv(t)

	b, err := openApp(context.Background())
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	if a != b {
		t.Fatal("expected the same app on the second open")
	}
	if activeApp() != a {
		t.Fatal("activeApp should return the open app")
	}
}

func TestCloseApp_Idempotent(t *testing.T) {
	appTestEnv(t)

	closeApp()
	if activeApp() != nil {
		t.Fatal("expected no active app after close")
	}
	closeApp()
}
