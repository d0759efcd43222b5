package hook

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
)

func noop(ctx *Context) (*Context, error) { return ctx, nil }

func TestNewContext(t *testing.T) {
	ctx := NewContext("task.add", []string{"buy milk"}, map[string]string{"tag": "home"})
	if ctx.Command != "task.add" {
		t.Errorf("Command = %q, want %q", ctx.Command, "task.add")
	}
	if len(ctx.Args) != 1 || ctx.Args[0] != "buy milk" {
		t.Errorf("Args = %v, want [buy milk]", ctx.Args)
	}
	if ctx.Flags["tag"] != "home" {
		t.Errorf("Flags[tag] = %q, want %q", ctx.Flags["tag"], "home")
	}
	if ctx.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewContext_NilArgs(t *testing.T) {
	ctx := NewContext("test", nil, nil)
	if ctx.Args == nil {
		t.Error("Args should be initialized to empty slice, not nil")
	}
	if ctx.Flags == nil {
		t.Error("Flags should be initialized to empty map, not nil")
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		command string
		want    bool
	}{
		{"task.add", "task.add", true},
		{"task.add", "task.done", false},
		{"task.*", "task.add", true},
		{"task.*", "task.done", true},
		{"task.*", "top3.set", false},
		{"*", "anything", true},
		{"*", "task.add", true},
		{"*.*", "task.add", true},
		{"*.*", "rerack", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.command, func(t *testing.T) {
			got := matchPattern(tt.pattern, tt.command)
			if got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.command, got, tt.want)
			}
		})
	}
}

func TestRegisterValidates(t *testing.T) {
	reg := &Registry{}
	bad := []Hook{
		{Pattern: "x", Stage: StageNotify, Handler: noop},
		{Pattern: "x", Stage: StageNotify, Name: "no-handler"},
		{Pattern: "[", Stage: StageNotify, Name: "bad-pattern", Handler: noop},
		{Pattern: "x", Stage: "postexec", Name: "bad-stage", Handler: noop},
	}
	for _, h := range bad {
		if err := reg.Register(h); err == nil {
			t.Errorf("Register(%+v) should fail", h)
		}
	}
	if reg.Count() != 0 {
		t.Errorf("Count = %d after rejected registrations", reg.Count())
	}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := &Registry{}
	for _, h := range []Hook{
		{Pattern: "task.*", Stage: StagePreexec, Mode: ModeTransform, Name: "trim", Source: "user", Handler: noop},
		{Pattern: "task.add", Stage: StagePreexec, Mode: ModeTransform, Name: "enrich", Source: "user", Handler: noop},
		{Pattern: "task.add", Stage: StageNotify, Mode: ModeNotify, Name: "backup", Source: "backup", Handler: noop},
	} {
		if err := reg.Register(h); err != nil {
			t.Fatal(err)
		}
	}

	hooks := reg.Resolve("task.add", StagePreexec)
	if len(hooks) != 2 {
		t.Fatalf("Resolve(task.add, preexec) got %d hooks, want 2", len(hooks))
	}
	if hooks[0].Name != "enrich" || hooks[1].Name != "trim" {
		t.Errorf("hooks not sorted: got %q, %q", hooks[0].Name, hooks[1].Name)
	}

	hooks = reg.Resolve("task.add", StageNotify)
	if len(hooks) != 1 || hooks[0].Name != "backup" {
		t.Errorf("Resolve(task.add, notify) got unexpected hooks: %v", hooks)
	}

	if hooks := reg.Resolve("task.done", StageNotify); len(hooks) != 0 {
		t.Errorf("Resolve(task.done, notify) got %d hooks, want 0", len(hooks))
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := &Registry{}
	_ = reg.Register(Hook{Pattern: "task.*", Stage: StageNotify, Mode: ModeNotify, Name: "a", Source: "user", Handler: noop})
	_ = reg.Register(Hook{Pattern: "task.*", Stage: StageNotify, Mode: ModeNotify, Name: "b", Source: "backup", Handler: noop})
	_ = reg.Register(Hook{Pattern: "task.*", Stage: StageNotify, Mode: ModeNotify, Name: "c", Source: "user", Handler: noop})

	if reg.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", reg.Count())
	}

	reg.Unregister("user")
	if reg.Count() != 1 {
		t.Fatalf("Count() after Unregister = %d, want 1", reg.Count())
	}
	if remaining := reg.All(); remaining[0].Name != "b" {
		t.Errorf("remaining hook name = %q, want %q", remaining[0].Name, "b")
	}
}

func TestRegistryHasHooks(t *testing.T) {
	reg := &Registry{}
	if reg.HasHooks("task.add") {
		t.Error("empty registry should have no hooks")
	}

	_ = reg.Register(Hook{Pattern: "task.*", Stage: StagePreexec, Mode: ModeTransform, Name: "test", Handler: noop})
	if !reg.HasHooks("task.add") {
		t.Error("should have hooks for task.add")
	}
	if reg.HasHooks("top3.set") {
		t.Error("should not have hooks for top3.set")
	}
}

func TestTransformStageChaining(t *testing.T) {
	reg := &Registry{}
	_ = reg.Register(Hook{
		Pattern: "test", Stage: StagePreexec, Mode: ModeTransform, Name: "a-tagger",
		Handler: func(ctx *Context) (*Context, error) {
			ctx.Args[0] += " [tagged]"
			return ctx, nil
		},
	})
	_ = reg.Register(Hook{
		Pattern: "test", Stage: StagePreexec, Mode: ModeTransform, Name: "b-marker",
		Handler: func(ctx *Context) (*Context, error) {
			ctx.Args[0] += " [marked]"
			return ctx, nil
		},
	})

	result, err := runTransformStage(reg, "test", StagePreexec, NewContext("test", []string{"hello"}, nil))
	if err != nil {
		t.Fatalf("runTransformStage error: %v", err)
	}
	if want := "hello [tagged] [marked]"; result.Args[0] != want {
		t.Errorf("chained result = %q, want %q", result.Args[0], want)
	}
}

func TestTransformStageError(t *testing.T) {
	reg := &Registry{}
	broke := errors.New("hook broke")
	_ = reg.Register(Hook{
		Pattern: "test", Stage: StagePreexec, Mode: ModeTransform, Name: "failing",
		Handler: func(*Context) (*Context, error) { return nil, broke },
	})

	_, err := runTransformStage(reg, "test", StagePreexec, NewContext("test", nil, nil))
	if !errors.Is(err, broke) {
		t.Fatalf("err = %v, want wrapped hook error", err)
	}
}

func TestNotifyStageParallel(t *testing.T) {
	reg := &Registry{}
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		_ = reg.Register(Hook{
			Pattern: "test", Stage: StageNotify, Mode: ModeNotify, Name: string(rune('a' + i)),
			Handler: func(ctx *Context) (*Context, error) {
				count.Add(1)
				return ctx, nil
			},
		})
	}

	runNotifyStage(reg, "test", NewContext("test", nil, nil))
	if count.Load() != 5 {
		t.Errorf("notify count = %d, want 5", count.Load())
	}
}

func TestNotifyStageErrorsLogged(t *testing.T) {
	var buf bytes.Buffer
	reg := &Registry{}
	reg.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	_ = reg.Register(Hook{
		Pattern: "test", Stage: StageNotify, Mode: ModeNotify, Name: "failing-notify",
		Handler: func(*Context) (*Context, error) { return nil, errors.New("notify error") },
	})

	runNotifyStage(reg, "test", NewContext("test", nil, nil))
	if !strings.Contains(buf.String(), "failing-notify") || !strings.Contains(buf.String(), "notify error") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestWrapWith(t *testing.T) {
	reg := &Registry{}
	var order []string
	_ = reg.Register(Hook{
		Pattern: "task.add", Stage: StagePreexec, Mode: ModeTransform, Name: "pre",
		Handler: func(ctx *Context) (*Context, error) {
			order = append(order, "pre")
			ctx.Args = append(ctx.Args, "extra")
			return ctx, nil
		},
	})
	_ = reg.Register(Hook{
		Pattern: "task.*", Stage: StageNotify, Mode: ModeNotify, Name: "notify",
		Handler: func(ctx *Context) (*Context, error) {
			order = append(order, "notify:"+ctx.Flags["tag"])
			return ctx, nil
		},
	})

	cmd := &cobra.Command{Use: "add"}
	cmd.Flags().String("tag", "", "")
	if err := cmd.Flags().Set("tag", "home"); err != nil {
		t.Fatal(err)
	}

	var gotArgs []string
	run := WrapWith(reg, "task.add", func(_ *cobra.Command, args []string) error {
		order = append(order, "run")
		gotArgs = args
		return nil
	})
	if err := run(cmd, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "pre,run,notify:home" {
		t.Errorf("order = %v", order)
	}
	if len(gotArgs) != 2 || gotArgs[1] != "extra" {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestWrapWithSkipsNotifyOnError(t *testing.T) {
	reg := &Registry{}
	var notified atomic.Int32
	_ = reg.Register(Hook{
		Pattern: "*", Stage: StageNotify, Mode: ModeNotify, Name: "n",
		Handler: func(ctx *Context) (*Context, error) {
			notified.Add(1)
			return ctx, nil
		},
	})
	failed := errors.New("command failed")
	run := WrapWith(reg, "task.done", func(*cobra.Command, []string) error { return failed })
	if err := run(&cobra.Command{}, nil); !errors.Is(err, failed) {
		t.Fatalf("err = %v", err)
	}
	if notified.Load() != 0 {
		t.Error("notify ran after a failed command")
	}
}

func TestWrapWithNoHooks(t *testing.T) {
	reg := &Registry{}
	called := false
	run := WrapWith(reg, "stats", func(*cobra.Command, []string) error {
		called = true
		return nil
	})
	if err := run(&cobra.Command{}, nil); err != nil || !called {
		t.Fatalf("called=%v err=%v", called, err)
	}
}

func TestAllStagesOrder(t *testing.T) {
	if len(AllStages) != 2 || AllStages[0] != StagePreexec || AllStages[1] != StageNotify {
		t.Errorf("AllStages = %v", AllStages)
	}
}
