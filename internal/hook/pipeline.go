package hook

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Wrap wraps a Cobra RunE function with the hook pipeline.
// When no hooks are registered for the command, this is a zero-cost no-op.
//
// Usage:
//
//	var addCmd = &cobra.Command{RunE: hook.Wrap("task.add", runTaskAdd)}
func Wrap(command string, fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return WrapWith(DefaultRegistry, command, fn)
}

// WrapWith wraps a Cobra RunE function using a specific registry.
func WrapWith(reg *Registry, command string, fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if reg.Count() == 0 || !reg.HasHooks(command) {
			return fn(cmd, args)
		}

		ctx := NewContext(command, args, extractFlags(cmd))

		ctx, err := runTransformStage(reg, command, StagePreexec, ctx)
		if err != nil {
			return fmt.Errorf("hook preexec failed: %w", err)
		}

		if err := fn(cmd, ctx.Args); err != nil {
			return err
		}

		runNotifyStage(reg, command, ctx)
		return nil
	}
}

// runTransformStage runs all transform hooks for a stage sequentially.
// Each hook receives the context from the previous hook.
func runTransformStage(reg *Registry, command string, stage Stage, ctx *Context) (*Context, error) {
	for _, h := range reg.Resolve(command, stage) {
		if h.Mode == ModeNotify {
			continue
		}
		result, err := h.Handler(ctx)
		if err != nil {
			return ctx, fmt.Errorf("hook %q (%s): %w", h.Name, stage, err)
		}
		if result != nil {
			ctx = result
		}
	}
	return ctx, nil
}

// runNotifyStage runs all notify hooks concurrently and waits for them.
// Failures are logged, never returned.
func runNotifyStage(reg *Registry, command string, ctx *Context) {
	hooks := reg.Resolve(command, StageNotify)
	if len(hooks) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, h := range hooks {
		wg.Add(1)
		go func(h Hook) {
			defer wg.Done()
			if _, err := h.Handler(ctx); err != nil {
				if lg := reg.log(); lg != nil {
					lg.Warn("notify hook failed", "hook", h.Name, "command", command, "err", err)
				}
			}
		}(h)
	}
	wg.Wait()
}

// extractFlags extracts changed flag values from a Cobra command.
func extractFlags(cmd *cobra.Command) map[string]string {
	flags := make(map[string]string)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			flags[f.Name] = f.Value.String()
		}
	})
	return flags
}
