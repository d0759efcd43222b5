package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
)

// Registry holds registered hooks and resolves which hooks apply to a command.
type Registry struct {
	mu     sync.RWMutex
	hooks  []Hook
	logger *slog.Logger
}

// DefaultRegistry is the global hook registry.
var DefaultRegistry = &Registry{}

// Register adds a hook to the registry.
func (r *Registry) Register(h Hook) error {
	if h.Name == "" {
		return errors.New("hook name must not be empty")
	}
	if h.Handler == nil {
		return fmt.Errorf("hook %q has no handler", h.Name)
	}
	if _, err := filepath.Match(h.Pattern, ""); err != nil {
		return fmt.Errorf("hook %q: invalid pattern %q: %w", h.Name, h.Pattern, err)
	}
	if h.Stage != StagePreexec && h.Stage != StageNotify {
		return fmt.Errorf("hook %q: unknown stage %q", h.Name, h.Stage)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, h)
	return nil
}

// Unregister removes all hooks from the given source.
func (r *Registry) Unregister(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filtered := r.hooks[:0]
	for _, h := range r.hooks {
		if h.Source != source {
			filtered = append(filtered, h)
		}
	}
	r.hooks = filtered
}

// SetLogger sets where notify failures are reported. Nil silences them.
func (r *Registry) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

func (r *Registry) log() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// Resolve returns all hooks matching the command and stage, sorted by name.
func (r *Registry) Resolve(command string, stage Stage) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Hook
	for _, h := range r.hooks {
		if h.Stage != stage {
			continue
		}
		if matchPattern(h.Pattern, command) {
			matched = append(matched, h)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})
	return matched
}

// HasHooks returns true if any hooks are registered for the given command.
func (r *Registry) HasHooks(command string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.hooks {
		if matchPattern(h.Pattern, command) {
			return true
		}
	}
	return false
}

// All returns all registered hooks.
func (r *Registry) All() []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Hook, len(r.hooks))
	copy(out, r.hooks)
	return out
}

// Count returns the number of registered hooks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

// Register adds a hook to the default registry.
func Register(h Hook) error {
	return DefaultRegistry.Register(h)
}

// matchPattern checks if a command matches a hook pattern.
// Patterns support dotted notation and wildcards:
//   - "task.add" matches only "task.add"
//   - "task.*"   matches "task.add", "task.done", etc.
//   - "*"        matches everything
func matchPattern(pattern, command string) bool {
	matched, _ := filepath.Match(pattern, command)
	return matched
}
