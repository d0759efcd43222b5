// Package hook runs rack commands through a small pipeline.
//
// A command passes preexec transform hooks, runs, then fans out to notify
// hooks. The pipeline is a no-op when nothing is registered for a command.
// rack uses it to re-arm the auto-backup after mutating commands.
package hook

import (
	"time"
)

// Stage identifies when a hook runs in the pipeline.
type Stage string

const (
	StagePreexec Stage = "preexec"
	StageNotify  Stage = "notify"
)

// AllStages is the execution order for the pipeline.
var AllStages = []Stage{StagePreexec, StageNotify}

// Mode determines how a hook interacts with the pipeline.
type Mode string

const (
	ModeTransform Mode = "transform" // receives and returns modified Context
	ModeNotify    Mode = "notify"    // receives Context, no response expected
)

// Context carries data through the hook pipeline.
type Context struct {
	Command   string
	Args      []string
	Flags     map[string]string
	Timestamp time.Time
}

// NewContext creates a Context for the given command invocation.
func NewContext(command string, args []string, flags map[string]string) *Context {
	if args == nil {
		args = []string{}
	}
	if flags == nil {
		flags = map[string]string{}
	}
	return &Context{
		Command:   command,
		Args:      args,
		Flags:     flags,
		Timestamp: time.Now(),
	}
}

// Hook defines a single hook registration.
type Hook struct {
	// Pattern is the command pattern this hook matches (e.g. "task.add", "task.*", "*").
	Pattern string
	Stage   Stage
	Mode    Mode
	Name    string
	// Source identifies who registered the hook (e.g. "backup").
	Source string
	// Handler executes the hook. For notify hooks the returned context is ignored.
	Handler Handler
}

// Handler is the function signature for hook execution.
type Handler func(ctx *Context) (*Context, error)
