package engine

import (
	"context"
	"strings"
	"time"
)

// Config holds the engine defaults used when requests omit optional data.
type Config struct {
	DefaultEventDuration time.Duration
	DefaultCategoryColor string
	DefaultCategoryIcon  string
}

// Engine routes structured actions into validated, atomically applied
// mutations. It holds no business state of its own; every invocation reads
// and writes through the Store port.
type Engine struct {
	store Store
	idGen IDGenerator
	clock Clock
	cfg   Config
}

// New constructs an engine over a store.
func New(store Store, idGen IDGenerator, clock Clock, cfg Config) *Engine {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultEventDuration <= 0 {
		cfg.DefaultEventDuration = time.Hour
	}
	if cfg.DefaultCategoryColor == "" {
		cfg.DefaultCategoryColor = "#6A9FB5"
	}
	if cfg.DefaultCategoryIcon == "" {
		cfg.DefaultCategoryIcon = "folder"
	}
	return &Engine{store: store, idGen: idGen, clock: clock, cfg: cfg}
}

// Command is one inbound action from the conversational layer.
type Command struct {
	Entity     string         `json:"entity"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// Run routes one command to its handler, returning the typed error so
// transports can classify failures.
func (e *Engine) Run(ctx context.Context, cmd Command) (Result, error) {
	entity := strings.ToLower(strings.TrimSpace(cmd.Entity))
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	params := cmd.Parameters
	if params == nil {
		params = map[string]any{}
	}

	switch entity {
	case "event":
		return e.executeEvent(ctx, action, params)
	case "task":
		return e.executeTask(ctx, action, params)
	case "habit":
		return e.executeHabit(ctx, action, params)
	case "goal":
		return e.executeGoal(ctx, action, params)
	case "category":
		return e.executeCategory(ctx, action, params)
	default:
		return Result{}, &UnsupportedError{Entity: cmd.Entity, Action: cmd.Action}
	}
}

// Execute routes one command and folds every failure into a structured
// result. It never panics and never returns business errors as faults; the
// conversational layer can always narrate Message.
func (e *Engine) Execute(ctx context.Context, cmd Command) Result {
	res, err := e.Run(ctx, cmd)
	if err != nil {
		return failure(err)
	}
	return res
}
