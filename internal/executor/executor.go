// Package executor turns named benchmark tasks into scripted sequences of
// device operations, timing each run and keeping an append-only history.
package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/config"
	"github.com/xkilldash9x/droidpilot/internal/device"
)

// Params carries task-specific parameters into a handler.
type Params map[string]any

// String returns the named parameter when it is a non-empty string,
// otherwise the fallback.
func (p Params) String(key, fallback string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Executor dispatches named tasks to scripted handlers against a bound
// device controller. History is append-only and ordered by start time.
// An Executor is owned by a single logical caller; it is not safe for
// concurrent use.
type Executor struct {
	controller device.Controller
	stepDelay  time.Duration
	logger     *zap.Logger
	history    []schemas.TaskResult
}

// New creates an executor bound to the given controller. StepDelay is the
// settle pause between scripted operations; zero disables pacing.
func New(controller device.Controller, cfg config.ExecutorConfig, logger *zap.Logger) *Executor {
	return &Executor{
		controller: controller,
		stepDelay:  cfg.StepDelay,
		logger:     logger.Named("executor"),
	}
}

// Execute runs the named task and records the outcome. Exactly one
// TaskResult is appended per call, successful or not; handler panics are
// recovered here and surface as a failed result, never as a crash.
func (e *Executor) Execute(ctx context.Context, taskName string, params Params) schemas.TaskResult {
	e.logger.Info("Executing task.", zap.String("task", taskName))

	start := time.Now()
	success, err := e.dispatch(ctx, taskName, params)

	result := schemas.TaskResult{
		TaskName:  taskName,
		Success:   success && err == nil,
		Duration:  time.Since(start),
		StartedAt: start,
	}
	if err != nil {
		result.Error = err.Error()
		e.logger.Error("Task execution failed.",
			zap.String("task", taskName), zap.Error(err))
	}

	e.history = append(e.history, result)
	return result
}

// History returns a copy of all results to date, in execution order.
func (e *Executor) History() []schemas.TaskResult {
	out := make([]schemas.TaskResult, len(e.history))
	copy(out, e.history)
	return out
}

// dispatch routes the task name to its handler. Unrecognized names fall
// through to the generic handler, which issues no device operations.
func (e *Executor) dispatch(ctx context.Context, taskName string, params Params) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("task handler panicked: %v", r)
		}
	}()

	switch taskName {
	case "RecipeAddMultipleRecipes":
		return e.runRecipeTask(ctx, params)
	case "SimpleCalendarAddOneEvent":
		return e.runCalendarTask(ctx, params)
	default:
		return e.runGenericTask(ctx, taskName)
	}
}

// settle pauses between scripted steps to let device animations finish.
func (e *Executor) settle(ctx context.Context) {
	if e.stepDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.stepDelay):
	}
}

// steps reduces a scripted sequence to a single outcome: every step must
// report OK, and the first backend error is surfaced.
func steps(results ...device.Result) (bool, error) {
	for _, r := range results {
		if r.OK {
			continue
		}
		if r.Detail != "" {
			return false, fmt.Errorf("device operation failed: %s", r.Detail)
		}
		return false, nil
	}
	return true, nil
}

// runRecipeTask adds a recipe: open the add form, name it, save.
func (e *Executor) runRecipeTask(ctx context.Context, params Params) (bool, error) {
	e.logger.Info("Executing recipe task.")

	open := e.controller.Click(ctx, 500, 1200)
	e.settle(ctx)
	name := e.controller.TypeText(ctx, params.String("recipe_name", "Test Recipe"))
	e.settle(ctx)
	save := e.controller.Click(ctx, 500, 1400)

	return steps(open, name, save)
}

// runCalendarTask adds a calendar event: open the add form, title it, save.
func (e *Executor) runCalendarTask(ctx context.Context, params Params) (bool, error) {
	e.logger.Info("Executing calendar task.")

	open := e.controller.Click(ctx, 500, 1200)
	e.settle(ctx)
	title := e.controller.TypeText(ctx, params.String("event_title", "Test Event"))
	e.settle(ctx)
	save := e.controller.Click(ctx, 500, 1400)

	return steps(open, title, save)
}

// runGenericTask handles task names with no scripted sequence. It issues
// no device operations and reports success.
func (e *Executor) runGenericTask(_ context.Context, taskName string) (bool, error) {
	e.logger.Info("Executing generic task.", zap.String("task", taskName))
	return true, nil
}
