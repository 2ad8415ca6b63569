// Package agent is the orchestration facade the benchmark harness talks
// to: one device controller, one task executor, one identity.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/config"
	"github.com/xkilldash9x/droidpilot/internal/device"
	"github.com/xkilldash9x/droidpilot/internal/executor"
)

// Agent owns one device controller and one task executor bound to it.
// It has no lifecycle of its own beyond construction; releasing the
// controller's session remains the caller's responsibility.
type Agent struct {
	id         string
	controller device.Controller
	executor   *executor.Executor
	logger     *zap.Logger
}

// New creates an agent. A nil controller falls back to the in-memory
// mock, so an agent is always constructible without hardware.
func New(controller device.Controller, cfg config.ExecutorConfig, logger *zap.Logger) *Agent {
	agentID := "agent-" + uuid.New().String()[:8]
	log := logger.Named("agent").With(zap.String("agent_id", agentID))

	if controller == nil {
		controller = device.NewMock(log)
	}

	log.Info("Agent initialized.")
	return &Agent{
		id:         agentID,
		controller: controller,
		executor:   executor.New(controller, cfg, log),
		logger:     log,
	}
}

// ID returns the agent's process-lifetime identifier. It exists for log
// correlation only and is never a lookup key.
func (a *Agent) ID() string { return a.id }

// Controller exposes the bound device controller so the owner can release
// its session on shutdown.
func (a *Agent) Controller() device.Controller { return a.controller }

// Run executes one named task and logs the outcome.
func (a *Agent) Run(ctx context.Context, taskName string, params executor.Params) schemas.TaskResult {
	if params == nil {
		params = executor.Params{}
	}
	a.logger.Info("Starting task.", zap.String("task", taskName))

	result := a.executor.Execute(ctx, taskName, params)

	if result.Success {
		a.logger.Info("Task completed.",
			zap.String("task", taskName), zap.Duration("duration", result.Duration))
	} else {
		a.logger.Error("Task failed.",
			zap.String("task", taskName), zap.String("error", result.Error))
	}
	return result
}

// Status reports a snapshot of the agent. DeviceConnected reflects the
// controller's real session health when the backend exposes a
// connectivity probe; backends without one (the mock) report true.
func (a *Agent) Status(ctx context.Context) schemas.AgentStatus {
	return schemas.AgentStatus{
		AgentID:         a.id,
		Status:          "active",
		TasksExecuted:   len(a.TaskHistory()),
		DeviceConnected: device.Connected(ctx, a.controller),
		Timestamp:       time.Now(),
	}
}

// TaskHistory returns every result to date in execution order.
func (a *Agent) TaskHistory() []schemas.TaskResult {
	return a.executor.History()
}
