// Package harness wires the benchmark framework's task registry to an
// agent bound to a real device. The registry, task objects, and
// environment are consumed behind interfaces; this package never decides
// what to click, it only orchestrates setup, execution, and evaluation.
package harness

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/agent"
	"github.com/xkilldash9x/droidpilot/internal/config"
	"github.com/xkilldash9x/droidpilot/internal/device"
	"github.com/xkilldash9x/droidpilot/internal/executor"
	"github.com/xkilldash9x/droidpilot/internal/registry"
	"github.com/xkilldash9x/droidpilot/internal/remote"
)

// Environment is the benchmark framework's live device environment.
type Environment interface {
	Close(ctx context.Context) error
}

// Task is one benchmark task object. It supplies its own parameters and
// judges its own success against the environment after execution.
type Task interface {
	Goal() string
	Complexity() int
	GenerateRandomParams() map[string]any
	Initialize(ctx context.Context, env Environment) error
	IsSuccessful(ctx context.Context, env Environment) (bool, error)
}

// TaskRegistry maps task names to task objects.
type TaskRegistry interface {
	Names() []string
	Lookup(name string) (Task, bool)
}

// Harness composes the device registry, the remote automation client,
// and an agent into one benchmark run surface.
type Harness struct {
	cfg      *config.Config
	registry TaskRegistry
	devices  *registry.Registry
	client   *remote.Client
	env      Environment
	logger   *zap.Logger

	deviceID  string
	agent     *agent.Agent
	closeOnce sync.Once
}

// New creates a harness for the configured device. The remote client and
// device registry are required; the environment may be nil when no
// success evaluation is wanted.
func New(cfg *config.Config, tasks TaskRegistry, devices *registry.Registry, client *remote.Client, env Environment, logger *zap.Logger) *Harness {
	return &Harness{
		cfg:      cfg,
		registry: tasks,
		devices:  devices,
		client:   client,
		env:      env,
		logger:   logger.Named("harness"),
		deviceID: cfg.Device.DefaultID,
	}
}

// SetupDevice binds the configured device to a remote session and builds
// the agent on the matching controller variant: locally bridged emulators
// register through the service, everything else binds to a cloud device.
func (h *Harness) SetupDevice(ctx context.Context) error {
	sessionID, ok := h.devices.SetupForRemoteControl(ctx, h.deviceID)
	if !ok {
		return fmt.Errorf("device %s could not be set up for remote control", h.deviceID)
	}

	var (
		controller device.Remote
		err        error
	)
	if strings.HasPrefix(h.deviceID, "emulator-") {
		controller, err = device.NewLocalController(ctx, h.client, h.deviceID, h.logger)
	} else {
		controller, err = device.NewCloudController(ctx, h.client, h.deviceID, h.logger)
	}
	if err != nil {
		return fmt.Errorf("failed to build device controller: %w", err)
	}

	h.agent = agent.New(controller, h.cfg.Executor, h.logger)
	h.logger.Info("Device ready for benchmark runs.",
		zap.String("device_id", h.deviceID), zap.String("session_id", sessionID))
	return nil
}

// UseAgent installs a pre-built agent, bypassing device setup. Intended
// for mock-backed runs.
func (h *Harness) UseAgent(a *agent.Agent) { h.agent = a }

// AvailableTasks lists the registry's task names.
func (h *Harness) AvailableTasks() []string {
	if h.registry == nil {
		return nil
	}
	return h.registry.Names()
}

// RunBenchmarkTask looks the task up, initializes it against the
// environment, executes it through the agent, and evaluates the task's
// own success predicate into the result.
func (h *Harness) RunBenchmarkTask(ctx context.Context, name string) schemas.TaskResult {
	if h.agent == nil {
		return failedResult(name, "device not set up")
	}
	task, ok := h.registry.Lookup(name)
	if !ok {
		return failedResult(name, fmt.Sprintf("task %s not found in registry", name))
	}

	params := task.GenerateRandomParams()
	if h.env != nil {
		if err := task.Initialize(ctx, h.env); err != nil {
			return failedResult(name, fmt.Sprintf("task initialization failed: %v", err))
		}
	}

	result := h.agent.Run(ctx, name, executor.Params{
		"goal":       task.Goal(),
		"complexity": task.Complexity(),
		"params":     params,
	})
	result.Goal = task.Goal()

	if h.env != nil {
		met, err := task.IsSuccessful(ctx, h.env)
		if err != nil {
			h.logger.Error("Task success evaluation failed.",
				zap.String("task", name), zap.Error(err))
		} else {
			result.GoalMet = &met
		}
	}
	return result
}

// RunTasks executes up to max tasks sequentially, pausing between tasks
// to let device animations settle.
func (h *Harness) RunTasks(ctx context.Context, names []string, max int) schemas.BenchmarkSummary {
	if max > 0 && len(names) > max {
		names = names[:max]
	}

	summary := schemas.BenchmarkSummary{Results: make([]schemas.TaskResult, 0, len(names))}
	for i, name := range names {
		h.logger.Info("Running benchmark task.",
			zap.Int("index", i+1), zap.Int("total", len(names)), zap.String("task", name))

		result := h.RunBenchmarkTask(ctx, name)
		summary.Results = append(summary.Results, result)
		if result.Success {
			summary.SuccessfulTasks++
		}

		if i < len(names)-1 {
			h.pause(ctx)
		}
	}

	summary.TotalTasks = len(summary.Results)
	if summary.TotalTasks > 0 {
		summary.SuccessRate = float64(summary.SuccessfulTasks) / float64(summary.TotalTasks)
	}
	return summary
}

// DeviceStatus merges the configured device's descriptor and registration
// state, or reports it disconnected when the bridge no longer sees it.
func (h *Harness) DeviceStatus(ctx context.Context) schemas.AvailableDevice {
	for _, dev := range h.devices.ListAvailable(ctx) {
		if dev.ID == h.deviceID {
			return dev
		}
	}
	return schemas.AvailableDevice{
		DeviceDescriptor: schemas.DeviceDescriptor{ID: h.deviceID, Kind: schemas.KindUnknown},
		Connected:        false,
		Registration:     h.devices.Status(h.deviceID),
	}
}

// Close releases the agent's remote session (when it has one) and the
// benchmark environment. Safe to call multiple times.
func (h *Harness) Close(ctx context.Context) {
	h.closeOnce.Do(func() {
		if h.agent != nil {
			if closer, ok := h.agent.Controller().(device.Remote); ok {
				if err := closer.Close(ctx); err != nil {
					h.logger.Error("Failed to release device controller.", zap.Error(err))
				}
			}
		}
		if h.env != nil {
			if err := h.env.Close(ctx); err != nil {
				h.logger.Error("Failed to close benchmark environment.", zap.Error(err))
			}
		}
	})
}

// pause waits the configured inter-task delay.
func (h *Harness) pause(ctx context.Context) {
	if h.cfg.Executor.TaskPause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(h.cfg.Executor.TaskPause):
	}
}

func failedResult(name, detail string) schemas.TaskResult {
	return schemas.TaskResult{
		TaskName:  name,
		Success:   false,
		Error:     detail,
		StartedAt: time.Now(),
	}
}
