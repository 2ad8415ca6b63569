package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/internal/config"
	"github.com/xkilldash9x/droidpilot/internal/device"
	"github.com/xkilldash9x/droidpilot/internal/executor"
)

func newTestAgent(controller device.Controller) *Agent {
	return New(controller, config.ExecutorConfig{StepDelay: 0}, zap.NewNop())
}

func TestNewDefaultsToMockController(t *testing.T) {
	a := newTestAgent(nil)

	require.NotNil(t, a.Controller())
	_, ok := a.Controller().(*device.Mock)
	assert.True(t, ok, "nil controller falls back to the mock backend")
	assert.True(t, strings.HasPrefix(a.ID(), "agent-"))
}

func TestAgentIDsAreUnique(t *testing.T) {
	a := newTestAgent(nil)
	b := newTestAgent(nil)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRunRecipeTaskEndToEnd(t *testing.T) {
	a := newTestAgent(nil)

	result := a.Run(context.Background(), "RecipeAddMultipleRecipes", executor.Params{
		"recipe_name":  "Test Recipe",
		"ingredients":  []string{"ingredient1", "ingredient2"},
		"instructions": "Test instructions",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "RecipeAddMultipleRecipes", result.TaskName)
	assert.Len(t, a.TaskHistory(), 1)
}

func TestRunUnrecognizedTaskSucceedsWithoutDeviceOps(t *testing.T) {
	mock := device.NewMock(zap.NewNop())
	a := newTestAgent(mock)

	result := a.Run(context.Background(), "FooBarTask", nil)
	assert.True(t, result.Success)
	assert.Empty(t, mock.Calls(), "unknown tasks issue no device operations")
}

func TestStatusReflectsExecutionCount(t *testing.T) {
	a := newTestAgent(nil)
	ctx := context.Background()

	a.Run(ctx, "RecipeAddMultipleRecipes", nil)
	a.Run(ctx, "SimpleCalendarAddOneEvent", nil)

	status := a.Status(ctx)
	assert.Equal(t, a.ID(), status.AgentID)
	assert.Equal(t, "active", status.Status)
	assert.Equal(t, 2, status.TasksExecuted)
	assert.True(t, status.DeviceConnected, "mock backend has no session to lose")
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

// probingController reports a canned connectivity state.
type probingController struct {
	*device.Mock
	connected bool
}

func (p *probingController) IsConnected(context.Context) bool { return p.connected }

func TestStatusProbesBackendConnectivity(t *testing.T) {
	controller := &probingController{Mock: device.NewMock(zap.NewNop()), connected: false}
	a := newTestAgent(controller)

	assert.False(t, a.Status(context.Background()).DeviceConnected)

	controller.connected = true
	assert.True(t, a.Status(context.Background()).DeviceConnected)
}

func TestTaskHistoryIsOrderedAndComplete(t *testing.T) {
	a := newTestAgent(nil)
	ctx := context.Background()

	names := []string{"A", "B", "RecipeAddMultipleRecipes"}
	for _, name := range names {
		a.Run(ctx, name, nil)
	}

	history := a.TaskHistory()
	require.Len(t, history, len(names))
	for i, name := range names {
		assert.Equal(t, name, history[i].TaskName)
	}
}
