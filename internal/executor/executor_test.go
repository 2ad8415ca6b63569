package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/internal/config"
	"github.com/xkilldash9x/droidpilot/internal/device"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// failingController declines or errors every interaction.
type failingController struct {
	detail string
}

func (f *failingController) result() device.Result {
	if f.detail == "" {
		return device.Declined()
	}
	return device.Errored(errors.New(f.detail))
}

func (f *failingController) Click(context.Context, int, int) device.Result { return f.result() }
func (f *failingController) Swipe(context.Context, int, int, int, int, time.Duration) device.Result {
	return f.result()
}
func (f *failingController) TypeText(context.Context, string) device.Result { return f.result() }
func (f *failingController) PressKey(context.Context, string) device.Result { return f.result() }
func (f *failingController) ScreenInfo(context.Context) device.ScreenInfo   { return device.ScreenInfo{} }

func newTestExecutor(c device.Controller) *Executor {
	return New(c, config.ExecutorConfig{StepDelay: 0}, zap.NewNop())
}

func TestExecuteAppendsExactlyOneResultPerCall(t *testing.T) {
	e := newTestExecutor(device.NewMock(zap.NewNop()))
	ctx := context.Background()

	names := []string{"RecipeAddMultipleRecipes", "FooBarTask", "SimpleCalendarAddOneEvent", "FooBarTask"}
	for i, name := range names {
		e.Execute(ctx, name, Params{})
		assert.Len(t, e.History(), i+1, "history grows by exactly one per call")
	}

	history := e.History()
	for i, name := range names {
		assert.Equal(t, name, history[i].TaskName, "history preserves execution order")
	}
}

func TestExecuteRecipeTaskDrivesScriptedSequence(t *testing.T) {
	mock := device.NewMock(zap.NewNop())
	e := newTestExecutor(mock)

	result := e.Execute(context.Background(), "RecipeAddMultipleRecipes", Params{"recipe_name": "Pasta"})
	require.True(t, result.Success)

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "click(500,1200)", calls[0])
	assert.Equal(t, `type("Pasta")`, calls[1])
	assert.Equal(t, "click(500,1400)", calls[2])
}

func TestExecuteCalendarTaskUsesDefaultTitle(t *testing.T) {
	mock := device.NewMock(zap.NewNop())
	e := newTestExecutor(mock)

	result := e.Execute(context.Background(), "SimpleCalendarAddOneEvent", Params{})
	require.True(t, result.Success)
	assert.Contains(t, mock.Calls(), `type("Test Event")`)
}

func TestExecuteUnknownTaskSucceedsWithoutDeviceOps(t *testing.T) {
	mock := device.NewMock(zap.NewNop())
	e := newTestExecutor(mock)

	result := e.Execute(context.Background(), "FooBarTask", Params{})
	assert.True(t, result.Success, "generic handler defaults to success")
	assert.Empty(t, result.Error)
	assert.Empty(t, mock.Calls(), "generic handler must not touch the device")
}

func TestExecuteFailedStepFailsTask(t *testing.T) {
	e := newTestExecutor(&failingController{detail: "session expired"})

	result := e.Execute(context.Background(), "RecipeAddMultipleRecipes", Params{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "session expired")
	assert.Len(t, e.History(), 1, "failed attempts are recorded too")
}

func TestExecuteDeclinedStepFailsWithoutError(t *testing.T) {
	e := newTestExecutor(&failingController{})

	result := e.Execute(context.Background(), "RecipeAddMultipleRecipes", Params{})
	assert.False(t, result.Success)
	assert.Empty(t, result.Error, "declined operations carry no backend error")
}

func TestExecuteRecoversHandlerPanic(t *testing.T) {
	// A nil controller makes any scripted handler panic on its first
	// device call; the execute boundary must turn that into a failed
	// result instead of crashing.
	e := newTestExecutor(nil)

	result := e.Execute(context.Background(), "RecipeAddMultipleRecipes", Params{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "panicked")
	assert.Len(t, e.History(), 1)
}

func TestExecuteResultTiming(t *testing.T) {
	e := newTestExecutor(device.NewMock(zap.NewNop()))
	before := time.Now()

	result := e.Execute(context.Background(), "FooBarTask", Params{})
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	assert.False(t, result.StartedAt.Before(before))
}

func TestParamsString(t *testing.T) {
	p := Params{"recipe_name": "Soup", "count": 3, "empty": ""}
	assert.Equal(t, "Soup", p.String("recipe_name", "fallback"))
	assert.Equal(t, "fallback", p.String("count", "fallback"), "non-string values fall back")
	assert.Equal(t, "fallback", p.String("empty", "fallback"))
	assert.Equal(t, "fallback", p.String("missing", "fallback"))
}
