package device

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Mock is an in-memory backend that always succeeds. It never touches
// device state; it records what it was asked to do so tests can assert on
// the operation sequence. It is the Agent's default backend, guaranteeing
// the Agent is constructible with zero external dependencies.
type Mock struct {
	logger *zap.Logger
	calls  []string
}

var _ Controller = (*Mock)(nil)

// NewMock creates a mock controller.
func NewMock(logger *zap.Logger) *Mock {
	return &Mock{logger: logger.Named("mock-device")}
}

func (m *Mock) record(call string) {
	m.calls = append(m.calls, call)
	m.logger.Info("Mock device operation.", zap.String("op", call))
}

// Calls returns the recorded operations in issue order.
func (m *Mock) Calls() []string {
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) Click(_ context.Context, x, y int) Result {
	m.record(fmt.Sprintf("click(%d,%d)", x, y))
	return Done()
}

func (m *Mock) Swipe(_ context.Context, startX, startY, endX, endY int, duration time.Duration) Result {
	m.record(fmt.Sprintf("swipe(%d,%d->%d,%d,%s)", startX, startY, endX, endY, duration))
	return Done()
}

func (m *Mock) TypeText(_ context.Context, text string) Result {
	m.record(fmt.Sprintf("type(%q)", text))
	return Done()
}

func (m *Mock) PressKey(_ context.Context, key string) Result {
	m.record(fmt.Sprintf("press(%s)", key))
	return Done()
}

// ScreenInfo reports a fixed synthetic portrait display.
func (m *Mock) ScreenInfo(_ context.Context) ScreenInfo {
	return ScreenInfo{
		Width:       1080,
		Height:      2400,
		Orientation: "portrait",
		Timestamp:   time.Now(),
	}
}
