// Package device defines the polymorphic device-control contract and its
// backends: an in-memory mock and two remote-session variants.
package device

import (
	"context"
	"time"
)

// Result is the outcome of a single interaction operation. OK false with
// an empty Detail means the backend declined the operation (typically no
// live session); OK false with a non-empty Detail means the backend
// errored. Callers must treat OK false as "the operation did not happen".
type Result struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Declined is the result of an operation that was never issued.
func Declined() Result { return Result{} }

// Errored wraps a backend failure.
func Errored(err error) Result { return Result{Detail: err.Error()} }

// Done is a successful result.
func Done() Result { return Result{OK: true} }

// ScreenInfo describes the device's current display.
type ScreenInfo struct {
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Orientation string    `json:"orientation"`
	Timestamp   time.Time `json:"timestamp"`
}

// Controller is the capability contract every backend satisfies. Failures
// never propagate past an implementation's boundary: backend errors are
// caught, logged, and degraded into the returned Result or empty value.
// Coordinate bounds are not enforced by the contract; backends may no-op
// or fail on out-of-range targets.
type Controller interface {
	// Click taps the screen at the given coordinates.
	Click(ctx context.Context, x, y int) Result
	// Swipe drags from start to end over the advisory duration.
	Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) Result
	// TypeText injects literal text into the focused input. Behavior is
	// backend-dependent when no input is focused.
	TypeText(ctx context.Context, text string) Result
	// PressKey sends a named hardware or virtual key event.
	PressKey(ctx context.Context, key string) Result
	// ScreenInfo reports the current display geometry.
	ScreenInfo(ctx context.Context) ScreenInfo
}

// Remote extends Controller with the capabilities a live remote session
// provides. Close releases the underlying session and is safe to call
// multiple times.
type Remote interface {
	Controller

	// ScreenText returns an OCR dump of the screen, empty on failure.
	ScreenText(ctx context.Context) string
	// Screenshot captures the screen, nil on failure.
	Screenshot(ctx context.Context) []byte
	// IsConnected reports whether the remote session is live.
	IsConnected(ctx context.Context) bool
	// DeviceInfo returns backend-reported device metadata.
	DeviceInfo(ctx context.Context) map[string]string
	// Close releases the remote session exactly once.
	Close(ctx context.Context) error
}

// connectivityProber is satisfied by backends that can report real
// session health. The Agent probes for it when building its status.
type connectivityProber interface {
	IsConnected(ctx context.Context) bool
}

// Connected reports the controller's session health when the backend
// exposes it, and true for backends without a session to lose.
func Connected(ctx context.Context, c Controller) bool {
	if p, ok := c.(connectivityProber); ok {
		return p.IsConnected(ctx)
	}
	return true
}
