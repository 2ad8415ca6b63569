package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// deviceInfo is the service's device metadata document.
type deviceInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Model          string `json:"model"`
	AndroidVersion string `json:"android_version"`
	Resolution     string `json:"resolution"`
	Connected      bool   `json:"connected"`
}

// action is the wire form of one UI operation.
type action struct {
	Type       string `json:"type"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	EndX       int    `json:"end_x,omitempty"`
	EndY       int    `json:"end_y,omitempty"`
	DurationMs int    `json:"duration_ms,omitempty"`
	Text       string `json:"text,omitempty"`
	Key        string `json:"key,omitempty"`
}

// DeviceHandle is a live remote-control session for one device. A handle
// owns exactly one session; Release tears it down and is idempotent.
type DeviceHandle struct {
	client *Client
	id     string

	releaseOnce sync.Once
	releaseErr  error
}

// ID returns the service-side device identifier.
func (d *DeviceHandle) ID() string { return d.id }

func (d *DeviceHandle) postAction(ctx context.Context, a action) error {
	return d.client.do(ctx, http.MethodPost, "/v1/boxes/"+d.id+"/actions", a, nil)
}

// Click taps the screen at the given coordinates.
func (d *DeviceHandle) Click(ctx context.Context, x, y int) error {
	return d.postAction(ctx, action{Type: "click", X: x, Y: y})
}

// Swipe drags from start to end over the advisory duration.
func (d *DeviceHandle) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error {
	return d.postAction(ctx, action{
		Type:       "swipe",
		X:          startX,
		Y:          startY,
		EndX:       endX,
		EndY:       endY,
		DurationMs: int(duration.Milliseconds()),
	})
}

// TypeText injects literal text into the focused input.
func (d *DeviceHandle) TypeText(ctx context.Context, text string) error {
	return d.postAction(ctx, action{Type: "type", Text: text})
}

// PressKey sends a named key event.
func (d *DeviceHandle) PressKey(ctx context.Context, key string) error {
	return d.postAction(ctx, action{Type: "keypress", Key: key})
}

// ScreenText fetches the service's OCR dump of the current screen.
func (d *DeviceHandle) ScreenText(ctx context.Context) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := d.client.do(ctx, http.MethodGet, "/v1/boxes/"+d.id+"/ocr", nil, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Screenshot captures the current screen as raw image bytes.
func (d *DeviceHandle) Screenshot(ctx context.Context) ([]byte, error) {
	return d.client.raw(ctx, "/v1/boxes/"+d.id+"/screenshot")
}

// Connected reports whether the service considers the session live.
func (d *DeviceHandle) Connected(ctx context.Context) bool {
	err := d.client.do(ctx, http.MethodGet, "/v1/boxes/"+d.id+"/health", nil, nil)
	return err == nil
}

// Info fetches device metadata as a flat string map.
func (d *DeviceHandle) Info(ctx context.Context) (map[string]string, error) {
	var info deviceInfo
	if err := d.client.do(ctx, http.MethodGet, "/v1/boxes/"+d.id, nil, &info); err != nil {
		return nil, err
	}
	return map[string]string{
		"id":              info.ID,
		"name":            info.Name,
		"model":           info.Model,
		"android_version": info.AndroidVersion,
		"resolution":      info.Resolution,
		"connected":       fmt.Sprintf("%t", info.Connected),
	}, nil
}

// Release tears down the remote session. Subsequent calls return the
// first call's outcome.
func (d *DeviceHandle) Release(ctx context.Context) error {
	d.releaseOnce.Do(func() {
		d.releaseErr = d.client.do(ctx, http.MethodDelete, "/v1/boxes/"+d.id+"/session", nil, nil)
		if d.releaseErr != nil {
			d.client.logger.Error("Failed to release remote session.",
				zap.String("device_id", d.id), zap.Error(d.releaseErr))
		}
	})
	return d.releaseErr
}
