package device

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/internal/remote"
)

// remoteController is the shared implementation behind the cloud and
// local variants. Every operation catches the handle's error, logs it,
// and degrades to a safe default; nothing propagates past this boundary.
type remoteController struct {
	handle    *remote.DeviceHandle
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

var _ Remote = (*remoteController)(nil)

// NewCloudController binds to an already-registered cloud-hosted device
// and returns a controller owning that session.
func NewCloudController(ctx context.Context, client *remote.Client, deviceID string, logger *zap.Logger) (Remote, error) {
	handle, err := client.Device(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return &remoteController{
		handle: handle,
		logger: logger.Named("cloud-device").With(zap.String("device_id", handle.ID())),
	}, nil
}

// NewLocalController registers a locally bridged device (emulator or
// USB-attached) with the remote service and returns a controller owning
// the new session.
func NewLocalController(ctx context.Context, client *remote.Client, deviceID string, logger *zap.Logger) (Remote, error) {
	handle, err := client.RegisterLocalDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return &remoteController{
		handle: handle,
		logger: logger.Named("local-device").With(zap.String("device_id", handle.ID())),
	}, nil
}

// result converts a handle error into the contract's degraded Result.
func (r *remoteController) result(op string, err error) Result {
	if err != nil {
		r.logger.Error("Device operation failed.", zap.String("op", op), zap.Error(err))
		return Errored(err)
	}
	return Done()
}

func (r *remoteController) Click(ctx context.Context, x, y int) Result {
	return r.result("click", r.handle.Click(ctx, x, y))
}

func (r *remoteController) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) Result {
	return r.result("swipe", r.handle.Swipe(ctx, startX, startY, endX, endY, duration))
}

func (r *remoteController) TypeText(ctx context.Context, text string) Result {
	return r.result("type_text", r.handle.TypeText(ctx, text))
}

func (r *remoteController) PressKey(ctx context.Context, key string) Result {
	return r.result("press_key", r.handle.PressKey(ctx, key))
}

// ScreenInfo derives display geometry from the device metadata the
// service reports. Fields the service omits stay zero.
func (r *remoteController) ScreenInfo(ctx context.Context) ScreenInfo {
	info := ScreenInfo{Orientation: "portrait", Timestamp: time.Now()}
	meta, err := r.handle.Info(ctx)
	if err != nil {
		r.logger.Error("Failed to fetch screen info.", zap.Error(err))
		return info
	}
	if w, h, ok := parseResolution(meta["resolution"]); ok {
		info.Width, info.Height = w, h
	}
	return info
}

func (r *remoteController) ScreenText(ctx context.Context) string {
	text, err := r.handle.ScreenText(ctx)
	if err != nil {
		r.logger.Error("Failed to read screen text.", zap.Error(err))
		return ""
	}
	return text
}

func (r *remoteController) Screenshot(ctx context.Context) []byte {
	shot, err := r.handle.Screenshot(ctx)
	if err != nil {
		r.logger.Error("Failed to take screenshot.", zap.Error(err))
		return nil
	}
	return shot
}

func (r *remoteController) IsConnected(ctx context.Context) bool {
	return r.handle.Connected(ctx)
}

func (r *remoteController) DeviceInfo(ctx context.Context) map[string]string {
	meta, err := r.handle.Info(ctx)
	if err != nil {
		r.logger.Error("Failed to fetch device info.", zap.Error(err))
		return map[string]string{}
	}
	return meta
}

// Close releases the remote session. Safe to call multiple times;
// subsequent calls return the first outcome.
func (r *remoteController) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.closeErr = r.handle.Release(ctx)
		if r.closeErr == nil {
			r.logger.Info("Remote session released.")
		}
	})
	return r.closeErr
}
