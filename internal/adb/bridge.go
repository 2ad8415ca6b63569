// Package adb is the boundary to the local device bridge. It shells out
// to the adb executable to enumerate connected devices and query their
// properties; every invocation is bounded by a timeout, and any failure
// degrades to an empty result plus a logged error rather than a crash.
package adb

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/config"
)

// runnerFunc executes one bridge command and returns its combined stdout.
// Injectable so tests can stub the subprocess boundary.
type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Bridge wraps the adb executable.
type Bridge struct {
	path    string
	timeout time.Duration
	run     runnerFunc
	logger  *zap.Logger
}

// New creates a bridge from configuration.
func New(cfg config.BridgeConfig, logger *zap.Logger) *Bridge {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Bridge{
		path:    cfg.Path,
		timeout: timeout,
		run:     defaultRunner,
		logger:  logger.Named("adb"),
	}
}

// exec runs one adb invocation under the bridge timeout.
func (b *Bridge) exec(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	out, err := b.run(ctx, b.path, args...)
	if err != nil {
		return "", fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Devices lists connected devices that are ready (status "device"),
// classifying each as emulator or physical. Bridge failures yield an
// empty list, never an error.
func (b *Bridge) Devices(ctx context.Context) []schemas.ConnectedDevice {
	out, err := b.exec(ctx, "devices")
	if err != nil {
		b.logger.Error("Failed to enumerate devices.", zap.Error(err))
		return nil
	}

	var devices []schemas.ConnectedDevice
	lines := strings.Split(out, "\n")
	if len(lines) > 0 {
		lines = lines[1:] // first line is the "List of devices attached" header
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "\t") {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		id, status := fields[0], fields[1]
		if status != "device" {
			continue
		}
		devices = append(devices, schemas.ConnectedDevice{
			ID:     id,
			Status: status,
			Kind:   b.Kind(ctx, id),
		})
	}

	b.logger.Info("Enumerated connected devices.", zap.Int("count", len(devices)))
	return devices
}

// Kind classifies a device as emulator or physical. The id prefix is
// authoritative for emulators; otherwise the product model decides, and a
// failed query means unknown.
func (b *Bridge) Kind(ctx context.Context, id string) schemas.DeviceKind {
	if strings.HasPrefix(id, "emulator-") {
		return schemas.KindEmulator
	}

	model, err := b.Getprop(ctx, id, "ro.product.model")
	if err != nil {
		b.logger.Error("Failed to classify device.", zap.String("device_id", id), zap.Error(err))
		return schemas.KindUnknown
	}
	lower := strings.ToLower(model)
	if strings.Contains(lower, "sdk") || strings.Contains(lower, "emulator") {
		return schemas.KindEmulator
	}
	return schemas.KindPhysical
}

// Getprop reads one system property from the device.
func (b *Bridge) Getprop(ctx context.Context, id, key string) (string, error) {
	return b.exec(ctx, "-s", id, "shell", "getprop", key)
}

// ScreenSize reports the device's physical display size ("1080x2400").
func (b *Bridge) ScreenSize(ctx context.Context, id string) (string, error) {
	out, err := b.exec(ctx, "-s", id, "shell", "wm", "size")
	if err != nil {
		return "", err
	}
	const marker = "Physical size: "
	if idx := strings.Index(out, marker); idx >= 0 {
		size := out[idx+len(marker):]
		if nl := strings.IndexByte(size, '\n'); nl >= 0 {
			size = size[:nl]
		}
		return strings.TrimSpace(size), nil
	}
	return "", fmt.Errorf("unexpected wm size output: %q", out)
}

// HasPackage reports whether the named package is installed on the device.
func (b *Bridge) HasPackage(ctx context.Context, id, pkg string) bool {
	out, err := b.exec(ctx, "-s", id, "shell", "pm", "list", "packages", pkg)
	if err != nil {
		b.logger.Error("Failed to list packages.",
			zap.String("device_id", id), zap.String("package", pkg), zap.Error(err))
		return false
	}
	return strings.Contains(out, pkg)
}
