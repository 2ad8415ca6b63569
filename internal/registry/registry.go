// Package registry tracks locally bridged devices and their bindings to
// remote control sessions. A Registry is owned by a single logical caller
// at a time; it is not safe for concurrent use.
package registry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/config"
)

// DeviceBridge is the subset of the adb bridge the registry consumes.
type DeviceBridge interface {
	Devices(ctx context.Context) []schemas.ConnectedDevice
	Kind(ctx context.Context, id string) schemas.DeviceKind
	Getprop(ctx context.Context, id, key string) (string, error)
	ScreenSize(ctx context.Context, id string) (string, error)
	HasPackage(ctx context.Context, id, pkg string) bool
}

// describedProperties is the fixed set of system properties a descriptor
// carries.
var describedProperties = []string{
	"ro.product.model",
	"ro.product.brand",
	"ro.product.name",
	"ro.build.version.release",
	"ro.build.version.sdk",
}

// Registry enumerates bridged devices and holds the process-wide mapping
// from local device id to remote-session registration. Records live until
// process teardown; re-registration overwrites.
type Registry struct {
	bridge       DeviceBridge
	agentPackage string
	logger       *zap.Logger
	records      map[string]schemas.Registration
}

// New creates a registry over the given bridge.
func New(bridge DeviceBridge, cfg config.DeviceConfig, logger *zap.Logger) *Registry {
	return &Registry{
		bridge:       bridge,
		agentPackage: cfg.AgentPackage,
		logger:       logger.Named("registry"),
		records:      make(map[string]schemas.Registration),
	}
}

// ConnectedDevices lists the currently bridged, ready devices.
func (r *Registry) ConnectedDevices(ctx context.Context) []schemas.ConnectedDevice {
	return r.bridge.Devices(ctx)
}

// Describe queries a device's fixed property set and screen size. Each
// property failure degrades that single field to "unknown"; the screen
// size is simply omitted when unavailable.
func (r *Registry) Describe(ctx context.Context, id string) schemas.DeviceDescriptor {
	desc := schemas.DeviceDescriptor{
		ID:         id,
		Kind:       r.bridge.Kind(ctx, id),
		Properties: make(map[string]string, len(describedProperties)),
	}

	for _, prop := range describedProperties {
		value, err := r.bridge.Getprop(ctx, id, prop)
		if err != nil {
			value = "unknown"
		}
		desc.Properties[prop] = value
	}

	if size, err := r.bridge.ScreenSize(ctx, id); err == nil {
		desc.ScreenSize = size
	}

	r.logger.Info("Described device.",
		zap.String("device_id", id), zap.String("kind", string(desc.Kind)))
	return desc
}

// EnsureAgentInstalled checks for the on-device control agent. When the
// package is absent this reports success without installing anything;
// the service pushes its own agent during session setup.
// TODO: install the agent APK directly once the service publishes a
// stable download URL.
func (r *Registry) EnsureAgentInstalled(ctx context.Context, id string) bool {
	if r.bridge.HasPackage(ctx, id, r.agentPackage) {
		r.logger.Info("Control agent already installed.", zap.String("device_id", id))
		return true
	}
	r.logger.Info("Control agent not present; deferring install to session setup.",
		zap.String("device_id", id), zap.String("package", r.agentPackage))
	return true
}

// Register binds a device to a new remote session id and stores the
// registration record, overwriting any prior record for the same device.
// It returns the session id and false when registration could not happen.
func (r *Registry) Register(ctx context.Context, id string) (string, bool) {
	if !r.EnsureAgentInstalled(ctx, id) {
		r.logger.Error("Agent install failed; device not registered.", zap.String("device_id", id))
		return "", false
	}

	sessionID := "box-" + strings.ReplaceAll(id, "-", "_") + "-" + uuid.NewString()[:8]
	r.records[id] = schemas.Registration{
		LocalDeviceID:   id,
		RemoteSessionID: sessionID,
		RegisteredAt:    time.Now(),
		Status:          schemas.StatusRegistered,
	}

	r.logger.Info("Device registered.",
		zap.String("device_id", id), zap.String("session_id", sessionID))
	return sessionID, true
}

// Status returns the device's registration record, or a not-registered
// placeholder when none exists.
func (r *Registry) Status(id string) schemas.Registration {
	if record, ok := r.records[id]; ok {
		return record
	}
	return schemas.Registration{LocalDeviceID: id, Status: schemas.StatusNotRegistered}
}

// SetupForRemoteControl is the composite binding flow: confirm the device
// is bridged and ready, describe it, and register it. Any step's failure
// yields ("", false) with the reason logged; no record is created when
// the device is absent.
func (r *Registry) SetupForRemoteControl(ctx context.Context, id string) (string, bool) {
	r.logger.Info("Setting up device for remote control.", zap.String("device_id", id))

	var found bool
	for _, dev := range r.ConnectedDevices(ctx) {
		if dev.ID == id {
			found = true
			break
		}
	}
	if !found {
		r.logger.Error("Device not found or not connected.", zap.String("device_id", id))
		return "", false
	}

	desc := r.Describe(ctx, id)
	r.logger.Info("Target device described.",
		zap.String("device_id", id),
		zap.String("model", desc.Properties["ro.product.model"]),
		zap.String("screen_size", desc.ScreenSize))

	return r.Register(ctx, id)
}

// ListAvailable merges every connected device's descriptor with its
// registration state.
func (r *Registry) ListAvailable(ctx context.Context) []schemas.AvailableDevice {
	connected := r.ConnectedDevices(ctx)
	available := make([]schemas.AvailableDevice, 0, len(connected))
	for _, dev := range connected {
		available = append(available, schemas.AvailableDevice{
			DeviceDescriptor: r.Describe(ctx, dev.ID),
			Connected:        true,
			Registration:     r.Status(dev.ID),
		})
	}
	return available
}
