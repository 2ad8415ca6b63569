package adb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/config"
)

// stubBridge builds a bridge whose subprocess boundary is replaced by a
// canned command-to-output table.
func stubBridge(t *testing.T, outputs map[string]string, errs map[string]error) *Bridge {
	t.Helper()
	b := New(config.BridgeConfig{Path: "adb", Timeout: time.Second}, zap.NewNop())
	b.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		key := strings.Join(args, " ")
		if err, ok := errs[key]; ok {
			return nil, err
		}
		out, ok := outputs[key]
		if !ok {
			return nil, errors.New("exit status 1")
		}
		return []byte(out), nil
	}
	return b
}

const devicesOutput = "List of devices attached\n" +
	"emulator-5554\tdevice\n" +
	"R58M123ABC\tdevice\n" +
	"emulator-5556\toffline\n"

func TestDevicesFiltersToReadyRows(t *testing.T) {
	b := stubBridge(t, map[string]string{
		"devices": devicesOutput,
		"-s R58M123ABC shell getprop ro.product.model": "SM-G991B",
	}, nil)

	devices := b.Devices(context.Background())
	require.Len(t, devices, 2, "offline row must be excluded")

	assert.Equal(t, "emulator-5554", devices[0].ID)
	assert.Equal(t, schemas.KindEmulator, devices[0].Kind)
	assert.Equal(t, "R58M123ABC", devices[1].ID)
	assert.Equal(t, schemas.KindPhysical, devices[1].Kind)
}

func TestDevicesBridgeFailureYieldsEmptyList(t *testing.T) {
	b := stubBridge(t, nil, map[string]error{"devices": errors.New("adb server not running")})
	assert.Empty(t, b.Devices(context.Background()))
}

func TestDevicesSkipsHeaderOnlyOutput(t *testing.T) {
	b := stubBridge(t, map[string]string{"devices": "List of devices attached\n"}, nil)
	assert.Empty(t, b.Devices(context.Background()))
}

func TestKindClassification(t *testing.T) {
	b := stubBridge(t, map[string]string{
		"-s abc shell getprop ro.product.model":    "sdk_gphone64_x86_64",
		"-s def shell getprop ro.product.model":    "Pixel 7",
		"-s ghi shell getprop ro.product.model":    "Android Emulator",
	}, map[string]error{
		"-s broken shell getprop ro.product.model": errors.New("device offline"),
	})
	ctx := context.Background()

	assert.Equal(t, schemas.KindEmulator, b.Kind(ctx, "emulator-5554"), "id prefix wins without a query")
	assert.Equal(t, schemas.KindEmulator, b.Kind(ctx, "abc"))
	assert.Equal(t, schemas.KindPhysical, b.Kind(ctx, "def"))
	assert.Equal(t, schemas.KindEmulator, b.Kind(ctx, "ghi"))
	assert.Equal(t, schemas.KindUnknown, b.Kind(ctx, "broken"))
}

func TestScreenSizeParsesPhysicalSize(t *testing.T) {
	b := stubBridge(t, map[string]string{
		"-s emulator-5554 shell wm size": "Physical size: 1080x2400",
	}, nil)

	size, err := b.ScreenSize(context.Background(), "emulator-5554")
	require.NoError(t, err)
	assert.Equal(t, "1080x2400", size)
}

func TestScreenSizeRejectsUnexpectedOutput(t *testing.T) {
	b := stubBridge(t, map[string]string{
		"-s emulator-5554 shell wm size": "Override size: reset",
	}, nil)

	_, err := b.ScreenSize(context.Background(), "emulator-5554")
	assert.Error(t, err)
}

func TestHasPackage(t *testing.T) {
	b := stubBridge(t, map[string]string{
		"-s emulator-5554 shell pm list packages ai.gbox.agent": "package:ai.gbox.agent",
		"-s emulator-5556 shell pm list packages ai.gbox.agent": "",
	}, nil)
	ctx := context.Background()

	assert.True(t, b.HasPackage(ctx, "emulator-5554", "ai.gbox.agent"))
	assert.False(t, b.HasPackage(ctx, "emulator-5556", "ai.gbox.agent"))
}
