package cmd

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/api/schemas"
	"github.com/xkilldash9x/droidpilot/internal/adb"
	"github.com/xkilldash9x/droidpilot/internal/agent"
	"github.com/xkilldash9x/droidpilot/internal/device"
	"github.com/xkilldash9x/droidpilot/internal/executor"
	"github.com/xkilldash9x/droidpilot/internal/observability"
	"github.com/xkilldash9x/droidpilot/internal/registry"
	"github.com/xkilldash9x/droidpilot/internal/remote"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newRunCmd creates the `run` command: execute named tasks against the
// mock backend or a remote-controlled device.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run named benchmark tasks against a device",
		Long: `Run executes the named tasks in order and prints each structured result.
Without --remote the tasks execute against the in-memory mock backend,
which needs no hardware or credentials.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			useRemote, _ := cmd.Flags().GetBool("remote")
			deviceID, _ := cmd.Flags().GetString("device")
			if deviceID == "" {
				deviceID = cfg.Device.DefaultID
			}

			var controller device.Controller
			if useRemote {
				remoteController, err := buildRemoteController(cmd, deviceID, logger)
				if err != nil {
					return err
				}
				defer func() {
					if err := remoteController.Close(ctx); err != nil {
						logger.Error("Failed to release device session.", zap.Error(err))
					}
				}()
				controller = remoteController
			}

			a := agent.New(controller, cfg.Executor, logger)

			results := make([]schemas.TaskResult, 0, len(args))
			for _, taskName := range args {
				results = append(results, a.Run(ctx, taskName, executor.Params{}))
			}

			out, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			status := a.Status(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "agent %s: %d task(s) executed, device connected: %t\n",
				status.AgentID, status.TasksExecuted, status.DeviceConnected)
			return nil
		},
	}

	runCmd.Flags().String("device", "", "local device id to control (default from config)")
	runCmd.Flags().Bool("remote", false, "bind the device to a remote control session instead of the mock backend")
	return runCmd
}

// buildRemoteController registers the device and binds the matching
// controller variant: locally bridged emulators register through the
// service, everything else binds to a cloud-hosted device.
func buildRemoteController(cmd *cobra.Command, deviceID string, logger *zap.Logger) (device.Remote, error) {
	ctx := cmd.Context()

	client, err := remote.NewClient(cfg.Remote, logger)
	if err != nil {
		return nil, err
	}

	bridge := adb.New(cfg.Bridge, logger)
	devices := registry.New(bridge, cfg.Device, logger)
	if _, ok := devices.SetupForRemoteControl(ctx, deviceID); !ok {
		return nil, fmt.Errorf("device %s could not be set up for remote control", deviceID)
	}

	if strings.HasPrefix(deviceID, "emulator-") {
		return device.NewLocalController(ctx, client, deviceID, logger)
	}
	return device.NewCloudController(ctx, client, deviceID, logger)
}
