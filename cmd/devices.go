package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/droidpilot/internal/adb"
	"github.com/xkilldash9x/droidpilot/internal/observability"
	"github.com/xkilldash9x/droidpilot/internal/registry"
)

// newDevicesCmd creates the `devices` command group for enumerating and
// binding locally bridged devices.
func newDevicesCmd() *cobra.Command {
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "Inspect and register locally bridged Android devices",
	}
	devicesCmd.AddCommand(newDevicesListCmd())
	devicesCmd.AddCommand(newDevicesSetupCmd())
	return devicesCmd
}

func newDevicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected devices with their registration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			bridge := adb.New(cfg.Bridge, logger)
			devices := registry.New(bridge, cfg.Device, logger)

			available := devices.ListAvailable(cmd.Context())
			if len(available) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no devices found; is the emulator running and bridged?")
				return nil
			}

			out, err := json.MarshalIndent(available, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode device list: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newDevicesSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup <device-id>",
		Short: "Bind a connected device to a remote control session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			bridge := adb.New(cfg.Bridge, logger)
			devices := registry.New(bridge, cfg.Device, logger)

			sessionID, ok := devices.SetupForRemoteControl(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("device %s could not be set up for remote control", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "device %s registered with session id %s\n", args[0], sessionID)
			return nil
		},
	}
}
