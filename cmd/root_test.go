package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh root command with the given args and
// returns its combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)

	rootCmd := NewRootCommand()
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "droidpilot "+Version)
}

func TestRootCommandListsSubcommands(t *testing.T) {
	rootCmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["devices"])
	assert.True(t, names["version"])
}

func TestRunCommandAgainstMockBackend(t *testing.T) {
	out, err := executeCommand(t, "run", "FooBarTask")
	require.NoError(t, err)

	assert.Contains(t, out, `"task_name": "FooBarTask"`)
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, "1 task(s) executed")
}

func TestRunCommandRequiresTaskArgs(t *testing.T) {
	_, err := executeCommand(t, "run")
	assert.Error(t, err)
}

func TestDevicesSetupFailsWithoutBridge(t *testing.T) {
	// No adb binary resolves in the test environment, so the bridge sees
	// no devices and setup must fail cleanly.
	_, err := executeCommand(t, "devices", "setup", "emulator-5554")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emulator-5554")
}
