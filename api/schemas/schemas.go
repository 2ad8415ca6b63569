// Package schemas holds the result and status types shared across the
// droidpilot packages and serialized for CLI output.
package schemas

import "time"

// RegistrationStatus enumerates the lifecycle of a local device's binding
// to the remote automation service.
type RegistrationStatus string

const (
	StatusRegistered    RegistrationStatus = "registered"
	StatusNotRegistered RegistrationStatus = "not_registered"
)

// DeviceKind classifies a bridged device.
type DeviceKind string

const (
	KindEmulator DeviceKind = "emulator"
	KindPhysical DeviceKind = "physical"
	KindUnknown  DeviceKind = "unknown"
)

// ConnectedDevice is one ready row from the device bridge's enumeration.
type ConnectedDevice struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Kind   DeviceKind `json:"kind"`
}

// DeviceDescriptor is the on-demand snapshot of a bridged device. It is
// rebuilt on every query; individual property failures degrade that field
// to "unknown" rather than failing the whole descriptor.
type DeviceDescriptor struct {
	ID         string            `json:"id"`
	Kind       DeviceKind        `json:"kind"`
	Properties map[string]string `json:"properties"`
	ScreenSize string            `json:"screen_size,omitempty"`
}

// Registration binds a local device id to a remote control session.
// Records are overwritten on re-registration, never accumulated.
type Registration struct {
	LocalDeviceID   string             `json:"device_id"`
	RemoteSessionID string             `json:"remote_session_id,omitempty"`
	RegisteredAt    time.Time          `json:"registered_at,omitempty"`
	Status          RegistrationStatus `json:"status"`
}

// AvailableDevice merges a connected device's descriptor with its
// registration state for listing.
type AvailableDevice struct {
	DeviceDescriptor
	Connected    bool         `json:"connected"`
	Registration Registration `json:"registration"`
}

// TaskResult records one task execution attempt. Results are immutable
// once constructed and are appended to the executor's history in start
// order, successful or not.
type TaskResult struct {
	TaskName  string        `json:"task_name"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"execution_time"`
	Error     string        `json:"error_message,omitempty"`
	StartedAt time.Time     `json:"timestamp"`

	// Benchmark-harness enrichment; unset for plain agent runs.
	Goal    string `json:"goal,omitempty"`
	GoalMet *bool  `json:"goal_met,omitempty"`
}

// AgentStatus is the snapshot returned by Agent.Status.
type AgentStatus struct {
	AgentID         string    `json:"agent_id"`
	Status          string    `json:"status"`
	TasksExecuted   int       `json:"tasks_executed"`
	DeviceConnected bool      `json:"device_connected"`
	Timestamp       time.Time `json:"timestamp"`
}

// BenchmarkSummary aggregates a sequential multi-task benchmark run.
type BenchmarkSummary struct {
	TotalTasks      int          `json:"total_tasks"`
	SuccessfulTasks int          `json:"successful_tasks"`
	SuccessRate     float64      `json:"success_rate"`
	Results         []TaskResult `json:"results"`
}
