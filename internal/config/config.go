// Package config defines the droidpilot configuration surface and its
// viper bindings. Values come from defaults, an optional config.yaml, and
// DROIDPILOT_* environment variables, in ascending precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Remote   RemoteConfig   `mapstructure:"remote" yaml:"remote"`
	Bridge   BridgeConfig   `mapstructure:"bridge" yaml:"bridge"`
	Executor ExecutorConfig `mapstructure:"executor" yaml:"executor"`
	Device   DeviceConfig   `mapstructure:"device" yaml:"device"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// RemoteConfig holds the connection details for the remote
// device-automation service. APIKey is required to construct a client;
// its absence is a configuration error, not a recoverable one.
type RemoteConfig struct {
	APIKey  string        `mapstructure:"api_key" yaml:"-"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// BridgeConfig locates the device-bridge executable (adb) and bounds each
// invocation.
type BridgeConfig struct {
	Path    string        `mapstructure:"path" yaml:"path"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ExecutorConfig tunes task execution pacing. StepDelay is the settle
// pause between scripted device operations inside one task; TaskPause is
// the pause between tasks in a multi-task benchmark run. Both exist only
// to let device animations settle and are not correctness requirements.
type ExecutorConfig struct {
	StepDelay time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	TaskPause time.Duration `mapstructure:"task_pause" yaml:"task_pause"`
}

// DeviceConfig carries device selection and the on-device agent package
// the registry checks for during registration.
type DeviceConfig struct {
	DefaultID    string `mapstructure:"default_id" yaml:"default_id"`
	AgentPackage string `mapstructure:"agent_package" yaml:"agent_package"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "droidpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Remote automation service --
	v.SetDefault("remote.base_url", "https://api.gbox.ai")
	v.SetDefault("remote.timeout", "30s")

	// -- Device bridge --
	v.SetDefault("bridge.path", "adb")
	v.SetDefault("bridge.timeout", "10s")

	// -- Executor pacing --
	v.SetDefault("executor.step_delay", "1s")
	v.SetDefault("executor.task_pause", "1s")

	// -- Device --
	v.SetDefault("device.default_id", "emulator-5554")
	v.SetDefault("device.agent_package", "ai.gbox.agent")
}

// NewDefaultConfig returns a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that has already read its sources.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// The API key is sensitive and comes from the environment, never the
	// config file.
	_ = v.BindEnv("remote.api_key", "DROIDPILOT_REMOTE_API_KEY", "GBOX_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values. The remote API key is
// deliberately not required here; it is enforced when a remote client is
// actually constructed, so mock-only runs need no credentials.
func (c *Config) Validate() error {
	if c.Bridge.Path == "" {
		return fmt.Errorf("bridge.path must not be empty")
	}
	if c.Bridge.Timeout <= 0 {
		return fmt.Errorf("bridge.timeout must be a positive duration")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be a positive duration")
	}
	if c.Executor.StepDelay < 0 {
		return fmt.Errorf("executor.step_delay must not be negative")
	}
	if c.Executor.TaskPause < 0 {
		return fmt.Errorf("executor.task_pause must not be negative")
	}
	return nil
}
