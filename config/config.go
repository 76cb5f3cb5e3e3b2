// Package config loads the btpower configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// EnvConfigPath names the environment variable consulted when no path is
// given explicitly.
const EnvConfigPath = "BTPOWER_CONFIG"

// Power backends.
const (
	PowerDirect = "direct"
	PowerRFKill = "rfkill"
	PowerSim    = "sim"
)

// HCI backends.
const (
	HCISocket = "socket"
	HCISim    = "sim"
)

// Supervisor backends.
const (
	SupervisorSystemd  = "systemd"
	SupervisorProperty = "property"
	SupervisorSim      = "sim"
)

// Config represents the complete configuration of btpower.
type Config struct {
	Power      PowerConfig      `yaml:"power"`
	HCI        HCIConfig        `yaml:"hci"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Timing     TimingConfig     `yaml:"timing"`
	Sim        SimConfig        `yaml:"sim"`
	Log        LogConfig        `yaml:"log"`
}

// PowerConfig selects and configures the power rail backend.
type PowerConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`      // direct: the control file
	ClassPath string `yaml:"classPath"` // rfkill: the rfkill class directory
}

type HCIConfig struct {
	Backend string `yaml:"backend"`
	Device  int    `yaml:"device"`
}

// SupervisorConfig selects the service manager and names the two daemons.
type SupervisorConfig struct {
	Backend string `yaml:"backend"`
	Attach  string `yaml:"attach"`
	Stack   string `yaml:"stack"`
	Setprop string `yaml:"setprop"`
}

// TimingConfig holds the sequencing delays, in milliseconds.
type TimingConfig struct {
	RetryAttempts   int `yaml:"retryAttempts"`
	RetryIntervalMs int `yaml:"retryIntervalMs"`
	SettleUpMs      int `yaml:"settleUpMs"`
	SettleDownMs    int `yaml:"settleDownMs"`
}

type SimConfig struct {
	Dir            string `yaml:"dir"`
	FirmwareLoadMs int    `yaml:"firmwareLoadMs"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration of the reference board.
func Default() *Config {
	return &Config{
		Power: PowerConfig{
			Backend:   PowerDirect,
			Path:      "/sys/module/board_trout/parameters/bluetooth_power_on",
			ClassPath: "/sys/class/rfkill",
		},
		HCI: HCIConfig{
			Backend: HCISocket,
			Device:  0,
		},
		Supervisor: SupervisorConfig{
			Backend: SupervisorSystemd,
			Attach:  "hciattach",
			Stack:   "hcid",
			Setprop: "setprop",
		},
		Timing: TimingConfig{
			RetryAttempts:   1000,
			RetryIntervalMs: 10,
			SettleUpMs:      5000,
			SettleDownMs:    500,
		},
		Sim: SimConfig{
			Dir:            "/tmp/btpower-sim",
			FirmwareLoadMs: 50,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from path on top of the defaults. An empty
// path falls back to $BTPOWER_CONFIG; if that is empty too the defaults are
// returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks that backends are known and timings are sane.
func (c *Config) Validate() error {
	switch c.Power.Backend {
	case PowerDirect:
		if c.Power.Path == "" {
			return fmt.Errorf("power.path is required for the %q backend", PowerDirect)
		}
	case PowerRFKill:
		if c.Power.ClassPath == "" {
			return fmt.Errorf("power.classPath is required for the %q backend", PowerRFKill)
		}
	case PowerSim:
	default:
		return fmt.Errorf("unknown power.backend %q", c.Power.Backend)
	}

	switch c.HCI.Backend {
	case HCISocket, HCISim:
	default:
		return fmt.Errorf("unknown hci.backend %q", c.HCI.Backend)
	}
	if c.HCI.Device < 0 {
		return fmt.Errorf("hci.device must not be negative, got %d", c.HCI.Device)
	}

	switch c.Supervisor.Backend {
	case SupervisorSystemd, SupervisorProperty, SupervisorSim:
	default:
		return fmt.Errorf("unknown supervisor.backend %q", c.Supervisor.Backend)
	}
	if c.Supervisor.Attach == "" || c.Supervisor.Stack == "" {
		return fmt.Errorf("supervisor.attach and supervisor.stack are required")
	}

	if c.Timing.RetryAttempts < 1 {
		return fmt.Errorf("timing.retryAttempts must be at least 1, got %d", c.Timing.RetryAttempts)
	}
	for name, v := range map[string]int{
		"timing.retryIntervalMs": c.Timing.RetryIntervalMs,
		"timing.settleUpMs":      c.Timing.SettleUpMs,
		"timing.settleDownMs":    c.Timing.SettleDownMs,
		"sim.firmwareLoadMs":     c.Sim.FirmwareLoadMs,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	if c.usesSim() && c.Sim.Dir == "" {
		return fmt.Errorf("sim.dir is required when a sim backend is selected")
	}
	return nil
}

func (c *Config) usesSim() bool {
	return c.Power.Backend == PowerSim || c.HCI.Backend == HCISim || c.Supervisor.Backend == SupervisorSim
}

func (t TimingConfig) RetryInterval() time.Duration {
	return time.Duration(t.RetryIntervalMs) * time.Millisecond
}

func (t TimingConfig) SettleUp() time.Duration {
	return time.Duration(t.SettleUpMs) * time.Millisecond
}

func (t TimingConfig) SettleDown() time.Duration {
	return time.Duration(t.SettleDownMs) * time.Millisecond
}

func (s SimConfig) FirmwareLoad() time.Duration {
	return time.Duration(s.FirmwareLoadMs) * time.Millisecond
}
