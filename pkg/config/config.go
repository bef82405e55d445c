package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Display backends.
const (
	BackendText = "text"
	BackendGUI  = "gui"
	BackendNone = "none"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Generator GeneratorConfig `yaml:"generator"`
	Filter    FilterConfig    `yaml:"filter"`
	Display   DisplayConfig   `yaml:"display"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Queues    QueuesConfig    `yaml:"queues"`
	Kernel    KernelConfig    `yaml:"kernel"`
	Log       LogConfig       `yaml:"log"`
}

// SerialConfig contains serial port configuration.
// An empty port selects the console (stdin/stdout).
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// GeneratorConfig contains the synthetic signal oscillator parameters.
type GeneratorConfig struct {
	Period time.Duration `yaml:"period"`
	Step   int           `yaml:"step"`
	Min    int           `yaml:"min"`
	Max    int           `yaml:"max"`
	Start  int           `yaml:"start"`
}

// FilterConfig contains moving average parameters.
type FilterConfig struct {
	MaxWindow     int `yaml:"max_window"`
	InitialWindow int `yaml:"initial_window"`
}

// DisplayConfig contains the waveform display region and backend.
type DisplayConfig struct {
	Backend string `yaml:"backend"`
	Width   int    `yaml:"width"` // Columns of the strip chart
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
}

// MonitorConfig contains utilization monitor parameters.
type MonitorConfig struct {
	Period time.Duration `yaml:"period"`
}

// QueuesConfig contains the capacities of the inter-task queues.
type QueuesConfig struct {
	RawCapacity      int `yaml:"raw_capacity"`
	FilteredCapacity int `yaml:"filtered_capacity"`
	CommandCapacity  int `yaml:"command_capacity"` // Control byte ring, rounded up to a power of two
}

// KernelConfig contains scheduler parameters.
type KernelConfig struct {
	Tick       time.Duration `yaml:"tick"`
	RunTimeHz  uint64        `yaml:"run_time_hz"` // Frequency of the run-time statistics clock
	StackWords uint32        `yaml:"stack_words"` // Stack budget of every pipeline task
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration matching the reference board.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 19200,
		},
		Generator: GeneratorConfig{
			Period: 100 * time.Millisecond,
			Step:   2,
			Min:    0,
			Max:    15,
			Start:  0,
		},
		Filter: FilterConfig{
			MaxWindow:     50,
			InitialWindow: 1,
		},
		Display: DisplayConfig{
			Backend: BackendText,
			Width:   96, // OLED is 96x16
		},
		Monitor: MonitorConfig{
			Period: time.Second,
		},
		Queues: QueuesConfig{
			RawCapacity:      10,
			FilteredCapacity: 10,
			CommandCapacity:  64,
		},
		Kernel: KernelConfig{
			Tick:       time.Millisecond,
			RunTimeHz:  20000,
			StackWords: 256,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	g := c.Generator
	if g.Max <= g.Min {
		return errors.Errorf("generator: max (%d) must be greater than min (%d)", g.Max, g.Min)
	}
	if g.Step <= 0 {
		return errors.Errorf("generator: step must be positive, got %d", g.Step)
	}
	if g.Start < g.Min || g.Start > g.Max {
		return errors.Errorf("generator: start %d outside [%d, %d]", g.Start, g.Min, g.Max)
	}
	if g.Period <= 0 {
		return errors.New("generator: period must be positive")
	}

	if c.Filter.MaxWindow < 1 {
		return errors.Errorf("filter: max_window must be at least 1, got %d", c.Filter.MaxWindow)
	}
	if c.Filter.InitialWindow < 1 || c.Filter.InitialWindow > c.Filter.MaxWindow {
		return errors.Errorf("filter: initial_window %d outside [1, %d]", c.Filter.InitialWindow, c.Filter.MaxWindow)
	}

	switch c.Display.Backend {
	case BackendText, BackendGUI, BackendNone:
	default:
		return errors.Errorf("display: unknown backend %q", c.Display.Backend)
	}
	if c.Display.Width < 1 {
		return errors.Errorf("display: width must be at least 1, got %d", c.Display.Width)
	}

	if c.Monitor.Period <= 0 {
		return errors.New("monitor: period must be positive")
	}
	if c.Kernel.RunTimeHz == 0 {
		return errors.New("kernel: run_time_hz must be positive")
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	// Min and Start are legitimately zero, only the non-zero fields get defaults.
	if c.Generator.Period == 0 {
		c.Generator.Period = def.Generator.Period
	}
	if c.Generator.Step == 0 {
		c.Generator.Step = def.Generator.Step
	}
	if c.Generator.Max == 0 {
		c.Generator.Max = def.Generator.Max
	}

	if c.Filter.MaxWindow == 0 {
		c.Filter.MaxWindow = def.Filter.MaxWindow
	}
	if c.Filter.InitialWindow == 0 {
		c.Filter.InitialWindow = def.Filter.InitialWindow
	}

	if c.Display.Backend == "" {
		c.Display.Backend = def.Display.Backend
	}
	if c.Display.Width == 0 {
		c.Display.Width = def.Display.Width
	}

	if c.Monitor.Period == 0 {
		c.Monitor.Period = def.Monitor.Period
	}

	if c.Queues.RawCapacity == 0 {
		c.Queues.RawCapacity = def.Queues.RawCapacity
	}
	if c.Queues.FilteredCapacity == 0 {
		c.Queues.FilteredCapacity = def.Queues.FilteredCapacity
	}
	if c.Queues.CommandCapacity == 0 {
		c.Queues.CommandCapacity = def.Queues.CommandCapacity
	}

	if c.Kernel.Tick == 0 {
		c.Kernel.Tick = def.Kernel.Tick
	}
	if c.Kernel.RunTimeHz == 0 {
		c.Kernel.RunTimeHz = def.Kernel.RunTimeHz
	}
	if c.Kernel.StackWords == 0 {
		c.Kernel.StackWords = def.Kernel.StackWords
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
