package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 19200, cfg.Serial.BaudRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Generator.Period)
	assert.Equal(t, 2, cfg.Generator.Step)
	assert.Equal(t, 0, cfg.Generator.Min)
	assert.Equal(t, 15, cfg.Generator.Max)
	assert.Equal(t, 50, cfg.Filter.MaxWindow)
	assert.Equal(t, 1, cfg.Filter.InitialWindow)
	assert.Equal(t, 96, cfg.Display.Width)
	assert.Equal(t, BackendText, cfg.Display.Backend)
	assert.Equal(t, time.Second, cfg.Monitor.Period)
	assert.Equal(t, 10, cfg.Queues.RawCapacity)
	assert.Equal(t, 10, cfg.Queues.FilteredCapacity)
	assert.Equal(t, uint64(20000), cfg.Kernel.RunTimeHz)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 19200, cfg.Serial.BaudRate)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200

generator:
  period: 50ms
  step: 1
  max: 15

filter:
  max_window: 20
  initial_window: 4

display:
  backend: none
  width: 64

monitor:
  period: 2s

queues:
  raw_capacity: 4
  filtered_capacity: 5

kernel:
  run_time_hz: 10000
  stack_words: 512
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Generator.Period)
	assert.Equal(t, 1, cfg.Generator.Step)
	assert.Equal(t, 20, cfg.Filter.MaxWindow)
	assert.Equal(t, 4, cfg.Filter.InitialWindow)
	assert.Equal(t, BackendNone, cfg.Display.Backend)
	assert.Equal(t, 64, cfg.Display.Width)
	assert.Equal(t, 2*time.Second, cfg.Monitor.Period)
	assert.Equal(t, 4, cfg.Queues.RawCapacity)
	assert.Equal(t, 5, cfg.Queues.FilteredCapacity)
	assert.Equal(t, 64, cfg.Queues.CommandCapacity) // default
	assert.Equal(t, uint64(10000), cfg.Kernel.RunTimeHz)
	assert.Equal(t, uint32(512), cfg.Kernel.StackWords)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 19200, cfg.Serial.BaudRate)                 // default
	assert.Equal(t, 100*time.Millisecond, cfg.Generator.Period) // default
	assert.Equal(t, 50, cfg.Filter.MaxWindow)                   // default
	assert.Equal(t, uint32(256), cfg.Kernel.StackWords)         // default
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("filter:\n  max_window: 10\n  initial_window: 11\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "max not above min", mutate: func(c *Config) { c.Generator.Max = c.Generator.Min }, wantErr: true},
		{name: "negative step", mutate: func(c *Config) { c.Generator.Step = -1 }, wantErr: true},
		{name: "start out of range", mutate: func(c *Config) { c.Generator.Start = 16 }, wantErr: true},
		{name: "zero max window", mutate: func(c *Config) { c.Filter.MaxWindow = 0 }, wantErr: true},
		{name: "initial window zero", mutate: func(c *Config) { c.Filter.InitialWindow = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Display.Backend = "lcd" }, wantErr: true},
		{name: "gui backend", mutate: func(c *Config) { c.Display.Backend = BackendGUI }},
		{name: "zero monitor period", mutate: func(c *Config) { c.Monitor.Period = 0 }, wantErr: true},
		{name: "zero run time clock", mutate: func(c *Config) { c.Kernel.RunTimeHz = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Filter.InitialWindow = 8

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 8, loaded.Filter.InitialWindow)
	assert.Equal(t, cfg.Generator, loaded.Generator)
}
