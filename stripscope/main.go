package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/device"
	"github.com/itohio/stripscope/pkg/filter"
	"github.com/itohio/stripscope/pkg/pipeline"
	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/itohio/stripscope/pkg/scope"
	"github.com/itohio/stripscope/pkg/waveform"
)

// reportLines is the height reserved for the status report when the report
// and the text display share a terminal.
const reportLines = 10

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		displayFlag  = flag.String("display", "", "Display backend override: text, gui or none")
		windowFlag   = flag.Int("window", -1, "Initial filter window length (overrides config)")
		logLevelFlag = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
		listFlag     = flag.Bool("list", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		listPorts()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *displayFlag != "" {
		cfg.Display.Backend = *displayFlag
	}
	if *windowFlag >= 0 {
		cfg.Filter.InitialWindow = *windowFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	setupLogging(cfg.Log)

	commands := rtos.NewByteRing(cfg.Queues.CommandCapacity)
	dev := newDevice(cfg, commands)

	var (
		source  filter.CommandSource = commands
		display waveform.Display
		chart   *scope.StripChart
		buttons *rtos.ByteRing
	)
	switch cfg.Display.Backend {
	case config.BackendGUI:
		chart = scope.NewStripChart(cfg.Display.Width+cfg.Display.X, waveform.Rows+cfg.Display.Y)
		display = chart
		// Buttons get their own ring, each ring has one producer.
		buttons = rtos.NewByteRing(cfg.Queues.CommandCapacity)
		source = filter.Sources{commands, buttons}
	case config.BackendText:
		display = scope.NewText(os.Stdout, textTop(cfg))
	}

	p, err := pipeline.New(cfg, pipeline.Peripherals{
		Commands: source,
		Output:   dev,
		Display:  display,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create pipeline")
	}

	if err := dev.Connect(); err != nil {
		log.WithError(err).Fatal("Failed to connect")
	}
	defer dev.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if chart != nil {
		err = runGUI(ctx, &appState{
			cfg:        cfg,
			configPath: *configFlag,
			device:     dev,
			pipeline:   p,
			chart:      chart,
			buttons:    buttons,
		})
	} else {
		err = p.Run(ctx)
	}
	if err != nil {
		dev.Close()
		log.WithError(err).Fatal("Pipeline stopped")
	}
}

// newDevice opens the configured serial port, or the console when no port is
// configured.
func newDevice(cfg *config.Config, commands *rtos.ByteRing) device.Device {
	if cfg.Serial.Port == "" {
		log.WithFields(log.Fields{
			"Method": "newDevice",
			"Action": "Console",
		}).Info("No serial port configured, using console")
		return device.NewConsole(os.Stdin, os.Stdout, commands)
	}
	return device.NewSerial(cfg.Serial, commands)
}

// textTop keeps the text display below the status report when both are
// written to the console.
func textTop(cfg *config.Config) int {
	if cfg.Serial.Port == "" {
		return reportLines
	}
	return 0
}

func setupLogging(cfg config.LogConfig) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithError(err).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func listPorts() {
	ports, err := device.Ports()
	if err != nil {
		log.WithError(err).Fatal("Failed to list serial ports")
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return
	}
	for _, port := range ports {
		if port.Description != "" && port.Description != port.Name {
			fmt.Printf("%s\t%s\n", port.Name, port.Description)
		} else {
			fmt.Println(port.Name)
		}
	}
}
