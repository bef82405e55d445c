package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/filter"
	"github.com/itohio/stripscope/pkg/monitor"
	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/itohio/stripscope/pkg/signal"
	"github.com/itohio/stripscope/pkg/waveform"
)

// Task names as they appear in the status report.
const (
	SensorTask  = "Sensor"
	FilterTask  = "Filter"
	GraficTask  = "Grafic"
	MonitorTask = "Monitor"
)

// Static task priorities. Higher wins.
const (
	SensorPriority  = 3
	FilterPriority  = 2
	GraficPriority  = 2
	MonitorPriority = 1
)

// Peripherals are the external collaborators of the pipeline.
type Peripherals struct {
	// Commands delivers window control bytes. A ring sized from config is
	// created when nil.
	Commands filter.CommandSource
	// Output receives status reports and diagnostics. Discarded when nil.
	Output io.Writer
	// Display shows the waveform. Discarded when nil.
	Display waveform.Display
}

// Pipeline owns the kernel, the queues and the four tasks. It replaces any
// process-wide queue handles: every task gets its queues from here.
type Pipeline struct {
	cfg    *config.Config
	kernel *rtos.Kernel
	log    *log.Entry

	raw      *rtos.Queue[int]
	filtered *rtos.Queue[int]
	commands filter.CommandSource
	output   io.Writer

	generator *signal.Generator
	filter    *filter.Filter
	renderer  *waveform.Renderer
	monitor   *monitor.Monitor
}

// New builds the pipeline. Queue allocation failures are fatal and returned
// wrapping rtos.ErrQueueAlloc.
func New(cfg *config.Config, p Peripherals) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if p.Output == nil {
		p.Output = io.Discard
	}
	if p.Display == nil {
		p.Display = waveform.Discard
	}
	if p.Commands == nil {
		p.Commands = rtos.NewByteRing(cfg.Queues.CommandCapacity)
	}

	pl := &Pipeline{
		cfg:      cfg,
		log:      log.WithField("Module", "pipeline"),
		commands: p.Commands,
		output:   p.Output,
	}

	var err error
	pl.raw, err = rtos.NewQueue[int](cfg.Queues.RawCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "raw sample queue")
	}
	pl.filtered, err = rtos.NewQueue[int](cfg.Queues.FilteredCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "filtered value queue")
	}

	pl.kernel = rtos.New(rtos.Config{
		Tick:      cfg.Kernel.Tick,
		RunTimeHz: cfg.Kernel.RunTimeHz,
	}, rtos.WithStackOverflowHook(pl.stackOverflow))

	pl.generator = signal.New(cfg.Generator, pl.raw)
	pl.filter = filter.New(cfg.Filter, pl.raw, pl.filtered, pl.commands)
	pl.renderer = waveform.New(cfg.Display, pl.filtered, p.Display)
	pl.monitor = monitor.New(cfg.Monitor, pl.kernel, pl.output)

	tasks := []struct {
		name     string
		priority int
		fn       rtos.TaskFunc
	}{
		{SensorTask, SensorPriority, pl.generator.Run},
		{FilterTask, FilterPriority, pl.filter.Run},
		{GraficTask, GraficPriority, pl.renderer.Run},
		{MonitorTask, MonitorPriority, pl.monitor.Run},
	}
	for _, t := range tasks {
		if _, err := pl.kernel.CreateTask(t.name, t.priority, cfg.Kernel.StackWords, t.fn); err != nil {
			return nil, errors.Wrap(err, "failed to create task")
		}
	}

	pl.log.WithFields(log.Fields{
		"Method": "New",
		"Action": "Create",
		"Tasks":  len(tasks),
		"Raw":    pl.raw.Cap(),
		"Filter": pl.filtered.Cap(),
		"Window": pl.filter.Len(),
	}).Debug("Pipeline created")

	return pl, nil
}

// Run runs the pipeline until ctx is cancelled or the kernel halts.
func (pl *Pipeline) Run(ctx context.Context) error {
	pl.log.WithFields(log.Fields{
		"Method": "Run",
		"Action": "Start",
		"Period": pl.cfg.Generator.Period,
		"Width":  pl.cfg.Display.Width,
	}).Info("Starting pipeline")

	err := pl.kernel.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "pipeline halted")
	}
	return nil
}

// Halt stops the pipeline with err.
func (pl *Pipeline) Halt(err error) { pl.kernel.Halt(err) }

// Kernel returns the scheduler.
func (pl *Pipeline) Kernel() *rtos.Kernel { return pl.kernel }

// Commands returns the control byte source the filter drains.
func (pl *Pipeline) Commands() filter.CommandSource { return pl.commands }

func (pl *Pipeline) stackOverflow(taskName string) {
	fmt.Fprintf(pl.output, "\nSTACK OVERFLOW on '%s' task\r\n", taskName)
}
