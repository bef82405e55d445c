package filter

import (
	log "github.com/sirupsen/logrus"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/rtos"
)

// CommandSource is a non-blocking source of control bytes.
type CommandSource interface {
	Pop() (byte, bool)
}

// Sources merges command sources. Pop drains them in order, so each source
// keeps its own arrival order and a single producer.
type Sources []CommandSource

// Pop returns the next byte of the first non-empty source.
func (s Sources) Pop() (byte, bool) {
	for _, src := range s {
		if b, ok := src.Pop(); ok {
			return b, true
		}
	}
	return 0, false
}

// Filter is the adaptive moving average task. The window is owned by the
// task goroutine and never shared.
type Filter struct {
	window   *Window
	in       *rtos.Queue[int]
	out      *rtos.Queue[int]
	commands CommandSource
	log      *log.Entry
}

// New creates a filter reading raw samples from in and writing averages to out.
func New(cfg config.FilterConfig, in, out *rtos.Queue[int], commands CommandSource) *Filter {
	return &Filter{
		window:   NewWindow(cfg.MaxWindow, cfg.InitialWindow),
		in:       in,
		out:      out,
		commands: commands,
		log:      log.WithField("Module", "filter"),
	}
}

// Step processes one raw sample: drains pending commands, pushes the sample
// and returns the average over the current window length.
func (f *Filter) Step(sample int) int {
	f.drainCommands()
	f.window.Push(sample)
	return f.window.Average()
}

// Len returns the current window length.
func (f *Filter) Len() int { return f.window.Len() }

// Run is the task entry point.
func (f *Filter) Run(t *rtos.Task) {
	for {
		sample := f.in.Receive(t)
		f.out.Send(t, f.Step(sample))
	}
}

func (f *Filter) drainCommands() {
	if f.commands == nil {
		return
	}
	for {
		cmd, ok := f.commands.Pop()
		if !ok {
			return
		}
		if f.window.Apply(cmd) {
			f.log.WithFields(log.Fields{
				"Method": "drainCommands",
				"Window": f.window.Len(),
			}).Debug("Window length changed")
		}
	}
}
