package signal

import (
	"time"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/rtos"
)

// Oscillator is a bounded triangle wave. The value moves by Step in the
// current direction; reaching either bound clamps it there and reverses.
type Oscillator struct {
	Min, Max int
	Step     int

	value int
	dir   int
}

// NewOscillator creates an oscillator starting at start and moving up.
func NewOscillator(cfg config.GeneratorConfig) *Oscillator {
	return &Oscillator{
		Min:   cfg.Min,
		Max:   cfg.Max,
		Step:  cfg.Step,
		value: cfg.Start,
		dir:   1,
	}
}

// Next returns the current sample and advances the oscillator.
func (o *Oscillator) Next() int {
	v := o.value

	o.value += o.Step * o.dir
	if o.value >= o.Max {
		o.value = o.Max
		o.dir = -1
	} else if o.value <= o.Min {
		o.value = o.Min
		o.dir = 1
	}

	return v
}

// Generator is the periodic sample source task.
type Generator struct {
	osc    *Oscillator
	period time.Duration
	out    *rtos.Queue[int]
}

// New creates a generator producing one sample per period into out.
func New(cfg config.GeneratorConfig, out *rtos.Queue[int]) *Generator {
	return &Generator{
		osc:    NewOscillator(cfg),
		period: cfg.Period,
		out:    out,
	}
}

// Run is the task entry point. Each cycle waits for the next absolute
// deadline and enqueues one sample, blocking while the queue is full.
func (g *Generator) Run(t *rtos.Task) {
	increment := t.Kernel().Ticks(g.period)
	wake := t.Kernel().TickCount()

	for {
		t.DelayUntil(&wake, increment)
		g.out.Send(t, g.osc.Next())
	}
}
