package monitor

import (
	"io"
	"time"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Scheduler is the introspection surface the monitor reads.
type Scheduler interface {
	NumberOfTasks() int
	SystemState(buf []rtos.TaskStatus) (int, uint64)
}

var _ Scheduler = (*rtos.Kernel)(nil)

// Monitor periodically reports per-task CPU utilization.
type Monitor struct {
	sched  Scheduler
	out    io.Writer
	period time.Duration
	log    *log.Entry

	snapshot []rtos.TaskStatus
}

// New creates a monitor writing reports to out.
func New(cfg config.MonitorConfig, sched Scheduler, out io.Writer) *Monitor {
	return &Monitor{
		sched:  sched,
		out:    out,
		period: cfg.Period,
		log:    log.WithField("Module", "monitor"),
	}
}

// Allocate sizes the snapshot buffer for the current task set.
func (m *Monitor) Allocate() error {
	n := m.sched.NumberOfTasks()
	if n <= 0 {
		return errors.Wrapf(rtos.ErrSnapshotAlloc, "%d tasks", n)
	}
	m.snapshot = make([]rtos.TaskStatus, n)
	return nil
}

// Report takes one snapshot and writes it.
func (m *Monitor) Report() error {
	n, total := m.sched.SystemState(m.snapshot)
	return WriteReport(m.out, m.snapshot[:n], total)
}

// Run is the task entry point. A failed snapshot allocation halts the kernel.
func (m *Monitor) Run(t *rtos.Task) {
	k := t.Kernel()
	if err := m.Allocate(); err != nil {
		k.Halt(err)
		return
	}

	wake := k.TickCount()
	period := k.Ticks(m.period)
	for {
		t.DelayUntil(&wake, period)

		if err := m.Report(); err != nil {
			m.log.WithFields(log.Fields{
				"Method": "Run",
				"Action": "Report",
			}).WithError(err).Warn("Report dropped")
		}
	}
}
