package rtos

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// IdleTaskName is the name reported for the time no task holds the CPU.
	IdleTaskName = "IDLE"
	// IdleStackWords is the stack budget reported for the idle task.
	IdleStackWords = 128
	// WordsPerFrame is the stack cost charged for every call frame.
	WordsPerFrame = 8

	defaultTick      = time.Millisecond
	defaultRunTimeHz = 20000
)

// Config contains kernel timing parameters.
type Config struct {
	Tick      time.Duration // Scheduler time unit
	RunTimeHz uint64        // Frequency of the run-time statistics clock
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithStackOverflowHook sets the function called with the offending task name
// before the kernel halts on stack exhaustion.
func WithStackOverflowHook(fn func(taskName string)) Option {
	return func(k *Kernel) {
		k.overflowHook = fn
	}
}

// WithLogger sets the logger used for kernel lifecycle events.
func WithLogger(logger *log.Entry) Option {
	return func(k *Kernel) {
		k.log = logger
	}
}

// Kernel runs a fixed set of statically prioritized tasks on one simulated core.
// Tasks are created before Run and live until the kernel stops.
type Kernel struct {
	cfg           Config
	runTimePeriod time.Duration
	log           *log.Entry
	overflowHook  func(taskName string)

	cpu cpu

	mu      sync.RWMutex
	tasks   []*Task
	started time.Time
	running bool

	done     chan struct{}
	stopOnce sync.Once
	haltErr  error
	wg       sync.WaitGroup
}

// New creates a new kernel. Zero config values select a 1ms tick and a 20kHz
// run-time clock.
func New(cfg Config, opts ...Option) *Kernel {
	if cfg.Tick <= 0 {
		cfg.Tick = defaultTick
	}
	if cfg.RunTimeHz == 0 {
		cfg.RunTimeHz = defaultRunTimeHz
	}

	period := time.Second / time.Duration(cfg.RunTimeHz)
	if period <= 0 {
		period = time.Nanosecond
	}

	k := &Kernel{
		cfg:           cfg,
		runTimePeriod: period,
		log:           log.WithField("Module", "rtos"),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// CreateTask registers a task. Higher priority values win the CPU.
func (k *Kernel) CreateTask(name string, priority int, stackWords uint32, fn TaskFunc) (*Task, error) {
	if fn == nil {
		return nil, errors.Errorf("task %q: nil task function", name)
	}
	if priority < 1 {
		return nil, errors.Errorf("task %q: priority %d is reserved for the idle task", name, priority)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.running {
		return nil, errors.Wrapf(ErrSchedulerRunning, "task %q", name)
	}

	t := &Task{
		k:          k,
		name:       name,
		number:     len(k.tasks) + 1,
		priority:   priority,
		stackWords: stackWords,
		fn:         fn,
		grant:      make(chan struct{}, 1),
		state:      Ready,
	}
	k.tasks = append(k.tasks, t)
	return t, nil
}

// Run starts every task and blocks until ctx is cancelled or the kernel halts.
// Returns the halt reason, or nil on cancellation.
func (k *Kernel) Run(ctx context.Context) error {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return ErrSchedulerRunning
	}
	k.running = true
	k.started = time.Now()
	tasks := append([]*Task(nil), k.tasks...)
	k.mu.Unlock()

	k.log.WithFields(log.Fields{
		"Method": "Run",
		"Action": "Start",
		"Tasks":  len(tasks),
	}).Info("Starting scheduler")

	for _, t := range tasks {
		k.wg.Add(1)
		go k.runTask(t)
	}

	select {
	case <-ctx.Done():
		k.stop(nil)
	case <-k.done:
	}

	k.wg.Wait()

	k.log.WithFields(log.Fields{
		"Method": "Run",
		"Action": "Stop",
	}).Info("Scheduler stopped")

	return k.haltErr
}

// Halt stops all pipeline activity. Every task exits at its next suspension
// point and Run returns err. Only the first call has an effect.
func (k *Kernel) Halt(err error) {
	if err == nil {
		err = ErrHalted
	}
	if k.stop(err) {
		k.log.WithFields(log.Fields{
			"Method": "Halt",
			"Action": "Halt",
		}).WithError(err).Error("Kernel halted")
	}
}

// Done is closed once the kernel stops.
func (k *Kernel) Done() <-chan struct{} {
	return k.done
}

// NumberOfTasks returns the number of tasks including the idle task.
func (k *Kernel) NumberOfTasks() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.tasks) + 1
}

// TickCount returns the number of ticks since Run started.
func (k *Kernel) TickCount() Tick {
	k.mu.RLock()
	started := k.started
	k.mu.RUnlock()
	if started.IsZero() {
		return 0
	}
	return Tick(time.Since(started) / k.cfg.Tick)
}

// Ticks converts a duration to ticks, rounding down but never below one tick.
func (k *Kernel) Ticks(d time.Duration) Tick {
	n := Tick(d / k.cfg.Tick)
	if n == 0 {
		n = 1
	}
	return n
}

// SystemState fills buf with the status of every task followed by the idle
// task and returns the number of entries written together with the total
// run time since start. Nothing is written when buf is too small.
func (k *Kernel) SystemState(buf []TaskStatus) (int, uint64) {
	k.mu.RLock()
	tasks := k.tasks
	started := k.started
	k.mu.RUnlock()

	now := time.Now()
	var total uint64
	if !started.IsZero() {
		total = uint64(now.Sub(started) / k.runTimePeriod)
	}

	if len(buf) < len(tasks)+1 {
		return 0, total
	}

	var busy uint64
	for i, t := range tasks {
		buf[i] = t.status(now)
		busy += buf[i].RunTimeCounter
	}

	idle := TaskStatus{
		Name:               IdleTaskName,
		Number:             len(tasks) + 1,
		State:              Ready,
		Priority:           0,
		StackHighWaterMark: IdleStackWords,
	}
	if total > busy {
		idle.RunTimeCounter = total - busy
	}
	if k.cpu.idle() {
		idle.State = Running
	}
	buf[len(tasks)] = idle

	return len(tasks) + 1, total
}

func (k *Kernel) runTask(t *Task) {
	defer k.wg.Done()
	defer t.exit()

	t.setState(Ready)
	if !k.cpu.acquire(t, k.done) {
		return
	}
	t.run()
	t.checkpoint()
	t.fn(t)
}

func (k *Kernel) stop(err error) bool {
	first := false
	k.stopOnce.Do(func() {
		first = true
		k.haltErr = err
		close(k.done)
	})
	return first
}

func (k *Kernel) stopped() bool {
	select {
	case <-k.done:
		return true
	default:
		return false
	}
}

func (k *Kernel) stackOverflow(t *Task) {
	if k.stopped() {
		return
	}

	k.log.WithFields(log.Fields{
		"Method": "stackOverflow",
		"Action": "Halt",
		"Task":   t.name,
	}).Error("Stack overflow")

	if k.overflowHook != nil {
		k.overflowHook(t.name)
	}
	k.Halt(errors.Wrapf(ErrStackOverflow, "task %q", t.name))
}
