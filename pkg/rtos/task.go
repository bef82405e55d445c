package rtos

import (
	"runtime"
	"sync"
	"time"
)

// TaskFunc is a task entry point. It runs on its own goroutine and is expected
// to loop for the lifetime of the kernel.
type TaskFunc func(t *Task)

// Task is a kernel-scheduled unit of work.
type Task struct {
	k          *Kernel
	name       string
	number     int
	priority   int
	stackWords uint32
	fn         TaskFunc
	grant      chan struct{}

	mu       sync.Mutex
	state    State
	runTime  time.Duration
	runStart time.Time
	maxUsed  uint32 // Deepest observed stack usage in words
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Priority returns the static task priority.
func (t *Task) Priority() int { return t.priority }

// Kernel returns the kernel the task belongs to.
func (t *Task) Kernel() *Kernel { return t.k }

// DelayUntil blocks until the absolute tick previousWake+increment and updates
// previousWake to it. The deadline is computed from the previous deadline, not
// from the current time, so periodic tasks do not accumulate drift. If the
// deadline already passed the call returns immediately.
func (t *Task) DelayUntil(previousWake *Tick, increment Tick) {
	t.exitIfStopped()

	*previousWake += increment
	deadline := t.k.started.Add(time.Duration(*previousWake) * t.k.cfg.Tick)
	wait := time.Until(deadline)
	if wait <= 0 {
		t.checkpoint()
		return
	}

	t.block()
	timer := time.NewTimer(wait)
	select {
	case <-timer.C:
	case <-t.k.done:
		timer.Stop()
		runtime.Goexit()
	}
	t.unblock()
}

// block gives up the CPU before a wait.
func (t *Task) block() {
	t.mu.Lock()
	t.stopRunLocked(time.Now())
	t.state = Blocked
	t.mu.Unlock()

	t.k.cpu.release(t)
}

// unblock waits for the CPU after a wait completes.
func (t *Task) unblock() {
	t.setState(Ready)
	if !t.k.cpu.acquire(t, t.k.done) {
		runtime.Goexit()
	}
	t.run()
	t.checkpoint()
}

func (t *Task) run() {
	t.mu.Lock()
	t.state = Running
	t.runStart = time.Now()
	t.mu.Unlock()
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Task) stopRunLocked(now time.Time) {
	if t.state == Running && !t.runStart.IsZero() {
		t.runTime += now.Sub(t.runStart)
		t.runStart = time.Time{}
	}
}

// exit runs when the task goroutine ends, normally or via runtime.Goexit.
func (t *Task) exit() {
	t.mu.Lock()
	t.stopRunLocked(time.Now())
	t.state = Deleted
	t.mu.Unlock()

	t.k.cpu.release(t)
}

func (t *Task) exitIfStopped() {
	if t.k.stopped() {
		runtime.Goexit()
	}
}

// checkpoint records the current call depth against the stack budget. It is
// called at every suspension point.
func (t *Task) checkpoint() {
	var pcs [64]uintptr
	depth := runtime.Callers(2, pcs[:])
	used := uint32(depth) * WordsPerFrame

	t.mu.Lock()
	if used > t.maxUsed {
		t.maxUsed = used
	}
	overflow := t.maxUsed >= t.stackWords
	t.mu.Unlock()

	if overflow {
		t.k.stackOverflow(t)
		runtime.Goexit()
	}
}

func (t *Task) status(now time.Time) TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	runTime := t.runTime
	if t.state == Running && !t.runStart.IsZero() {
		runTime += now.Sub(t.runStart)
	}

	var watermark uint32
	if t.stackWords > t.maxUsed {
		watermark = t.stackWords - t.maxUsed
	}

	return TaskStatus{
		Name:               t.name,
		Number:             t.number,
		State:              t.state,
		Priority:           t.priority,
		RunTimeCounter:     uint64(runTime / t.k.runTimePeriod),
		StackHighWaterMark: watermark,
	}
}
