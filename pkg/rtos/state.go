package rtos

import "github.com/pkg/errors"

// State is the scheduler state of a task.
type State uint8

const (
	Running State = iota
	Ready
	Blocked
	Suspended
	Deleted
	Invalid
)

var stateNames = [...]string{
	Running:   "Running",
	Ready:     "Ready",
	Blocked:   "Blocked",
	Suspended: "Suspended",
	Deleted:   "Deleted",
	Invalid:   "Invalid",
}

// String returns the human readable state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return stateNames[Invalid]
}

// TaskStatus is a point-in-time view of a task.
type TaskStatus struct {
	Name               string
	Number             int
	State              State
	Priority           int
	RunTimeCounter     uint64 // Run-time clock ticks spent holding the CPU
	StackHighWaterMark uint32 // Minimum free stack words ever observed
}

// Tick is one scheduler time unit.
type Tick uint64

var (
	// ErrQueueAlloc is returned when a queue cannot be created.
	ErrQueueAlloc = errors.New("queue allocation failed")
	// ErrSnapshotAlloc is returned when a status snapshot buffer cannot be created.
	ErrSnapshotAlloc = errors.New("snapshot buffer allocation failed")
	// ErrStackOverflow halts the kernel when a task exhausts its stack budget.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrSchedulerRunning is returned when tasks are created after Run.
	ErrSchedulerRunning = errors.New("scheduler already running")
	// ErrHalted is the halt reason when Halt is called without one.
	ErrHalted = errors.New("halted")
)
