package filter

// Control bytes accepted by the filter.
const (
	CmdIncrease = 'u'
	CmdDecrease = 'd'
)

// Window is a moving average over the N most recent samples. It retains up
// to capacity samples so that growing N again brings back real history.
// Slots that never received a sample are zero.
type Window struct {
	values []int // values[0] is the most recent sample
	n      int
}

// NewWindow creates a window retaining capacity samples and averaging the
// first n of them. Both are clamped to at least 1 and n to capacity.
func NewWindow(capacity, n int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	w := &Window{values: make([]int, capacity)}
	w.SetLength(n)
	return w
}

// Len returns the current averaging length N.
func (w *Window) Len() int { return w.n }

// Cap returns the number of retained samples.
func (w *Window) Cap() int { return len(w.values) }

// SetLength sets N, clamped to [1, Cap()].
func (w *Window) SetLength(n int) {
	switch {
	case n < 1:
		n = 1
	case n > len(w.values):
		n = len(w.values)
	}
	w.n = n
}

// Apply executes a control byte. Unknown bytes are ignored.
// Returns true if N changed.
func (w *Window) Apply(cmd byte) bool {
	prev := w.n
	switch cmd {
	case CmdIncrease:
		w.SetLength(w.n + 1)
	case CmdDecrease:
		w.SetLength(w.n - 1)
	}
	return w.n != prev
}

// Push inserts v as the most recent sample, dropping the oldest retained one.
func (w *Window) Push(v int) {
	copy(w.values[1:], w.values[:len(w.values)-1])
	w.values[0] = v
}

// Average returns the sum of the first N samples divided by N, truncated.
func (w *Window) Average() int {
	sum := 0
	for _, v := range w.values[:w.n] {
		sum += v
	}
	return sum / w.n
}

// Values returns the retained samples, most recent first.
func (w *Window) Values() []int {
	out := make([]int, len(w.values))
	copy(out, w.values)
	return out
}
