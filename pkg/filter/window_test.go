package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow_Clamps(t *testing.T) {
	tests := []struct {
		name            string
		capacity, n     int
		wantCap, wantLn int
	}{
		{name: "regular", capacity: 50, n: 1, wantCap: 50, wantLn: 1},
		{name: "n above capacity", capacity: 10, n: 20, wantCap: 10, wantLn: 10},
		{name: "n below one", capacity: 10, n: 0, wantCap: 10, wantLn: 1},
		{name: "zero capacity", capacity: 0, n: 5, wantCap: 1, wantLn: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.capacity, tt.n)
			assert.Equal(t, tt.wantCap, w.Cap())
			assert.Equal(t, tt.wantLn, w.Len())
		})
	}
}

func TestWindow_Apply(t *testing.T) {
	w := NewWindow(3, 1)

	assert.False(t, w.Apply(CmdDecrease), "clamped at 1")
	assert.Equal(t, 1, w.Len())

	assert.True(t, w.Apply(CmdIncrease))
	assert.True(t, w.Apply(CmdIncrease))
	assert.False(t, w.Apply(CmdIncrease), "clamped at capacity")
	assert.Equal(t, 3, w.Len())

	for _, b := range []byte("x\r\nU D0") {
		assert.False(t, w.Apply(b), "byte %q must be ignored", b)
	}
	assert.Equal(t, 3, w.Len())

	assert.True(t, w.Apply(CmdDecrease))
	assert.Equal(t, 2, w.Len())
}

func TestWindow_LengthAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := NewWindow(50, 1)

	for i := 0; i < 5000; i++ {
		if rng.Intn(2) == 0 {
			w.Apply(CmdIncrease)
		} else {
			w.Apply(CmdDecrease)
		}
		require.GreaterOrEqual(t, w.Len(), 1)
		require.LessOrEqual(t, w.Len(), 50)
	}
}

func TestWindow_PushShiftsAndDropsOldest(t *testing.T) {
	w := NewWindow(3, 1)

	w.Push(1)
	assert.Equal(t, []int{1, 0, 0}, w.Values())
	w.Push(2)
	w.Push(3)
	assert.Equal(t, []int{3, 2, 1}, w.Values())
	w.Push(4)
	assert.Equal(t, []int{4, 3, 2}, w.Values())
}

func TestWindow_AverageTruncates(t *testing.T) {
	tests := []struct {
		name    string
		samples []int // oldest first
		n       int
		want    int
	}{
		{name: "single", samples: []int{7}, n: 1, want: 7},
		{name: "exact", samples: []int{2, 4, 6}, n: 3, want: 4},
		{name: "truncated", samples: []int{8, 10, 12, 14}, n: 4, want: 11},
		{name: "only first n count", samples: []int{15, 15, 1, 2}, n: 2, want: 1},
		{name: "zero placeholders at start", samples: []int{4, 2}, n: 4, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(50, tt.n)
			for _, s := range tt.samples {
				w.Push(s)
			}
			assert.Equal(t, tt.want, w.Average())
		})
	}
}

func TestWindow_AverageMatchesFloorOfMean(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(50)
		w := NewWindow(50, n)
		samples := make([]int, n)
		for i := range samples {
			samples[i] = rng.Intn(16)
			w.Push(samples[i])
		}

		sum := 0
		for _, s := range samples {
			sum += s
		}
		require.Equal(t, sum/n, w.Average(), "n=%d samples=%v", n, samples)
	}
}

func TestWindow_ShrinkKeepsHistory(t *testing.T) {
	w := NewWindow(5, 4)
	for _, s := range []int{10, 10, 10, 2} {
		w.Push(s)
	}
	assert.Equal(t, 8, w.Average()) // (2+10+10+10)/4

	w.SetLength(1)
	assert.Equal(t, 2, w.Average())

	w.SetLength(4)
	assert.Equal(t, 8, w.Average(), "retained samples come back when N grows")
}
