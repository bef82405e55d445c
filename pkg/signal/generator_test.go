package signal

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func take(o *Oscillator, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = o.Next()
	}
	return out
}

func TestOscillator_Sequences(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GeneratorConfig
		n    int
		want []int
	}{
		{
			name: "step 2 clamps at 15",
			cfg:  config.GeneratorConfig{Step: 2, Min: 0, Max: 15},
			n:    20,
			want: []int{0, 2, 4, 6, 8, 10, 12, 14, 15, 13, 11, 9, 7, 5, 3, 1, 0, 2, 4, 6},
		},
		{
			name: "step 1 reverses at 15",
			cfg:  config.GeneratorConfig{Step: 1, Min: 0, Max: 15},
			n:    19,
			want: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 14, 13, 12},
		},
		{
			name: "custom bounds and start",
			cfg:  config.GeneratorConfig{Step: 3, Min: 2, Max: 9, Start: 5},
			n:    8,
			want: []int{5, 8, 9, 6, 3, 2, 5, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, take(NewOscillator(tt.cfg), tt.n))
		})
	}
}

func TestOscillator_StaysInBounds(t *testing.T) {
	for step := 1; step <= 7; step++ {
		o := NewOscillator(config.GeneratorConfig{Step: step, Min: 0, Max: 15})
		for i := 0; i < 200; i++ {
			v := o.Next()
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, 15)
		}
	}
}

func TestGenerator_Run(t *testing.T) {
	k := rtos.New(rtos.Config{Tick: time.Millisecond})
	q, err := rtos.NewQueue[int](10)
	require.NoError(t, err)

	cfg := config.GeneratorConfig{Period: 2 * time.Millisecond, Step: 2, Min: 0, Max: 15}
	gen := New(cfg, q)
	_, err = k.CreateTask("Sensor", 3, 256, gen.Run)
	require.NoError(t, err)

	got := make(chan int, 16)
	_, err = k.CreateTask("Sink", 2, 256, func(task *rtos.Task) {
		for {
			v := q.Receive(task)
			select {
			case got <- v:
			default:
			}
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result := make(chan error, 1)
	go func() { result <- k.Run(ctx) }()

	want := []int{0, 2, 4, 6, 8, 10, 12, 14, 15, 13}
	for i, w := range want {
		select {
		case v := <-got:
			assert.Equal(t, w, v, "sample %d", i)
		case <-time.After(time.Second):
			t.Fatalf("generator stalled at sample %d", i)
		}
	}

	cancel()
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("kernel did not stop")
	}
}
