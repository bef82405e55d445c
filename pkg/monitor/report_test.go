package monitor

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name    string
		counter uint64
		total   uint64
		want    string
	}{
		{"no run time", 500, 0, "-"},
		{"total below 100", 5, 99, "-"},
		{"idle task", 0, 20000, "<1"},
		{"truncates to zero", 199, 20000, "<1"},
		{"exactly one", 200, 20000, "1"},
		{"truncates", 399, 20000, "1"},
		{"half", 10000, 20000, "50"},
		{"all", 20000, 20000, "100"},
		{"divisor truncates", 150, 199, "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPercent(tt.counter, tt.total))
		})
	}
}

func TestFormatPercent_MatchesFloorOfScaledShare(t *testing.T) {
	for total := uint64(100); total < 5000; total += 37 {
		for counter := uint64(0); counter <= total; counter += 13 {
			want := counter / (total / 100)
			got := FormatPercent(counter, total)
			if want == 0 {
				require.Equal(t, "<1", got)
			} else {
				require.Equal(t, strconv.FormatUint(want, 10), got)
			}
		}
	}
}

func TestFormatReport(t *testing.T) {
	tasks := []rtos.TaskStatus{
		{Name: "Sensor", State: rtos.Blocked, RunTimeCounter: 4000, StackHighWaterMark: 200},
		{Name: "Filter", State: rtos.Ready, RunTimeCounter: 100, StackHighWaterMark: 184},
		{Name: "Monitor", State: rtos.Running, RunTimeCounter: 600, StackHighWaterMark: 96},
		{Name: "IDLE", State: rtos.Ready, RunTimeCounter: 15300, StackHighWaterMark: 128},
	}

	want := "\x1B[2J\x1B[H" +
		"--------- System Monitor ---------\r\n" +
		"Task\tCPU %\tStatus\tStack HighWaterMark\r\n" +
		"Sensor\t20\tBlocked\t200\r\n" +
		"Filter\t<1\tReady\t184\r\n" +
		"Monitor\t3\tRunning\t96\r\n" +
		"IDLE\t76\tReady\t128\r\n"

	assert.Equal(t, want, FormatReport(tasks, 20000))
}

func TestFormatReport_NoRunTime(t *testing.T) {
	tasks := []rtos.TaskStatus{
		{Name: "Sensor", State: rtos.Ready, StackHighWaterMark: 256},
		{Name: "Grafic", State: rtos.Deleted, StackHighWaterMark: 0},
	}

	want := ClearScreen + Title + Header +
		"Sensor\t-\tReady\t256\r\n" +
		"Grafic\t-\tDeleted\t0\r\n"

	assert.Equal(t, want, FormatReport(tasks, 0))
}

type countingWriter struct {
	bytes.Buffer
	writes int
	err    error
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.err != nil {
		return 0, w.err
	}
	return w.Buffer.Write(p)
}

func TestWriteReport(t *testing.T) {
	w := &countingWriter{}
	tasks := []rtos.TaskStatus{{Name: "Sensor", State: rtos.Blocked}}

	require.NoError(t, WriteReport(w, tasks, 1000))
	assert.Equal(t, 1, w.writes, "one report is one write")
	assert.Equal(t, FormatReport(tasks, 1000), w.String())

	w.err = errors.New("uart gone")
	err := WriteReport(w, tasks, 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
}
