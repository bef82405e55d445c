package monitor

import (
	"io"
	"strconv"
	"strings"

	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/pkg/errors"
)

const (
	// ClearScreen is the ANSI sequence that clears the terminal and homes the cursor.
	ClearScreen = "\x1B[2J\x1B[H"
	// Title is the first report line.
	Title = "--------- System Monitor ---------\r\n"
	// Header names the report columns.
	Header = "Task\tCPU %\tStatus\tStack HighWaterMark\r\n"

	// LessThanOne is reported for tasks whose share truncates to zero.
	LessThanOne = "<1"
	// NoRunTime is reported for every task before any run time has elapsed.
	NoRunTime = "-"
)

// FormatPercent returns the CPU share of counter against total run time.
func FormatPercent(counter, total uint64) string {
	divisor := total / 100
	if divisor == 0 {
		return NoRunTime
	}
	pct := counter / divisor
	if pct == 0 {
		return LessThanOne
	}
	return strconv.FormatUint(pct, 10)
}

// FormatReport renders a full status report.
func FormatReport(tasks []rtos.TaskStatus, total uint64) string {
	var sb strings.Builder
	sb.WriteString(ClearScreen)
	sb.WriteString(Title)
	sb.WriteString(Header)

	for _, ts := range tasks {
		sb.WriteString(ts.Name)
		sb.WriteByte('\t')
		sb.WriteString(FormatPercent(ts.RunTimeCounter, total))
		sb.WriteByte('\t')
		sb.WriteString(ts.State.String())
		sb.WriteByte('\t')
		sb.WriteString(strconv.FormatUint(uint64(ts.StackHighWaterMark), 10))
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// WriteReport writes the report to w in a single Write.
func WriteReport(w io.Writer, tasks []rtos.TaskStatus, total uint64) error {
	if _, err := io.WriteString(w, FormatReport(tasks, total)); err != nil {
		return errors.Wrap(err, "failed to write status report")
	}
	return nil
}
