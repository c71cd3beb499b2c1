package common

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// LoggingEnabled controls whether Logf produces output.
var LoggingEnabled = true

// LogOutput is where Logf writes.
var LogOutput io.Writer = os.Stderr

// Logf prints a formatted message if logging is enabled.
func Logf(format string, args ...interface{}) {
	if LoggingEnabled {
		fmt.Fprintf(LogOutput, format, args...)
	}
}

// formatDuration formats a duration with 2 decimal places.
// Returns a string like "1.23 ms" (no padding).
func formatDuration(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)

	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	} else if ms < 0.01 {
		return fmt.Sprintf("%.2f us", ms*1000)
	}
	return fmt.Sprintf("%.2f ms", ms)
}

// LogDuration prints a message with the elapsed time since start.
// The duration is wrapped in parens and right-padded so messages line up.
func LogDuration(start time.Time, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	durStr := fmt.Sprintf("(%s)", formatDuration(time.Since(start)))
	Logf("%-12s%s\n", durStr, msg)
}

// HumanBytes returns a rounded-down size with a binary unit, like "3 KB".
func HumanBytes(n uint64) string {
	suffix := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	i := 0
	for n >= 1024 && i < len(suffix)-1 {
		n /= 1024
		i++
	}
	return strconv.FormatUint(n, 10) + " " + suffix[i]
}
