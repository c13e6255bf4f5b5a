// Package report renders the console report for a query timing run.
package report

import (
	"fmt"
	"io"
	"time"
)

// TimestampLayout is the format used for the start/end banners.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// rule separates the banners from the query lines
const rule = "----------------------------------------"

// Reporter writes the timing report to a single output writer.
type Reporter struct {
	out io.Writer
	now func() time.Time
}

// New creates a reporter writing to out. The now function supplies the
// banner timestamps.
func New(out io.Writer, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{out: out, now: now}
}

// StartBanner prints the run-start timestamp and the separator rule.
func (r *Reporter) StartBanner() {
	fmt.Fprintf(r.out, "Start time: %s\n", r.now().Format(TimestampLayout))
	fmt.Fprintln(r.out, rule)
}

// EndBanner prints the separator rule and the run-end timestamp.
func (r *Reporter) EndBanner() {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "End time: %s\n", r.now().Format(TimestampLayout))
}

// QueryLine prints one query's result line: name, average duration in
// seconds, and its share of the total run time.
func (r *Reporter) QueryLine(name string, average time.Duration, percent float64) {
	fmt.Fprintf(r.out, "%s: %.8fs (%.1f%%)\n", name, average.Seconds(), percent)
}

// SafeDivide returns numerator/denominator, or 0 when the denominator
// is 0.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
