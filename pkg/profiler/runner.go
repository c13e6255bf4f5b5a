package profiler

import (
	"fmt"
	"time"
)

// Runner accumulates timing samples for a single query. It is not safe
// for concurrent use; the profiler runs everything sequentially by
// design, since concurrent executions on one connection would confound
// the timing signal.
type Runner struct {
	conn    Connection
	name    string
	query   string
	samples int
	total   time.Duration
}

// NewRunner creates a runner for one query. The name is used verbatim
// as the report label.
func NewRunner(conn Connection, name, query string) *Runner {
	return &Runner{conn: conn, name: name, query: query}
}

// Name returns the runner's display name.
func (r *Runner) Name() string {
	return r.name
}

// Query returns the SQL text the runner executes.
func (r *Runner) Query() string {
	return r.query
}

// Samples returns the number of timed executions recorded so far.
func (r *Runner) Samples() int {
	return r.samples
}

// TotalTime returns the accumulated elapsed time across all timed
// executions.
func (r *Runner) TotalTime() time.Duration {
	return r.total
}

// Run executes the query once and records the elapsed wall-clock time.
// Only the Execute call itself sits inside the measured interval.
func (r *Runner) Run() error {
	start := time.Now()
	_, err := r.conn.Execute(r.query)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("executing query %q: %w", r.name, err)
	}

	r.samples++
	r.total += elapsed
	return nil
}

// RunUntimed executes the query without recording a sample. Used for
// the optional warm-up pass, where the first execution may pay one-off
// setup costs that would skew the averages.
func (r *Runner) RunUntimed() error {
	if _, err := r.conn.Execute(r.query); err != nil {
		return fmt.Errorf("executing query %q: %w", r.name, err)
	}
	return nil
}

// AverageTime returns the mean elapsed time per timed execution, or 0
// if the query has not been run.
func (r *Runner) AverageTime() time.Duration {
	if r.samples == 0 {
		return 0
	}
	return r.total / time.Duration(r.samples)
}
