// Package profiler times SQL queries against a caller-supplied database
// connection and reports each query's average duration and share of the
// total run time.
//
// The profiler performs no connection management of its own: opening,
// closing, committing, and any transaction handling belong to the
// caller. Queries are read from a directory, one statement per file,
// and each is executed a fixed number of times in strict sequence.
package profiler

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/queryprof/queryprof/internal/debug"
	"github.com/queryprof/queryprof/internal/discover"
	"github.com/queryprof/queryprof/internal/progress"
	"github.com/queryprof/queryprof/internal/report"
)

// Connection is the capability a database client adapter must provide.
// The return value of Execute is treated as opaque and discarded; any
// error aborts the run.
type Connection interface {
	Execute(query string) (any, error)
}

// Observer is notified once after each completed repetition with the
// number of executions done so far and the total for the run. It is
// invoked outside the measured interval, so instrumentation never
// perturbs a timing sample.
type Observer func(done, total int)

// Options configures a timing run. All run state lives here rather
// than in package-level variables, keeping runs reentrant.
type Options struct {
	// Repeat is the number of timed executions per query. Must be
	// positive.
	Repeat int

	// Directory holds the query files, one statement per file. Only
	// files directly inside it are considered.
	Directory string

	// Pattern filters file names within Directory. Empty means every
	// file.
	Pattern string

	// WarmUp runs every query once, untimed, before timing begins.
	WarmUp bool

	// Interleave rotates through the queries once per repetition
	// instead of finishing each query's repetitions before moving on.
	// Useful against a shared database where traffic varies over the
	// run.
	Interleave bool

	// Out receives the report. Defaults to os.Stdout.
	Out io.Writer

	// Warn receives discovery warnings. Defaults to os.Stderr so
	// warnings never mix into the report.
	Warn io.Writer

	// Progress is called after each completed repetition. When nil, a
	// progress bar writing to Out is used.
	Progress Observer

	// Now supplies the banner timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Result is the read-only aggregate for one query after a completed
// run.
type Result struct {
	// Name is the query's file name, verbatim.
	Name string

	// Samples is the number of timed executions that contributed.
	Samples int

	// Total is the summed elapsed time across all samples.
	Total time.Duration

	// Average is Total divided by Samples.
	Average time.Duration

	// Percent is this query's share of the grand total, in [0, 100].
	Percent float64
}

// TimeQueries loads every query file in opts.Directory, executes each
// one opts.Repeat times against conn, and prints the timing report to
// opts.Out. The per-query results are also returned for programmatic
// use.
//
// Any error from Execute aborts the run immediately: no result lines
// are printed and no partial results are returned, since percentages
// from a partially failed run would be misleading.
func TimeQueries(conn Connection, opts Options) ([]Result, error) {
	if conn == nil {
		return nil, fmt.Errorf("connection is required")
	}
	if opts.Repeat <= 0 {
		return nil, fmt.Errorf("repeat must be a positive integer, got %d", opts.Repeat)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	warn := opts.Warn
	if warn == nil {
		warn = os.Stderr
	}

	runners, err := loadRunners(conn, opts.Directory, opts.Pattern, warn)
	if err != nil {
		return nil, err
	}
	debug.LogDiscovery(opts.Directory, len(runners))

	total := len(runners) * opts.Repeat
	observe := opts.Progress
	var bar *progress.Bar
	if observe == nil {
		bar = progress.NewBar(out, total)
		observe = bar.Step
	}

	rep := report.New(out, opts.Now)
	rep.StartBanner()

	runStart := time.Now()
	if err := run(runners, opts, observe); err != nil {
		return nil, err
	}
	if bar != nil {
		bar.Finish()
	}
	debug.LogTiming("timing run", time.Since(runStart))

	results := collectResults(runners)
	for _, res := range results {
		debug.LogQueryStats(res.Name, res.Samples, res.Total)
		rep.QueryLine(res.Name, res.Average, res.Percent)
	}
	rep.EndBanner()

	return results, nil
}

// loadRunners discovers the query files and reads each one's text into
// a runner. Every file is read exactly once, before timing begins.
func loadRunners(conn Connection, dir, pattern string, warn io.Writer) ([]*Runner, error) {
	files, err := discover.QueryFiles(dir, pattern, warn)
	if err != nil {
		return nil, err
	}

	runners := make([]*Runner, 0, len(files))
	for _, f := range files {
		text, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading query file %q: %w", f.Path, err)
		}
		debug.LogQuery(f.Name, string(text))
		runners = append(runners, NewRunner(conn, f.Name, string(text)))
	}
	return runners, nil
}

// run executes all repetitions in the configured order, reporting each
// completed repetition to observe.
func run(runners []*Runner, opts Options, observe Observer) error {
	if opts.WarmUp {
		for _, r := range runners {
			if err := r.RunUntimed(); err != nil {
				return err
			}
		}
	}

	total := len(runners) * opts.Repeat
	done := 0
	step := func(r *Runner) error {
		if err := r.Run(); err != nil {
			return err
		}
		done++
		observe(done, total)
		return nil
	}

	if opts.Interleave {
		for i := 0; i < opts.Repeat; i++ {
			for _, r := range runners {
				if err := step(r); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, r := range runners {
		for i := 0; i < opts.Repeat; i++ {
			if err := step(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectResults derives the read-only per-query aggregates. The
// percentage denominator is the sum of every query's total time, so
// the percentages sum to 100 up to floating-point rounding.
func collectResults(runners []*Runner) []Result {
	var grandTotal time.Duration
	for _, r := range runners {
		grandTotal += r.TotalTime()
	}

	results := make([]Result, 0, len(runners))
	for _, r := range runners {
		results = append(results, Result{
			Name:    r.Name(),
			Samples: r.Samples(),
			Total:   r.TotalTime(),
			Average: r.AverageTime(),
			Percent: report.SafeDivide(float64(r.TotalTime()), float64(grandTotal)) * 100,
		})
	}
	return results
}
