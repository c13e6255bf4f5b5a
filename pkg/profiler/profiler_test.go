//go:build unit

package profiler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Connection whose Execute sleeps for a
// per-query duration, so timing ratios between queries are predictable.
type fakeConn struct {
	delays map[string]time.Duration
	calls  int
	failOn int // 1-based call index that returns an error, 0 for never
	log    []string
}

func (c *fakeConn) Execute(query string) (any, error) {
	c.calls++
	if c.failOn != 0 && c.calls == c.failOn {
		return nil, errors.New("syntax error near 'boom'")
	}
	c.log = append(c.log, strings.TrimSpace(query))
	if d := c.delays[strings.TrimSpace(query)]; d > 0 {
		time.Sleep(d)
	}
	return nil, nil
}

func writeQueries(t *testing.T, queries map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, sql := range queries {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644))
	}
	return dir
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 45, 123456000, time.UTC)
}

func silent(done, total int) {}

func TestTimeQueries_ReportAndResults(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"query-1.sql": "SELECT 1",
		"query-2.sql": "SELECT 2",
	})
	// query-2 takes twice as long as query-1 on every call
	conn := &fakeConn{delays: map[string]time.Duration{
		"SELECT 1": 10 * time.Millisecond,
		"SELECT 2": 20 * time.Millisecond,
	}}

	var buf bytes.Buffer
	results, err := TimeQueries(conn, Options{
		Repeat:    5,
		Directory: dir,
		Out:       &buf,
		Progress:  silent,
		Now:       fixedNow,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Lexicographic order, file names verbatim
	assert.Equal(t, "query-1.sql", results[0].Name)
	assert.Equal(t, "query-2.sql", results[1].Name)

	for _, res := range results {
		assert.Equal(t, 5, res.Samples)
		assert.Equal(t, res.Total/5, res.Average)
	}

	// ~33.3% vs ~66.7%, with slack for sleep jitter
	assert.InDelta(t, 33.3, results[0].Percent, 10)
	assert.InDelta(t, 66.7, results[1].Percent, 10)
	assert.InDelta(t, 100.0, results[0].Percent+results[1].Percent, 0.01)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)

	assert.Equal(t, "Start time: 2024-03-01 12:30:45.123456", lines[0])
	assert.Equal(t, strings.Repeat("-", 40), lines[1])
	assert.Regexp(t, regexp.MustCompile(`^query-1\.sql: 0\.\d{8}s \(\d+\.\d%\)$`), lines[2])
	assert.Regexp(t, regexp.MustCompile(`^query-2\.sql: 0\.\d{8}s \(\d+\.\d%\)$`), lines[3])
	assert.Equal(t, strings.Repeat("-", 40), lines[4])
	assert.Equal(t, "End time: 2024-03-01 12:30:45.123456", lines[5])
}

func TestTimeQueries_SingleQuerySingleRepetition(t *testing.T) {
	dir := writeQueries(t, map[string]string{"only.sql": "SELECT 1"})
	conn := &fakeConn{delays: map[string]time.Duration{"SELECT 1": 5 * time.Millisecond}}

	var buf bytes.Buffer
	results, err := TimeQueries(conn, Options{
		Repeat:    1,
		Directory: dir,
		Out:       &buf,
		Progress:  silent,
		Now:       fixedNow,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 1, results[0].Samples)
	assert.Equal(t, results[0].Total, results[0].Average)
	assert.Equal(t, 100.0, results[0].Percent)
	assert.Contains(t, buf.String(), "(100.0%)")
}

func TestTimeQueries_EmptyDirectory(t *testing.T) {
	var buf bytes.Buffer
	results, err := TimeQueries(&fakeConn{}, Options{
		Repeat:    3,
		Directory: t.TempDir(),
		Out:       &buf,
		Now:       fixedNow,
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	// Banners and the (empty) progress bar, but no query lines and no
	// division by zero
	out := buf.String()
	assert.Contains(t, out, "Start time: ")
	assert.Contains(t, out, "End time: ")
	assert.Contains(t, out, "] 0/0")
	assert.NotContains(t, out, "%)")
}

func TestTimeQueries_InvalidRepeat(t *testing.T) {
	dir := writeQueries(t, map[string]string{"q.sql": "SELECT 1"})

	for _, repeat := range []int{0, -1} {
		var buf bytes.Buffer
		_, err := TimeQueries(&fakeConn{}, Options{
			Repeat:    repeat,
			Directory: dir,
			Out:       &buf,
		})
		assert.Error(t, err)
		assert.Zero(t, buf.Len(), "no output expected for repeat=%d", repeat)
	}
}

func TestTimeQueries_NilConnection(t *testing.T) {
	_, err := TimeQueries(nil, Options{Repeat: 1, Directory: t.TempDir()})
	assert.Error(t, err)
}

func TestTimeQueries_MissingDirectory(t *testing.T) {
	var buf bytes.Buffer
	_, err := TimeQueries(&fakeConn{}, Options{
		Repeat:    3,
		Directory: filepath.Join(t.TempDir(), "nope"),
		Out:       &buf,
	})
	assert.Error(t, err)
	assert.Zero(t, buf.Len(), "configuration errors surface before any output")
}

func TestTimeQueries_AbortsOnExecuteError(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"query-1.sql": "SELECT 1",
		"query-2.sql": "SELECT 2",
	})
	// Query-major order: calls 1-5 are query-1, 6-10 are query-2, so
	// call 8 is the 3rd repetition of query-2.
	conn := &fakeConn{failOn: 8}

	var buf bytes.Buffer
	results, err := TimeQueries(conn, Options{
		Repeat:    5,
		Directory: dir,
		Out:       &buf,
		Progress:  silent,
		Now:       fixedNow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"query-2.sql"`)
	assert.Nil(t, results, "no partial results on failure")
	assert.Equal(t, 8, conn.calls, "run aborts immediately")

	// Start banner may have printed, but no result lines and no end
	// banner: the report is all-or-nothing.
	assert.NotContains(t, buf.String(), "query-1.sql:")
	assert.NotContains(t, buf.String(), "End time:")
}

func TestTimeQueries_QueryMajorOrder(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"a.sql": "SELECT 'a'",
		"b.sql": "SELECT 'b'",
	})
	conn := &fakeConn{}

	_, err := TimeQueries(conn, Options{
		Repeat:    2,
		Directory: dir,
		Out:       &bytes.Buffer{},
		Progress:  silent,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 'a'", "SELECT 'a'", "SELECT 'b'", "SELECT 'b'"}, conn.log)
}

func TestTimeQueries_InterleavedOrder(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"a.sql": "SELECT 'a'",
		"b.sql": "SELECT 'b'",
	})
	conn := &fakeConn{}

	_, err := TimeQueries(conn, Options{
		Repeat:     2,
		Directory:  dir,
		Interleave: true,
		Out:        &bytes.Buffer{},
		Progress:   silent,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 'a'", "SELECT 'b'", "SELECT 'a'", "SELECT 'b'"}, conn.log)
}

func TestTimeQueries_WarmUp(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"a.sql": "SELECT 'a'",
		"b.sql": "SELECT 'b'",
	})
	conn := &fakeConn{}

	results, err := TimeQueries(conn, Options{
		Repeat:    3,
		Directory: dir,
		WarmUp:    true,
		Out:       &bytes.Buffer{},
		Progress:  silent,
	})
	require.NoError(t, err)

	// One extra untimed execution per query
	assert.Equal(t, 2*3+2, conn.calls)
	for _, res := range results {
		assert.Equal(t, 3, res.Samples, "warm-up runs contribute no samples")
	}
}

func TestTimeQueries_ProgressObserver(t *testing.T) {
	dir := writeQueries(t, map[string]string{
		"a.sql": "SELECT 'a'",
		"b.sql": "SELECT 'b'",
	})

	var seen []int
	total := -1
	_, err := TimeQueries(&fakeConn{}, Options{
		Repeat:    3,
		Directory: dir,
		Out:       &bytes.Buffer{},
		Progress: func(done, t int) {
			seen = append(seen, done)
			total = t
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, total)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, seen, "one callback per completed repetition")
}
