//go:build unit

package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBar_NonTTYSilentUntilFinish(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, 10)

	for i := 1; i <= 10; i++ {
		bar.Step(i, 10)
	}
	if buf.Len() > 0 {
		t.Errorf("expected no output before Finish on non-terminal writer, got %q", buf.String())
	}

	bar.Finish()
	want := "[" + strings.Repeat("=", defaultBarWidth) + "] 10/10\n"
	if buf.String() != want {
		t.Errorf("final bar = %q, want %q", buf.String(), want)
	}
}

func TestBar_FinishIdempotent(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, 5)

	bar.Step(5, 5)
	bar.Finish()
	bar.Finish()

	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Errorf("expected one bar line, got %d: %q", n, buf.String())
	}
}

func TestBar_PartialRun(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, 50)

	bar.Step(12, 50)
	bar.Finish()

	out := buf.String()
	if !strings.HasSuffix(out, "] 12/50\n") {
		t.Errorf("expected partial count suffix, got %q", out)
	}
	if !strings.Contains(out, ">") {
		t.Errorf("expected partial bar marker, got %q", out)
	}
}

func TestBar_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, 0)

	bar.Finish()

	if !strings.HasSuffix(buf.String(), "] 0/0\n") {
		t.Errorf("unexpected zero-total bar: %q", buf.String())
	}
}

func TestRenderWidths(t *testing.T) {
	tests := []struct {
		name  string
		done  int
		total int
	}{
		{"empty", 0, 10},
		{"half", 5, 10},
		{"full", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(&bytes.Buffer{}, tt.total)
			bar.done = tt.done

			line := bar.render()
			closing := strings.IndexByte(line, ']')
			if closing < 0 {
				t.Fatalf("no closing bracket in %q", line)
			}
			// Bar body is always exactly the configured width
			if got := closing - 1; got != bar.width {
				t.Errorf("bar body width = %d, want %d", got, bar.width)
			}
		})
	}
}
