// Package discover enumerates the query files for a timing run.
package discover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// QueryFile identifies one discovered query file. Name is the bare file
// name and becomes the display label in the report.
type QueryFile struct {
	Name string
	Path string
}

// QueryFiles lists the files directly inside dir that match pattern,
// sorted lexicographically by name. Subdirectories are never descended
// into. Files without a .sql extension are still returned, but a warning
// is written to warn since their contents will be executed as-is.
func QueryFiles(dir, pattern string, warn io.Writer) ([]QueryFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("query directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("query directory %q: not a directory", dir)
	}

	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid file pattern %q", pattern)
	}

	// os.ReadDir returns entries sorted by file name, which keeps the
	// report order reproducible across runs.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading query directory %q: %w", dir, err)
	}

	var files []QueryFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := doublestar.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("matching pattern %q: %w", pattern, err)
		}
		if !matched {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if filepath.Ext(entry.Name()) != ".sql" && warn != nil {
			fmt.Fprintf(warn, "warning: file %s does not end with '.sql'; its contents will be executed as-is\n", path)
		}

		files = append(files, QueryFile{Name: entry.Name(), Path: path})
	}

	return files, nil
}
