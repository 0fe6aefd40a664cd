package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"grepowski/internal/fragment"
	"grepowski/internal/source"
	"grepowski/internal/walker"
)

// ErrNoInput is returned when the arguments name no readable file.
var ErrNoInput = errors.New("no input files")

// Stats reports what the read stage produced.
type Stats struct {
	FilesTotal int
	FilesEmpty int
	LinesTotal int
	Fragments  int
}

// readFragments runs expand -> read -> segment -> build for each file in
// order. Reading is synchronous; the first ReadError aborts the run.
func readFragments(paths []string, opts fragment.Options, logger *slog.Logger) ([]fragment.Fragment, *Stats, error) {
	files, err := walker.Expand(paths)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return nil, nil, &source.ReadError{Path: pe.Path, Err: pe.Err}
		}
		return nil, nil, fmt.Errorf("expand inputs: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, ErrNoInput
	}

	var stats Stats
	var frags []fragment.Fragment
	for _, path := range files {
		stats.FilesTotal++
		lines, err := source.ReadLines(path)
		if err != nil {
			return nil, nil, err
		}
		if len(lines) == 0 {
			stats.FilesEmpty++
			logger.Debug("empty file", "file", path)
			continue
		}
		stats.LinesTotal += len(lines)
		fileFrags := fragment.FromLines(lines, opts)
		logger.Debug("fragmented", "file", path, "lines", len(lines), "fragments", len(fileFrags))
		frags = append(frags, fileFrags...)
	}

	fragment.Renumber(frags)
	stats.Fragments = len(frags)
	return frags, &stats, nil
}
