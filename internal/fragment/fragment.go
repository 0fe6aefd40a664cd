package fragment

import (
	"fmt"
	"strconv"
	"strings"
)

// Line is one physical line of an input file. Number is 1-based.
type Line struct {
	File   string
	Number int
	Text   string
}

// Block is a run of consecutive lines from a single file.
type Block struct {
	File      string
	StartLine int
	EndLine   int
	Lines     []Line
}

// Len returns the number of lines in the block.
func (b Block) Len() int { return len(b.Lines) }

// Fragment is the unit of work sent to the model: consecutive blocks from
// one file. Position counts fragments within the file, Index counts them
// across the whole run.
type Fragment struct {
	Index     int
	Position  int
	File      string
	StartLine int
	EndLine   int
	Blocks    []Block
}

// Lines returns the fragment's lines in block order.
func (f Fragment) Lines() []Line {
	var lines []Line
	for _, b := range f.Blocks {
		lines = append(lines, b.Lines...)
	}
	return lines
}

// LineCount returns the total number of lines across all blocks.
func (f Fragment) LineCount() int {
	n := 0
	for _, b := range f.Blocks {
		n += b.Len()
	}
	return n
}

// Location renders the fragment as path:start-end.
func (f Fragment) Location() string {
	return fmt.Sprintf("%s:%d-%d", f.File, f.StartLine, f.EndLine)
}

// Text is the payload handed to the model. Every line is prefixed with its
// absolute line number, right-aligned to the widest number in the fragment.
func (f Fragment) Text() string {
	width := len(strconv.Itoa(f.EndLine))
	var b strings.Builder
	first := true
	for _, blk := range f.Blocks {
		for _, l := range blk.Lines {
			if !first {
				b.WriteByte('\n')
			}
			first = false
			fmt.Fprintf(&b, "%*d | %s", width, l.Number, l.Text)
		}
	}
	return b.String()
}

// Source returns the fragment's raw text without line numbers.
func (f Fragment) Source() string {
	lines := f.Lines()
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}
