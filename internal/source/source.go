package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"unicode/utf8"

	"grepowski/internal/fragment"
)

// ErrInvalidEncoding is wrapped by a ReadError when a file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadError reports a file that could not be opened, read, or decoded.
// Line is set when the failure is tied to a specific line.
type ReadError struct {
	Path string
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("read %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Lines lazily yields the lines of the file at path. Lines are separated by
// '\n'; a trailing '\r' is dropped and a final newline does not produce an
// extra empty line. The sequence stops after the first error, which is
// always a *ReadError.
func Lines(path string) iter.Seq2[fragment.Line, error] {
	return func(yield func(fragment.Line, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(fragment.Line{}, &ReadError{Path: path, Err: err})
			return
		}
		defer f.Close()

		r := bufio.NewReader(f)
		n := 0
		for {
			raw, err := r.ReadBytes('\n')
			if len(raw) > 0 {
				n++
				text := bytes.TrimSuffix(raw, []byte{'\n'})
				text = bytes.TrimSuffix(text, []byte{'\r'})
				if n == 1 {
					text = bytes.TrimPrefix(text, utf8BOM)
				}
				if !utf8.Valid(text) {
					yield(fragment.Line{}, &ReadError{Path: path, Line: n, Err: ErrInvalidEncoding})
					return
				}
				if !yield(fragment.Line{File: path, Number: n, Text: string(text)}, nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(fragment.Line{}, &ReadError{Path: path, Err: err})
				return
			}
		}
	}
}

// ReadLines collects every line of the file at path.
func ReadLines(path string) ([]fragment.Line, error) {
	var lines []fragment.Line
	for line, err := range Lines(path) {
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
