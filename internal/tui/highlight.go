package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"grepowski/internal/fragment"
)

// highlightSource colors src using a lexer picked from the file name, or from
// the content when the name is not recognized. It returns src unchanged when
// highlighting fails.
func highlightSource(file, src, style string) string {
	lexer := lexers.Match(filepath.Base(file))
	if lexer == nil {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return src
	}
	s := chromastyles.Get(style)
	if s == nil {
		s = chromastyles.Fallback
	}

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var b strings.Builder
	if err := formatter.Format(&b, s, it); err != nil {
		return src
	}
	return b.String()
}

// renderFragment returns the fragment's lines, highlighted, behind a line
// number gutter.
func renderFragment(f fragment.Fragment, style string, gutter lipgloss.Style) string {
	lines := f.Lines()
	if len(lines) == 0 {
		return ""
	}
	highlighted := strings.Split(strings.TrimSuffix(highlightSource(f.File, f.Source(), style), "\n"), "\n")

	width := len(strconv.Itoa(f.EndLine))
	var b strings.Builder
	for i, line := range lines {
		text := line.Text
		// Fall back to plain text if the formatter merged or split lines.
		if len(highlighted) == len(lines) {
			text = highlighted[i]
		}
		b.WriteString(gutter.Render(fmt.Sprintf("%*d │ ", width, line.Number)))
		b.WriteString(text)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
