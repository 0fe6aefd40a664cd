package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"grepowski/internal/results"
)

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Document is the JSON shape of a finished run.
type Document struct {
	Question  string          `json:"question"`
	Fragments []FragmentEntry `json:"fragments"`
	Summary   results.Summary `json:"summary"`
}

// FragmentEntry is one review item in a Document.
type FragmentEntry struct {
	Index     int      `json:"index"`
	File      string   `json:"file"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Status    string   `json:"status"`
	Answer    string   `json:"answer,omitempty"`
	Error     string   `json:"error,omitempty"`
	Score     *float64 `json:"score,omitempty"`
}

// Build converts review items into a Document.
func Build(question string, items []results.ReviewItem) Document {
	doc := Document{
		Question:  question,
		Fragments: make([]FragmentEntry, 0, len(items)),
		Summary:   results.Summarize(items),
	}
	for _, it := range items {
		e := FragmentEntry{
			Index:     it.Fragment.Index,
			File:      it.Fragment.File,
			StartLine: it.Fragment.StartLine,
			EndLine:   it.Fragment.EndLine,
			Status:    it.Outcome.Status.String(),
			Answer:    it.Outcome.Text,
			Error:     it.Outcome.Error,
		}
		if it.Outcome.HasScore {
			score := it.Outcome.Score
			e.Score = &score
		}
		doc.Fragments = append(doc.Fragments, e)
	}
	return doc
}

// Write renders items in the given format.
func Write(w io.Writer, format, question string, items []results.ReviewItem) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(Build(question, items)); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	case FormatText, "":
		return writeText(w, question, items)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeText(w io.Writer, question string, items []results.ReviewItem) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	for _, it := range items {
		b.WriteString("\n== ")
		b.WriteString(it.Fragment.Location())
		if it.Outcome.HasScore {
			fmt.Fprintf(&b, " score %.3f", it.Outcome.Score)
		}
		b.WriteString("\n")
		if it.Outcome.OK() {
			b.WriteString(strings.TrimRight(it.Outcome.Text, "\n"))
		} else {
			b.WriteString("FAILED: ")
			b.WriteString(it.Outcome.Error)
		}
		b.WriteString("\n")
	}
	sum := results.Summarize(items)
	fmt.Fprintf(&b, "\n%d fragments: %d answered, %d failed\n", sum.Total, sum.Answered, sum.Failed)

	_, err := io.WriteString(w, b.String())
	return err
}
