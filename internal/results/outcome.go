package results

import "grepowski/internal/fragment"

// Status tags an Outcome.
type Status int

const (
	// StatusAnswered means the model returned a completion.
	StatusAnswered Status = iota
	// StatusFailed means the request for the fragment did not produce an answer.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result for one fragment: either an answer text or
// a failure description. Score is only meaningful when HasScore is set.
type Outcome struct {
	Status   Status
	Text     string
	Error    string
	Score    float64
	HasScore bool
}

// Answered builds a successful outcome.
func Answered(text string) Outcome {
	return Outcome{Status: StatusAnswered, Text: text}
}

// Failed builds a failed outcome with a human-readable reason.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Error: reason}
}

// WithScore returns a copy of o carrying a numeric score.
func (o Outcome) WithScore(score float64) Outcome {
	o.Score = score
	o.HasScore = true
	return o
}

// OK reports whether the outcome is an answer.
func (o Outcome) OK() bool { return o.Status == StatusAnswered }

// ReviewItem pairs a fragment with its outcome for the review interface.
type ReviewItem struct {
	Fragment fragment.Fragment
	Outcome  Outcome
}

// Summary counts outcomes by status.
type Summary struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Failed   int `json:"failed"`
}

// Summarize counts the outcomes in items.
func Summarize(items []ReviewItem) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		if it.Outcome.OK() {
			s.Answered++
		} else {
			s.Failed++
		}
	}
	return s
}
