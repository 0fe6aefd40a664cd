package query

import (
	"fmt"
	"strings"

	"grepowski/internal/fragment"
	"grepowski/internal/llm"
)

// ScoreMaxTokens bounds score-mode completions; a 3-decimal number fits easily.
const ScoreMaxTokens = 10

const answerSystemPrompt = `You are reviewing one excerpt of a larger source file. Every line of the excerpt starts with its line number followed by "|".
Answer the user's question using only what the excerpt shows. Cite line numbers when you refer to code.
If the excerpt has nothing relevant to the question, say so in one sentence.`

const scoreSystemPrompt = `You are an evaluation model. Respond only with a floating point number from 0 to 1 with 3 decimal places.
The number is the probability that the user's question holds for the code excerpt. Do not explain.`

// Prompt frames a fragment and the run's question as a chat conversation.
type Prompt struct {
	// System overrides the built-in instructions when non-empty.
	System   string
	Question string
	// Score asks for a probability instead of a prose answer.
	Score bool
}

// SystemText returns the instructions sent as the system turn.
func (p Prompt) SystemText() string {
	if p.System != "" {
		return p.System
	}
	if p.Score {
		return scoreSystemPrompt
	}
	return answerSystemPrompt
}

// Messages builds the request for one fragment. The question appears once,
// in the user turn, ahead of the numbered excerpt.
func (p Prompt) Messages(f fragment.Fragment) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(p.Question))
	fmt.Fprintf(&b, "File: %s (lines %d-%d)\n\n", f.File, f.StartLine, f.EndLine)
	b.WriteString("```\n")
	b.WriteString(f.Text())
	b.WriteString("\n```")

	return []llm.Message{
		{Role: "system", Content: p.SystemText()},
		{Role: "user", Content: b.String()},
	}
}
