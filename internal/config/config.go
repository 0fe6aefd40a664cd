package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"grepowski/internal/llm"
)

// UI modes.
const (
	UIAuto  = "auto"
	UILive  = "live"
	UIPlain = "plain"
)

// Output formats for plain mode.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Themes for the review interface.
const (
	ThemeSynthwave     = "synthwave"
	ThemeAccessibility = "accessibility"
)

var (
	uiModes   = []string{UIAuto, UILive, UIPlain}
	outputs   = []string{OutputText, OutputJSON}
	themes    = []string{ThemeSynthwave, ThemeAccessibility}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the settled configuration for one run. It is built once at
// startup and passed by value from then on.
type Config struct {
	LinesPerBlock     int
	BlocksPerFragment int
	Overlap           bool
	Model             string
	Temperature       float64
	Endpoint          string
	Token             string
	MaxTokens         int
	Concurrency       int
	Timeout           time.Duration
	SystemPrompt      string
	Score             bool
	UI                string
	Output            string
	Theme             string
	LogFile           string
	LogLevel          string
}

// Default returns the built-in settings. Model has no default.
func Default() Config {
	return Config{
		LinesPerBlock:     10,
		BlocksPerFragment: 3,
		Temperature:       0.2,
		Endpoint:          llm.DefaultEndpoint,
		Concurrency:       4,
		Timeout:           2 * time.Minute,
		UI:                UIAuto,
		Output:            OutputText,
		Theme:             ThemeSynthwave,
		LogLevel:          "info",
	}
}

// Error is a configuration problem. It is always fatal and is reported
// before any input file is read.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks c and returns the first problem found as an *Error.
func (c Config) Validate() error {
	switch {
	case c.LinesPerBlock < 1:
		return &Error{Field: "lines_per_block", Reason: fmt.Sprintf("must be at least 1, got %d", c.LinesPerBlock)}
	case c.BlocksPerFragment < 1:
		return &Error{Field: "blocks_per_fragment", Reason: fmt.Sprintf("must be at least 1, got %d", c.BlocksPerFragment)}
	case c.Model == "":
		return &Error{Field: "model", Reason: "required"}
	case c.Temperature < 0 || c.Temperature > 2:
		return &Error{Field: "temperature", Reason: fmt.Sprintf("must be between 0 and 2, got %g", c.Temperature)}
	case c.MaxTokens < 0:
		return &Error{Field: "max_tokens", Reason: "must not be negative"}
	case c.Concurrency < 1:
		return &Error{Field: "concurrency", Reason: fmt.Sprintf("must be at least 1, got %d", c.Concurrency)}
	case c.Timeout <= 0:
		return &Error{Field: "timeout", Reason: "must be positive"}
	}
	if err := validateEndpoint(c.Endpoint); err != nil {
		return err
	}
	for _, choice := range []struct {
		field, value string
		allowed      []string
	}{
		{"ui", c.UI, uiModes},
		{"output", c.Output, outputs},
		{"theme", c.Theme, themes},
		{"log_level", c.LogLevel, logLevels},
	} {
		if !slices.Contains(choice.allowed, choice.value) {
			return &Error{Field: choice.field, Reason: fmt.Sprintf("%q is not one of %v", choice.value, choice.allowed)}
		}
	}
	return nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &Error{Field: "url", Reason: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &Error{Field: "url", Reason: fmt.Sprintf("%q is not an absolute http(s) URL", raw)}
	}
	return nil
}
