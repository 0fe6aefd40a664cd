package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GREPOWSKI_"

type setter func(c *Config, value string) error

var setters = map[string]setter{
	"lines_per_block":     intSetter(func(c *Config) *int { return &c.LinesPerBlock }),
	"blocks_per_fragment": intSetter(func(c *Config) *int { return &c.BlocksPerFragment }),
	"overlap":             boolSetter(func(c *Config) *bool { return &c.Overlap }),
	"model":               stringSetter(func(c *Config) *string { return &c.Model }),
	"temperature":         floatSetter(func(c *Config) *float64 { return &c.Temperature }),
	"url":                 stringSetter(func(c *Config) *string { return &c.Endpoint }),
	"token":               stringSetter(func(c *Config) *string { return &c.Token }),
	"max_tokens":          intSetter(func(c *Config) *int { return &c.MaxTokens }),
	"concurrency":         intSetter(func(c *Config) *int { return &c.Concurrency }),
	"timeout":             durationSetter(func(c *Config) *time.Duration { return &c.Timeout }),
	"system_prompt":       stringSetter(func(c *Config) *string { return &c.SystemPrompt }),
	"score":               boolSetter(func(c *Config) *bool { return &c.Score }),
	"ui":                  stringSetter(func(c *Config) *string { return &c.UI }),
	"output":              stringSetter(func(c *Config) *string { return &c.Output }),
	"theme":               stringSetter(func(c *Config) *string { return &c.Theme }),
	"log_file":            stringSetter(func(c *Config) *string { return &c.LogFile }),
	"log_level":           stringSetter(func(c *Config) *string { return &c.LogLevel }),
}

// IsKey reports whether key names a setting.
func IsKey(key string) bool {
	_, ok := setters[key]
	return ok
}

// Set parses value into the setting named key. A value that does not parse
// is reported as an *Error.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return &Error{Field: key, Reason: "unknown setting"}
	}
	if err := set(c, strings.TrimSpace(value)); err != nil {
		return &Error{Field: key, Reason: err.Error()}
	}
	return nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// ApplyEnv overrides c with every GREPOWSKI_* variable that is set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range Keys() {
		if v, ok := lookup(EnvName(key)); ok {
			if err := c.Set(key, v); err != nil {
				return fmt.Errorf("%s: %w", EnvName(key), err)
			}
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q is not an integer", v)
		}
		*field(c) = n
		return nil
	}
}

func floatSetter(field func(*Config) *float64) setter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", v)
		}
		*field(c) = f
		return nil
	}
}

func boolSetter(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", v)
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) setter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%q is not a duration", v)
		}
		*field(c) = d
		return nil
	}
}

func stringSetter(field func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

// Keys returns every setting name in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
