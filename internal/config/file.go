package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable holding a config file path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// fileConfig mirrors Config for YAML; nil fields leave the current value.
type fileConfig struct {
	LinesPerBlock     *int     `yaml:"lines_per_block"`
	BlocksPerFragment *int     `yaml:"blocks_per_fragment"`
	Overlap           *bool    `yaml:"overlap"`
	Model             *string  `yaml:"model"`
	Temperature       *float64 `yaml:"temperature"`
	URL               *string  `yaml:"url"`
	Token             *string  `yaml:"token"`
	MaxTokens         *int     `yaml:"max_tokens"`
	Concurrency       *int     `yaml:"concurrency"`
	Timeout           *string  `yaml:"timeout"`
	SystemPrompt      *string  `yaml:"system_prompt"`
	Score             *bool    `yaml:"score"`
	UI                *string  `yaml:"ui"`
	Output            *string  `yaml:"output"`
	Theme             *string  `yaml:"theme"`
	LogFile           *string  `yaml:"log_file"`
	LogLevel          *string  `yaml:"log_level"`
}

// ApplyFile overlays the YAML file at path onto c. Unknown keys and
// multiple documents are rejected.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return c.ApplyYAML(data)
}

// ApplyYAML overlays a YAML document onto c.
func (c *Config) ApplyYAML(data []byte) error {
	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return fmt.Errorf("parse config: %w", err)
	}

	setInt(&c.LinesPerBlock, fc.LinesPerBlock)
	setInt(&c.BlocksPerFragment, fc.BlocksPerFragment)
	setBool(&c.Overlap, fc.Overlap)
	setString(&c.Model, fc.Model)
	if fc.Temperature != nil {
		c.Temperature = *fc.Temperature
	}
	setString(&c.Endpoint, fc.URL)
	setString(&c.Token, fc.Token)
	setInt(&c.MaxTokens, fc.MaxTokens)
	setInt(&c.Concurrency, fc.Concurrency)
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return &Error{Field: "timeout", Reason: fmt.Sprintf("%q is not a duration", *fc.Timeout)}
		}
		c.Timeout = d
	}
	setString(&c.SystemPrompt, fc.SystemPrompt)
	setBool(&c.Score, fc.Score)
	setString(&c.UI, fc.UI)
	setString(&c.Output, fc.Output)
	setString(&c.Theme, fc.Theme)
	setString(&c.LogFile, fc.LogFile)
	setString(&c.LogLevel, fc.LogLevel)
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Load builds a Config from defaults, the optional YAML file and the
// environment, in that order. Command-line flags are applied by the caller.
// The result is not validated.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Default()
	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
