package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"grepowski/internal/config"
)

// addSettingFlags registers one flag per config setting. Flag names are the
// setting keys with dashes; only flags set on the command line override.
func addSettingFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.IntP("lines-per-block", "l", d.LinesPerBlock, "number of lines per block")
	fs.IntP("blocks-per-fragment", "b", d.BlocksPerFragment, "number of blocks per fragment")
	fs.Bool("overlap", d.Overlap, "slide fragments one block at a time instead of grouping")
	fs.StringP("model", "m", d.Model, "model to use for the chat completion (required)")
	fs.Float64P("temperature", "t", d.Temperature, "temperature for the chat completion")
	fs.StringP("url", "u", d.Endpoint, "URL of the chat completion endpoint")
	fs.String("token", d.Token, "bearer token for the endpoint")
	fs.Int("max-tokens", d.MaxTokens, "completion token limit (0 leaves it to the server)")
	fs.IntP("concurrency", "c", d.Concurrency, "maximum requests in flight")
	fs.Duration("timeout", d.Timeout, "timeout for each request")
	fs.String("system-prompt", d.SystemPrompt, "replace the built-in instructions")
	fs.BoolP("score", "s", d.Score, "ask for a probability between 0 and 1 instead of prose")
	fs.String("ui", d.UI, "auto, live or plain")
	fs.StringP("output", "o", d.Output, "plain report format: text or json")
	fs.String("theme", d.Theme, "synthwave or accessibility")
	fs.String("log-file", d.LogFile, "append logs to this file")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
}

// applyFlags overrides cfg with every setting flag changed on the command line.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err != nil || !config.IsKey(key) {
			return
		}
		err = cfg.Set(key, f.Value.String())
	})
	return err
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig, nil)
	if err != nil {
		return config.Config{}, err
	}
	if err := applyFlags(&cfg, cmd.Flags()); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
