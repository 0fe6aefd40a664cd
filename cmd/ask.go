package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"grepowski/internal/logging"
	"grepowski/internal/report"
	"grepowski/internal/scan"
)

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	question, paths := args[0], args[1:]

	live, note := liveUI(cfg, cmd.OutOrStdout())
	if note != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), note)
	}

	// The live UI owns the terminal, so logs only go to --log-file there.
	var fallback io.Writer = cmd.ErrOrStderr()
	if live {
		fallback = nil
	}
	logger, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Fallback: fallback})
	if err != nil {
		return err
	}
	defer closer.Close()

	scanner, err := scan.New(cfg, logger)
	if err != nil {
		return err
	}
	frags, stats, err := scanner.Fragments(paths)
	if err != nil {
		return err
	}
	logger.Info("inputs read", "files", stats.FilesTotal, "empty", stats.FilesEmpty, "lines", stats.LinesTotal, "fragments", stats.Fragments)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if live {
		return runLive(ctx, scanner, question, frags)
	}

	items, err := scanner.Dispatch(ctx, question, frags, nil)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), cfg.Output, question, items)
}
