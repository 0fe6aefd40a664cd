package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"grepowski/internal/config"
	"grepowski/internal/logging"
	"grepowski/internal/report"
	"grepowski/internal/scan"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the ask_files tool over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the protocol; logs go to the log file or stderr.
	logger, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Fallback: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer closer.Close()

	s := mcpserver.NewMCPServer("grepowski", "1.0.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(askFilesTool(), makeAskFilesHandler(cfg, logger))

	logger.Info("mcp server started", "model", cfg.Model, "endpoint", cfg.Endpoint)
	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(false),
	OpenWorldHint:   mcp.ToBoolPtr(true),
}

func askFilesTool() mcp.Tool {
	return mcp.NewTool("ask_files",
		mcp.WithDescription("Ask one question about every fragment of the given files. Each fragment of numbered lines is sent to the configured chat model and the answers are returned in file order, one section per fragment."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to ask about each fragment"),
		),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("Files or directories to read, in order"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("score",
			mcp.Description("Ask for a probability between 0 and 1 per fragment instead of prose"),
		),
	)
}

func makeAskFilesHandler(cfg config.Config, logger *slog.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		paths := req.GetStringSlice("paths", nil)
		if len(paths) == 0 {
			return mcp.NewToolResultError("paths is required"), nil
		}

		runCfg := cfg
		runCfg.Score = req.GetBool("score", cfg.Score)
		scanner, err := scan.New(runCfg, logger)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		items, err := scanner.Ask(ctx, question, paths, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, report.FormatText, question, items); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("format report: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}
