package cmd

import (
	"context"

	"grepowski/internal/fragment"
	"grepowski/internal/query"
	"grepowski/internal/results"
	"grepowski/internal/scan"
	"grepowski/internal/tui"
)

func runLive(ctx context.Context, scanner *scan.Scanner, question string, frags []fragment.Fragment) error {
	cfg := scanner.Config()
	return tui.Run(ctx, tui.Config{
		Question: question,
		Theme:    cfg.Theme,
		Total:    len(frags),
		Score:    cfg.Score,
	}, func(ctx context.Context, onEvent func(query.Event)) ([]results.ReviewItem, error) {
		return scanner.Dispatch(ctx, question, frags, onEvent)
	})
}
