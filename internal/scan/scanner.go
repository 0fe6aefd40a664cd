package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"grepowski/internal/config"
	"grepowski/internal/fragment"
	"grepowski/internal/llm"
	"grepowski/internal/query"
	"grepowski/internal/results"
)

// ErrIncomplete is returned if the dispatcher finished without an outcome
// for every fragment.
var ErrIncomplete = errors.New("run finished with missing outcomes")

// Scanner is the public API for asking a question across a set of files.
type Scanner struct {
	cfg    config.Config
	client *llm.Client
	logger *slog.Logger
}

// New validates cfg and creates a Scanner. No file is touched here, so an
// invalid configuration is reported before any input is read.
func New(cfg config.Config, logger *slog.Logger) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		cfg: cfg,
		client: llm.NewClient(llm.Options{
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Token:       cfg.Token,
		}),
		logger: logger,
	}, nil
}

// Config returns the validated configuration.
func (s *Scanner) Config() config.Config { return s.cfg }

// Fragments reads the inputs in argument order and returns the canonical
// fragment list. Any unreadable input aborts with a *source.ReadError.
func (s *Scanner) Fragments(paths []string) ([]fragment.Fragment, *Stats, error) {
	return readFragments(paths, fragment.Options{
		LinesPerBlock:     s.cfg.LinesPerBlock,
		BlocksPerFragment: s.cfg.BlocksPerFragment,
		Overlap:           s.cfg.Overlap,
	}, s.logger)
}

// Dispatch asks question about every fragment and returns the complete,
// ordered review list. onEvent may be nil.
func (s *Scanner) Dispatch(ctx context.Context, question string, frags []fragment.Fragment, onEvent func(query.Event)) ([]results.ReviewItem, error) {
	sink := results.New(frags)
	d := query.New(s.client, query.Prompt{
		System:   s.cfg.SystemPrompt,
		Question: question,
		Score:    s.cfg.Score,
	}, query.Options{
		Concurrency: s.cfg.Concurrency,
		Timeout:     s.cfg.Timeout,
		MaxTokens:   s.cfg.MaxTokens,
		Logger:      s.logger,
		OnEvent:     onEvent,
	})

	s.logger.Info("dispatch started", "fragments", len(frags), "model", s.cfg.Model, "endpoint", s.cfg.Endpoint)
	if err := d.Run(ctx, frags, sink); err != nil {
		s.logger.Warn("dispatch aborted", "remaining", sink.Remaining(), "error", err)
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	items, ok := sink.Items()
	if !ok {
		return nil, ErrIncomplete
	}
	sum := results.Summarize(items)
	s.logger.Info("dispatch finished", "answered", sum.Answered, "failed", sum.Failed)
	return items, nil
}

// Ask reads paths and dispatches question over every fragment.
func (s *Scanner) Ask(ctx context.Context, question string, paths []string, onEvent func(query.Event)) ([]results.ReviewItem, error) {
	frags, _, err := s.Fragments(paths)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, question, frags, onEvent)
}
