package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"grepowski/internal/fragment"
	"grepowski/internal/llm"
	"grepowski/internal/results"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Completer is the subset of the chat client the dispatcher needs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, maxTokens int) (string, error)
}

// EventKind distinguishes progress events.
type EventKind int

const (
	// EventStarted is sent when a request for a fragment is issued.
	EventStarted EventKind = iota
	// EventFinished is sent once the fragment's outcome is recorded.
	EventFinished
)

// Event reports dispatch progress for one fragment.
type Event struct {
	Kind     EventKind
	Fragment fragment.Fragment
	Outcome  results.Outcome
	Duration time.Duration
}

// Options tunes a Dispatcher.
type Options struct {
	Concurrency int
	// Timeout bounds each request on its own; zero means no per-request limit.
	Timeout   time.Duration
	MaxTokens int
	Logger    *slog.Logger
	// OnEvent is called from worker goroutines and must be safe for concurrent use.
	OnEvent func(Event)
}

// Dispatcher turns every fragment into exactly one outcome.
type Dispatcher struct {
	client Completer
	prompt Prompt
	opts   Options
	logger *slog.Logger
}

// New creates a Dispatcher. Score prompts default MaxTokens to ScoreMaxTokens.
func New(client Completer, prompt Prompt, opts Options) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxTokens == 0 && prompt.Score {
		opts.MaxTokens = ScoreMaxTokens
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{client: client, prompt: prompt, opts: opts, logger: logger}
}

// Run issues one request per fragment with at most Concurrency in flight and
// records every outcome in sink, where slot i belongs to frags[i]. Request
// failures become Failed outcomes. When ctx is cancelled no new requests are
// issued, outcomes still in flight are discarded and Run returns ctx.Err().
func (d *Dispatcher) Run(ctx context.Context, frags []fragment.Fragment, sink *results.Aggregator) error {
	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)

	for i, f := range frags {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			start := time.Now()
			o, ok := d.ask(ctx, f)
			if !ok {
				return nil
			}
			if err := sink.Put(i, o); err != nil {
				return err
			}
			d.emit(Event{Kind: EventFinished, Fragment: f, Outcome: o, Duration: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	if sink.Remaining() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// ask performs one request. The second result is false when the parent
// context ended while the request was in flight.
func (d *Dispatcher) ask(ctx context.Context, f fragment.Fragment) (results.Outcome, bool) {
	reqCtx, cancel := d.requestContext(ctx)
	defer cancel()

	loc := f.Location()
	d.emit(Event{Kind: EventStarted, Fragment: f})
	d.logger.Debug("request started", "fragment", loc)

	start := time.Now()
	text, err := d.client.Complete(reqCtx, d.prompt.Messages(f), d.opts.MaxTokens)
	elapsed := time.Since(start)
	if ctx.Err() != nil {
		d.logger.Debug("request discarded", "fragment", loc, "duration", elapsed)
		return results.Outcome{}, false
	}

	if err != nil {
		reason := d.describe(reqCtx, err)
		d.logger.Warn("request failed", "fragment", loc, "duration", elapsed, "error", reason)
		return results.Failed(reason), true
	}

	o := results.Answered(text)
	if d.prompt.Score {
		if score, ok := ParseScore(text); ok {
			o = o.WithScore(score)
		} else {
			d.logger.Warn("unparseable score", "fragment", loc, "answer", text)
		}
	}
	d.logger.Info("request answered", "fragment", loc, "duration", elapsed)
	return o, true
}

func (d *Dispatcher) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.Timeout > 0 {
		return context.WithTimeout(ctx, d.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (d *Dispatcher) describe(reqCtx context.Context, err error) string {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("timeout after %s", d.opts.Timeout)
	}
	return err.Error()
}

func (d *Dispatcher) emit(ev Event) {
	if d.opts.OnEvent != nil {
		d.opts.OnEvent(ev)
	}
}
