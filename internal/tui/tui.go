package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"grepowski/internal/query"
	"grepowski/internal/results"
)

// ErrAborted is returned when the user quits before every fragment is answered.
var ErrAborted = errors.New("aborted before all fragments were answered")

// ViewState represents which screen is active.
type ViewState int

const (
	ViewGather ViewState = iota
	ViewReview
)

// programRef is an indirect pointer to the tea.Program so background goroutines
// can send messages. It must be set after tea.NewProgram returns but before Run.
type programRef struct {
	p *tea.Program
}

func (r *programRef) send(msg tea.Msg) {
	if r != nil && r.p != nil {
		r.p.Send(msg)
	}
}

// Config holds configuration passed from the CLI layer.
type Config struct {
	Question string
	Theme    string
	Total    int
	Score    bool

	// program is set internally so background goroutines can send messages.
	program *programRef
}

// RunFunc performs the dispatch, reporting progress through onEvent.
type RunFunc func(ctx context.Context, onEvent func(query.Event)) ([]results.ReviewItem, error)

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	theme  Theme
	st     styles
	keys   keyMap
	width  int
	height int

	gather  gatherModel
	review  reviewModel
	err     error
	aborted bool
}

// New creates a new TUI model with the given config. Unknown themes fall back
// to synthwave.
func New(cfg Config) Model {
	theme, err := LookupTheme(cfg.Theme)
	if err != nil {
		theme = themes["synthwave"]
	}
	st := newStyles(theme)
	return Model{
		state:  ViewGather,
		config: cfg,
		theme:  theme,
		st:     st,
		keys:   defaultKeyMap(),
		gather: newGatherModel(cfg.Total, cfg.Score, theme, st),
	}
}

// State returns the active screen.
func (m Model) State() ViewState { return m.state }

// Aborted reports whether the user quit while answers were still arriving.
func (m Model) Aborted() bool { return m.aborted }

func (m Model) Init() tea.Cmd {
	return m.gather.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmd tea.Cmd
		if m.state == ViewReview {
			m.review, cmd = m.review.Update(msg)
		} else {
			m.gather, cmd = m.gather.Update(msg)
		}
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.state == ViewGather && m.err == nil {
				m.aborted = true
			}
			return m, tea.Quit
		}

	case doneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.gather, _ = m.gather.Update(msg)
			return m, nil
		}
		m.state = ViewReview
		m.review = newReviewModel(msg.items, m.config.Question, m.theme, m.st)
		m.review.resize(m.width, m.height)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewGather:
		m.gather, cmd = m.gather.Update(msg)
	case ViewReview:
		m.review, cmd = m.review.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	switch m.state {
	case ViewGather:
		return m.gather.View(m.width, m.height)
	case ViewReview:
		return m.review.View()
	}
	return ""
}

// Run starts the TUI program, runs the dispatch in the background and keeps
// the review screen open until the user quits. Quitting before the dispatch
// completes cancels it and returns ErrAborted.
func Run(ctx context.Context, cfg Config, run RunFunc) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &programRef{}
	cfg.program = ref
	model := New(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
	ref.p = p

	var runErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		items, err := run(runCtx, func(ev query.Event) { ref.send(eventMsg(ev)) })
		runErr = err
		ref.send(doneMsg{items: items, err: err})
	}()

	final, err := p.Run()
	cancel()
	<-finished

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	if m, ok := final.(Model); ok && m.aborted {
		return ErrAborted
	}
	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}
