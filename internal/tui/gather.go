package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"grepowski/internal/query"
	"grepowski/internal/results"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

type gatherModel struct {
	spinner  spinner.Model
	progress progress.Model
	st       styles
	total    int
	done     int
	failed   int
	inFlight int
	current  string
	score    bool
	scores   []float64
	err      error
}

// eventMsg carries dispatcher progress into the program.
type eventMsg query.Event

// doneMsg is sent when the dispatcher has returned.
type doneMsg struct {
	items []results.ReviewItem
	err   error
}

func newGatherModel(total int, score bool, theme Theme, st styles) gatherModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.title

	bar := progress.New(
		progress.WithSolidFill(string(theme.Highlight)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Gauge)

	return gatherModel{
		spinner:  sp,
		progress: bar,
		st:       st,
		total:    total,
		score:    score,
	}
}

func (m gatherModel) Update(msg tea.Msg) (gatherModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		switch msg.Kind {
		case query.EventStarted:
			m.inFlight++
			m.current = msg.Fragment.Location()
		case query.EventFinished:
			m.inFlight--
			m.done++
			if !msg.Outcome.OK() {
				m.failed++
			}
			if msg.Outcome.HasScore {
				m.scores = append(m.scores, msg.Outcome.Score)
			}
		}
		return m, nil
	case doneMsg:
		m.err = msg.err
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = max(msg.Width-6, 10)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m gatherModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m gatherModel) View(width, height int) string {
	s := "\n"
	s += m.st.title.Render("  Asking") + "\n\n"

	if m.err != nil {
		s += m.st.err.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
		s += m.st.dim.Render("  Press q to quit.") + "\n"
		return s
	}

	s += fmt.Sprintf("  %s %d / %d fragments", m.spinner.View(), m.done, m.total)
	if m.inFlight > 0 {
		s += m.st.dim.Render(fmt.Sprintf("  (%d in flight)", m.inFlight))
	}
	s += "\n"
	if m.failed > 0 {
		s += m.st.warn.Render(fmt.Sprintf("  %d failed", m.failed)) + "\n"
	}
	s += "  " + m.progress.ViewAs(m.percent()) + "\n\n"

	if m.current != "" {
		s += m.st.subtitle.Render("  "+m.current) + "\n"
	}
	if m.score && len(m.scores) > 0 {
		s += "  " + m.st.success.Render(sparkline(m.scores, max(width-4, 10))) + "\n"
	}
	s += "\n"
	s += m.st.dim.Render("  Press q to abort.") + "\n"
	return s
}

// sparkline draws the most recent values, each clamped to [0,1].
func sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	var b strings.Builder
	for _, v := range values {
		v = min(max(v, 0), 1)
		b.WriteRune(sparkTicks[int(v*float64(len(sparkTicks)-1)+0.5)])
	}
	return b.String()
}
