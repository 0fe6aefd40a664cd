package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"grepowski/internal/results"
)

type reviewFocus int

const (
	focusList reviewFocus = iota
	focusDetail
)

type reviewModel struct {
	items    []results.ReviewItem
	cursor   int
	offset   int
	focus    reviewFocus
	viewport viewport.Model
	renderer *glamour.TermRenderer
	keys     keyMap
	help     help.Model
	theme    Theme
	st       styles
	question string
	width    int
	height   int
}

func newReviewModel(items []results.ReviewItem, question string, theme Theme, st styles) reviewModel {
	h := help.New()
	h.Styles.ShortKey = st.subtitle
	h.Styles.ShortDesc = st.help
	h.Styles.ShortSeparator = st.help
	h.Styles.FullKey = st.subtitle
	h.Styles.FullDesc = st.help
	h.Styles.FullSeparator = st.help

	return reviewModel{
		items:    items,
		keys:     defaultKeyMap(),
		help:     h,
		theme:    theme,
		st:       st,
		question: question,
	}
}

// Layout: header (1) + panes + help (1). Each pane has a one-cell border.
func (m reviewModel) paneHeight() int {
	return max(m.height-2, 5)
}

func (m reviewModel) listWidth() int {
	return min(max(m.width/3, 24), 60)
}

func (m reviewModel) visibleRows() int {
	return max(m.paneHeight()-2, 1)
}

func (m *reviewModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	vpWidth := max(width-m.listWidth()-4, 10)
	m.viewport = viewport.New(vpWidth, max(m.paneHeight()-2, 1))

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(vpWidth-2),
	)
	if err == nil {
		m.renderer = r
	}
	m.clampOffset()
	m.refresh()
}

func (m *reviewModel) setCursor(i int) {
	if len(m.items) == 0 {
		return
	}
	i = min(max(i, 0), len(m.items)-1)
	if i == m.cursor {
		return
	}
	m.cursor = i
	m.clampOffset()
	m.refresh()
}

func (m *reviewModel) clampOffset() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(m.offset, 0)
}

// refresh loads the selected item into the detail pane.
func (m *reviewModel) refresh() {
	if len(m.items) == 0 {
		m.viewport.SetContent(m.st.dim.Render("No fragments to review."))
		return
	}
	m.viewport.SetContent(m.renderDetail(m.items[m.cursor]))
	m.viewport.GotoTop()
}

func (m reviewModel) Update(msg tea.Msg) (reviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Focus) {
			if m.focus == focusList {
				m.focus = focusDetail
			} else {
				m.focus = focusList
			}
			return m, nil
		}
		if m.focus == focusDetail {
			return m.updateDetail(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.setCursor(m.cursor - 1)
		case key.Matches(msg, m.keys.Down):
			m.setCursor(m.cursor + 1)
		case key.Matches(msg, m.keys.PageUp):
			m.setCursor(m.cursor - m.visibleRows())
		case key.Matches(msg, m.keys.PageDown):
			m.setCursor(m.cursor + m.visibleRows())
		case key.Matches(msg, m.keys.Home):
			m.setCursor(0)
		case key.Matches(msg, m.keys.End):
			m.setCursor(len(m.items) - 1)
		}
		return m, nil
	}
	return m, nil
}

func (m reviewModel) updateDetail(msg tea.KeyMsg) (reviewModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
	}
	return m, nil
}

func badge(o results.Outcome) string {
	switch {
	case o.HasScore:
		return fmt.Sprintf("%.3f", o.Score)
	case o.OK():
		return "ok"
	default:
		return "FAILED"
	}
}

func (m reviewModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return m.st.text.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return m.st.text.Render(content)
	}
	return strings.Trim(rendered, "\n")
}

func (m reviewModel) renderDetail(it results.ReviewItem) string {
	var sb strings.Builder
	sb.WriteString(m.st.title.Render(it.Fragment.Location()))
	sb.WriteString("  ")
	sb.WriteString(m.st.dim.Render(badge(it.Outcome)))
	sb.WriteString("\n\n")
	sb.WriteString(renderFragment(it.Fragment, m.theme.Chroma, m.st.gutter))
	sb.WriteString("\n\n")
	sb.WriteString(m.st.dim.Render(strings.Repeat("─", max(m.viewport.Width-2, 3))))
	sb.WriteString("\n")
	if it.Outcome.OK() {
		sb.WriteString(m.renderMarkdown(it.Outcome.Text))
	} else {
		sb.WriteString(m.st.err.Render("FAILED: " + it.Outcome.Error))
	}
	sb.WriteString("\n")
	return sb.String()
}

// fitLeft keeps the tail of s within room display cells, marking the cut
// with an ellipsis.
func fitLeft(s string, room int) string {
	w := ansi.StringWidth(s)
	if w <= room || room <= 1 {
		return s
	}
	// A wide rune straddling the cut is kept whole, so widen the cut until
	// the result fits.
	for n := w - room + 1; ; n++ {
		if out := ansi.TruncateLeft(s, n, "…"); ansi.StringWidth(out) <= room {
			return out
		}
	}
}

func (m reviewModel) renderList(width int) string {
	inner := max(width-2, 4)
	end := min(m.offset+m.visibleRows(), len(m.items))

	var rows []string
	for i := m.offset; i < end; i++ {
		it := m.items[i]
		b := badge(it.Outcome)
		loc := fitLeft(it.Fragment.Location(), inner-ansi.StringWidth(b)-1)
		row := loc + strings.Repeat(" ", max(inner-ansi.StringWidth(loc)-ansi.StringWidth(b), 1)) + b

		style := m.st.listItem
		if i == m.cursor {
			style = m.st.selected
		} else if !it.Outcome.OK() {
			style = m.st.err
		}
		rows = append(rows, style.Width(inner).MaxWidth(inner).Render(row))
	}
	return strings.Join(rows, "\n")
}

func (m reviewModel) View() string {
	sum := results.Summarize(m.items)
	header := m.st.statusBar.Width(m.width).Render(fmt.Sprintf("%s  %d fragments, %d answered, %d failed",
		m.question, sum.Total, sum.Answered, sum.Failed))

	listPane, detailPane := m.st.pane, m.st.pane
	if m.focus == focusList {
		listPane = m.st.focused
	} else {
		detailPane = m.st.focused
	}

	lw := m.listWidth()
	paneH := m.paneHeight() - 2
	detail := detailPane.Width(max(m.width-lw-2, 10)).Height(paneH).Render(m.viewport.View())
	list := listPane.Width(lw - 2).Height(paneH).Render(m.renderList(lw))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, detail, list),
		m.help.View(m.keys),
	)
}
