package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/analysis"
	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/deck"
	"github.com/arcanaland/seer/internal/reading"
	"github.com/arcanaland/seer/internal/render"
)

type inputFocus int

const (
	focusQuestion inputFocus = iota
	focusIndices
)

// analysisMsg delivers one event of the analysis started for generation gen
type analysisMsg struct {
	gen    int
	event  analysis.Event
	closed bool
}

func waitForEvent(gen int, events <-chan analysis.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		return analysisMsg{gen: gen, event: e, closed: !ok}
	}
}

// composeModel is the question, draw and reading page
type composeModel struct {
	svc    *reading.Service
	ctx    context.Context
	logger *zap.Logger
	styles Styles

	question textinput.Model
	indices  textinput.Model
	focus    inputFocus
	countIdx int
	mode     reading.Mode

	spinner  spinner.Model
	viewport viewport.Model

	// gen tags the analysis in flight; events from older generations are dropped
	gen     int
	events  <-chan analysis.Event
	running bool

	asked     string
	askedMode reading.Mode
	cards     []card.Card
	text      string

	status    string
	statusErr bool

	width, height int
}

func newComposeModel(ctx context.Context, svc *reading.Service, logger *zap.Logger, styles Styles) composeModel {
	q := textinput.New()
	q.Placeholder = "What would you like to ask the cards?"
	q.Prompt = "❯ "
	q.CharLimit = 500
	q.Focus()

	idx := textinput.New()
	idx.Placeholder = "e.g. 3, 17, 42"
	idx.Prompt = "# "
	idx.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Label

	vp := viewport.New(0, 0)
	vp.SetContent(styles.Muted.Render("Your reading will appear here."))

	return composeModel{
		svc:      svc,
		ctx:      ctx,
		logger:   logger,
		styles:   styles,
		question: q,
		indices:  idx,
		countIdx: 1,
		mode:     reading.Auto,
		spinner:  sp,
		viewport: vp,
	}
}

func (m composeModel) count() int {
	return reading.ValidCounts[m.countIdx]
}

func (m composeModel) Update(msg tea.Msg) (composeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case analysisMsg:
		return m.handleAnalysis(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m composeModel) handleKey(msg tea.KeyMsg) (composeModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.draw()

	case "ctrl+n":
		m.countIdx = (m.countIdx + 1) % len(reading.ValidCounts)
		return m, nil

	case "ctrl+p":
		m.countIdx = (m.countIdx + len(reading.ValidCounts) - 1) % len(reading.ValidCounts)
		return m, nil

	case "ctrl+t":
		if m.mode == reading.Auto {
			m.mode = reading.Manual
		} else {
			m.mode = reading.Auto
			m.setFocus(focusQuestion)
		}
		m.layout()
		return m, nil

	case "tab", "shift+tab":
		if m.mode == reading.Manual {
			if m.focus == focusQuestion {
				m.setFocus(focusIndices)
			} else {
				m.setFocus(focusQuestion)
			}
		}
		return m, nil

	case "ctrl+s":
		if m.running {
			m.svc.Stop()
			m.running = false
			m.setStatus("Reading stopped.", false)
		}
		return m, nil

	case "ctrl+y":
		if len(m.cards) == 0 {
			m.setStatus("Draw some cards first.", true)
			return m, nil
		}
		m.copySummary()
		return m, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusIndices {
		m.indices, cmd = m.indices.Update(msg)
	} else {
		m.question, cmd = m.question.Update(msg)
	}
	return m, cmd
}

func (m *composeModel) setFocus(f inputFocus) {
	m.focus = f
	if f == focusIndices {
		m.question.Blur()
		m.indices.Focus()
		return
	}
	m.indices.Blur()
	m.question.Focus()
}

func (m *composeModel) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// draw validates the inputs, draws from a fresh deck and starts the reading,
// stopping any reading still running.
func (m composeModel) draw() (composeModel, tea.Cmd) {
	question := strings.TrimSpace(m.question.Value())
	if question == "" {
		m.setStatus("Type a question first.", true)
		return m, nil
	}

	var indices []int
	if m.mode == reading.Manual {
		var err error
		if indices, err = deck.ParseIndices(m.indices.Value()); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
	}

	cards, err := m.svc.Draw(m.mode, m.count(), indices)
	if err != nil {
		m.setStatus(err.Error(), true)
		if m.mode == reading.Manual {
			m.setFocus(focusIndices)
		}
		return m, nil
	}

	m.gen++
	m.events = m.svc.Analyze(m.ctx, question, cards)
	m.running = true
	m.asked, m.askedMode, m.cards, m.text = question, m.mode, cards, ""
	m.indices.SetValue("")
	m.setStatus("", false)
	m.layout()
	m.viewport.SetContent(m.styles.Muted.Render("Reading the cards..."))
	m.logger.Debug("reading started", zap.Int("generation", m.gen), zap.Int("cards", len(cards)))

	return m, tea.Batch(m.spinner.Tick, waitForEvent(m.gen, m.events))
}

func (m composeModel) handleAnalysis(msg analysisMsg) (composeModel, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	if msg.closed {
		m.running = false
		return m, nil
	}
	if msg.event.Kind != analysis.EventUpdate {
		m.logger.Debug("analysis event", zap.Int("generation", msg.gen), zap.Stringer("event", msg.event.Kind))
	}

	switch msg.event.Kind {
	case analysis.EventUpdate:
		m.text = msg.event.Text
		m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(m.text))
		m.viewport.GotoBottom()
		return m, waitForEvent(msg.gen, m.events)

	case analysis.EventComplete:
		m.running = false
		m.text = msg.event.Text
		m.viewport.SetContent(render.Markdown(m.text, m.viewport.Width))
		m.viewport.GotoTop()
		if _, err := m.svc.Record(m.asked, m.askedMode, m.cards, m.text); err != nil {
			m.setStatus("Reading not saved: "+err.Error(), true)
		} else {
			m.setStatus("Reading saved to history.", false)
		}

	case analysis.EventError:
		m.running = false
		m.text = msg.event.Text
		m.viewport.SetContent(m.styles.Error.Width(m.viewport.Width).Render(m.text))
		m.setStatus("The reading failed.", true)
	}
	return m, waitForEvent(msg.gen, m.events)
}

func (m *composeModel) copySummary() {
	summary := render.Summary(m.asked, card.Snapshots(m.cards))
	if err := clipboardWriteAll(summary); err != nil {
		m.setStatus("Clipboard unavailable: "+err.Error(), true)
		return
	}
	m.setStatus("Card summary copied to clipboard.", false)
}

func (m *composeModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.question.Width = max(w-6, 10)
	m.indices.Width = max(w-6, 10)
	m.layout()
}

// layout sizes the reading pane to the space the other sections leave
func (m *composeModel) layout() {
	used := 9 + len(m.cards)
	if m.mode == reading.Manual {
		used++
	}
	if len(m.cards) > 0 {
		used++
	}
	m.viewport.Width = max(m.width-4, 10)
	m.viewport.Height = max(m.height-used-2, 3)
}

func (m composeModel) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Seer") + s.Muted.Render(" · AI tarot readings") + "\n\n")
	b.WriteString(m.question.View() + "\n")

	settings := fmt.Sprintf("%s %s   %s %s",
		s.Label.Render("Cards:"), s.Value.Render(fmt.Sprintf("‹%d›", m.count())),
		s.Label.Render("Mode:"), s.Value.Render(string(m.mode)))
	b.WriteString(settings + "\n")
	if m.mode == reading.Manual {
		size := len(m.svc.Deck().Cards())
		b.WriteString(m.indices.View() + s.Muted.Render(fmt.Sprintf("  positions 1-%d", size)) + "\n")
	}

	if len(m.cards) > 0 {
		b.WriteString("\n")
		for i, c := range m.cards {
			b.WriteString(fmt.Sprintf("%2d. %s %s %s\n", i+1,
				s.Value.Render(c.Name), m.orientation(c.Orientation),
				s.Muted.Render(c.Interpretation())))
		}
	}

	header := s.Label.Render("Reading")
	if m.running {
		header += " " + m.spinner.View()
	}
	pane := s.Pane
	if m.running {
		pane = s.FocusedPane
	}
	b.WriteString("\n" + header + "\n")
	b.WriteString(pane.Width(max(m.width-2, 12)).Render(m.viewport.View()) + "\n")

	if m.status != "" {
		style := s.Success
		if m.statusErr {
			style = s.Error
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	b.WriteString(s.Muted.Render("enter draw · ctrl+n/ctrl+p cards · ctrl+t mode · tab field · ctrl+s stop · ctrl+y copy · ctrl+r history · ctrl+c quit"))

	return b.String()
}

func (m composeModel) orientation(o card.Orientation) string {
	if o == card.Reversed {
		return m.styles.Reversed.Render(string(o))
	}
	return m.styles.Upright.Render(string(o))
}
