package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/card"
	"github.com/arcanaland/seer/internal/history"
	"github.com/arcanaland/seer/internal/render"
)

// historyItem adapts a history entry to list.Item
type historyItem struct {
	entry history.Entry
}

func (i historyItem) Title() string { return i.entry.Record.Question }
func (i historyItem) Description() string {
	r := i.entry.Record
	desc := fmt.Sprintf("#%d · %s · %d card(s)", i.entry.Index+1, r.Timestamp, len(r.Cards))
	if r.Mode != "" {
		desc += " · " + r.Mode
	}
	return desc
}
func (i historyItem) FilterValue() string { return i.entry.Record.Question }

// historyModel lists saved readings with a detail pane
type historyModel struct {
	store  *history.Store
	logger *zap.Logger
	styles Styles

	list     list.Model
	viewport viewport.Model

	focusDetail   bool
	confirmDelete bool
	shown         string // ID or timestamp of the record in the detail pane

	width, height int
}

func newHistoryModel(store *history.Store, logger *zap.Logger, styles Styles) historyModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Readings"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(accent)

	vp := viewport.New(0, 0)
	vp.SetContent(styles.Muted.Render("Select a reading to view it."))

	return historyModel{
		store:    store,
		logger:   logger,
		styles:   styles,
		list:     l,
		viewport: vp,
	}
}

// refresh reloads the list from the store, newest first
func (m *historyModel) refresh() tea.Cmd {
	entries := m.store.Recent(0)
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem{entry: e}
	}
	m.list.Title = fmt.Sprintf("Readings (%d)", len(entries))
	cmd := m.list.SetItems(items)
	m.shown = ""
	m.syncDetail()
	return cmd
}

func (m historyModel) selected() (history.Entry, bool) {
	item, ok := m.list.SelectedItem().(historyItem)
	if !ok {
		return history.Entry{}, false
	}
	return item.entry, true
}

// filtering reports whether keys belong to the list filter input
func (m historyModel) filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	var cmds []tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		if m.confirmDelete {
			return m.handleConfirm(key)
		}

		switch key.String() {
		case "tab":
			m.focusDetail = !m.focusDetail
			return m, nil
		case "d", "delete":
			if e, ok := m.selected(); ok {
				m.confirmDelete = true
				return m, m.list.NewStatusMessage(m.styles.Warning.Render(
					fmt.Sprintf("Delete reading #%d? (y/n)", e.Index+1)))
			}
			return m, nil
		case "c", "y":
			if e, ok := m.selected(); ok {
				text := render.Summary(e.Record.Question, e.Record.Cards)
				if err := clipboardWriteAll(text); err != nil {
					return m, m.list.NewStatusMessage(m.styles.Error.Render("Failed to copy card summary"))
				}
				return m, m.list.NewStatusMessage(m.styles.Success.Render(
					fmt.Sprintf("Copied card summary of reading #%d", e.Index+1)))
			}
			return m, nil
		}
	}

	_, isKey := msg.(tea.KeyMsg)
	updateList := !isKey || !m.focusDetail || m.filtering()
	updateViewport := !isKey || (m.focusDetail && !m.filtering())

	var cmd tea.Cmd
	if updateList {
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	if updateViewport {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncDetail()
	return m, tea.Batch(cmds...)
}

func (m historyModel) handleConfirm(key tea.KeyMsg) (historyModel, tea.Cmd) {
	m.confirmDelete = false
	if key.String() != "y" {
		return m, m.list.NewStatusMessage(m.styles.Muted.Render("Kept."))
	}

	e, ok := m.selected()
	if !ok {
		return m, nil
	}
	if err := m.store.Delete(e.Index); err != nil {
		m.logger.Warn("delete failed", zap.Int("position", e.Index+1), zap.Error(err))
		return m, m.list.NewStatusMessage(m.styles.Error.Render("Delete failed: " + err.Error()))
	}

	refresh := m.refresh()
	return m, tea.Batch(refresh, m.list.NewStatusMessage(m.styles.Success.Render(
		fmt.Sprintf("Deleted reading #%d", e.Index+1))))
}

// syncDetail shows the selected record in the detail pane
func (m *historyModel) syncDetail() {
	e, ok := m.selected()
	if !ok {
		if m.shown != "" || m.store.Len() == 0 {
			m.viewport.SetContent(m.styles.Muted.Render("No readings saved yet."))
		}
		m.shown = ""
		return
	}

	key := fmt.Sprintf("%d/%s/%s", e.Index, e.Record.ID, e.Record.Timestamp)
	if key == m.shown {
		return
	}
	m.shown = key
	m.viewport.SetContent(m.renderRecord(e))
	m.viewport.GotoTop()
}

func (m historyModel) renderRecord(e history.Entry) string {
	s := m.styles
	r := e.Record

	lines := []string{
		s.Title.Render(fmt.Sprintf("Reading #%d", e.Index+1)) + "  " + s.Muted.Render(r.Timestamp),
		s.Label.Render("Question: ") + r.Question,
		"",
	}
	for i, c := range r.Cards {
		o := s.Upright.Render(string(c.Orientation))
		if c.Orientation == card.Reversed {
			o = s.Reversed.Render(string(c.Orientation))
		}
		lines = append(lines,
			fmt.Sprintf("%d. %s (%s)", i+1, s.Value.Render(c.Name), o),
			s.Muted.Render("   "+c.Meaning+" · "+c.Interpretation))
	}
	lines = append(lines, "", s.Label.Render("Reading"), render.Markdown(r.Analysis, m.viewport.Width))

	return lipgloss.NewStyle().Width(m.viewport.Width).Render(strings.Join(lines, "\n"))
}

func (m *historyModel) SetSize(w, h int) {
	m.width, m.height = w, h

	const chromeW, chromeH = 4, 2
	paneH := max(h-3-chromeH, 3)
	listW := int(float64(w) * 0.35)
	viewW := w - listW

	m.list.SetSize(max(listW-chromeW, 10), paneH)
	m.viewport.Width = max(viewW-chromeW, 10)
	m.viewport.Height = paneH
	m.shown = ""
	m.syncDetail()
}

func (m historyModel) View() string {
	listW := int(float64(m.width) * 0.35)
	viewW := m.width - listW

	listStyle, viewStyle := m.styles.FocusedPane, m.styles.Pane
	if m.focusDetail {
		listStyle, viewStyle = m.styles.Pane, m.styles.FocusedPane
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Width(max(listW-2, 10)).Render(m.list.View()),
		viewStyle.Width(max(viewW-2, 10)).Render(m.viewport.View()),
	)
	help := m.styles.Muted.Render(" d delete · c copy summary · tab focus · / filter · esc back · ctrl+c quit")
	return lipgloss.JoinVertical(lipgloss.Left, main, help)
}
