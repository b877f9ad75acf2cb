package tui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/arcanaland/seer/internal/analysis"
	"github.com/arcanaland/seer/internal/reading"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

type page int

const (
	pageCompose page = iota
	pageHistory
)

// Model is the root of the full-screen UI
type Model struct {
	svc    *reading.Service
	logger *zap.Logger

	page    page
	compose composeModel
	history historyModel
}

func New(ctx context.Context, svc *reading.Service, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("tui")
	styles := DefaultStyles()

	return Model{
		svc:     svc,
		logger:  logger,
		compose: newComposeModel(ctx, svc, logger, styles),
		history: newHistoryModel(svc.History(), logger, styles),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.compose.SetSize(msg.Width, msg.Height)
		m.history.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.svc.Stop()
			return m, tea.Quit
		case "ctrl+r":
			if m.page == pageCompose {
				m.page = pageHistory
				return m, m.history.refresh()
			}
		case "esc":
			if m.page == pageHistory && !m.history.filtering() && !m.history.confirmDelete {
				m.page = pageCompose
				return m, nil
			}
		}

		if m.page == pageHistory {
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
		m.compose, cmd = m.compose.Update(msg)
		return m, cmd
	}

	// Non-key messages: analysis events and ticks belong to compose even
	// while history is shown.
	m.compose, cmd = m.compose.Update(msg)
	if m.page != pageHistory {
		return m, cmd
	}
	var hcmd tea.Cmd
	if am, ok := msg.(analysisMsg); ok && am.event.Kind == analysis.EventComplete {
		hcmd = m.history.refresh()
	} else {
		m.history, hcmd = m.history.Update(msg)
	}
	return m, tea.Batch(cmd, hcmd)
}

func (m Model) View() string {
	if m.page == pageHistory {
		return m.history.View()
	}
	return m.compose.View()
}

// Run starts the full-screen UI and blocks until the user quits
func Run(ctx context.Context, svc *reading.Service, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("history not saved on exit", zap.Error(err))
		}
	}()

	p := tea.NewProgram(New(ctx, svc, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
