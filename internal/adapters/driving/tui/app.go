package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/views/sessions"
	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView     *chat.View
	sessionsView *sessions.View
	statusBar    *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help closes.
	previousView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		chatView:     chat.NewView(s, km, ports.Conversations),
		sessionsView: sessions.NewView(s, km, ports.Sessions),
		statusBar:    status.NewBar(s, km),
		currentView:  messages.ViewChat,
	}
	a.statusBar.SetSessionID(a.chatView.SessionID())
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.sessionsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("vidhi - Legal Assistant"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		a.recordAnswer(msg.Answer)
		return a, cmd

	case messages.SessionStarted:
		a.statusBar.SetSessionID(msg.SessionID)
		a.statusBar.Clear()
		a.err = nil
		return a, nil

	case messages.SessionsLoaded, messages.TranscriptLoaded:
		a.sessionsView, cmd = a.sessionsView.Update(msg)
		a.syncBrowseView()
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		if msg.Err != nil {
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if key.Matches(msg, a.keymap.Quit) {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if key.Matches(msg, a.keymap.Back) || key.Matches(msg, a.keymap.Help) {
			return a, a.switchTo(a.previousView)
		}
		return a, nil
	}

	if key.Matches(msg, a.keymap.Help) {
		return a, a.switchTo(messages.ViewHelp)
	}

	switch a.currentView {
	case messages.ViewSessions, messages.ViewTranscript:
		if key.Matches(msg, a.keymap.Back) && !a.sessionsView.Viewing() {
			return a, a.switchTo(messages.ViewChat)
		}
		a.sessionsView, cmd = a.sessionsView.Update(msg)
		a.syncBrowseView()
		return a, cmd

	default:
		if key.Matches(msg, a.keymap.Sessions) && !a.chatView.Thinking() {
			return a, a.switchTo(messages.ViewSessions)
		}
		a.chatView, cmd = a.chatView.Update(msg)
		if a.chatView.Thinking() {
			a.statusBar.SetState(status.StateThinking)
		}
		return a, cmd
	}
}

// syncBrowseView tracks whether the sessions view has a transcript open.
func (a *App) syncBrowseView() {
	if a.currentView != messages.ViewSessions && a.currentView != messages.ViewTranscript {
		return
	}
	if a.sessionsView.Viewing() {
		a.currentView = messages.ViewTranscript
	} else {
		a.currentView = messages.ViewSessions
	}
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp && a.currentView != messages.ViewHelp {
		a.previousView = a.currentView
	}
	a.currentView = view

	switch view {
	case messages.ViewSessions:
		a.statusBar.SetState(status.StateBrowsing)
		return a.sessionsView.Reload()
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	case messages.ViewTranscript:
		a.statusBar.SetState(status.StateBrowsing)
	default:
		a.restoreChatStatus()
		return a.chatView.Init()
	}
	return nil
}

func (a *App) restoreChatStatus() {
	switch {
	case a.chatView.Thinking():
		a.statusBar.SetState(status.StateThinking)
	case a.err != nil:
		a.statusBar.SetState(status.StateError)
	default:
		a.statusBar.SetState(status.StateReady)
	}
}

func (a *App) recordAnswer(answer *domain.Answer) {
	a.err = nil
	a.statusBar.Clear()
	if answer != nil {
		if answer.Status == domain.AnswerError {
			a.err = errors.New(answer.Text)
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage("answer failed")
		} else {
			a.statusBar.SetSourceCount(len(answer.Sources))
		}
	}

	switch a.currentView {
	case messages.ViewSessions, messages.ViewTranscript:
		a.statusBar.SetState(status.StateBrowsing)
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewSessions, messages.ViewTranscript:
		body = a.sessionsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.chatView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar.View())
}

func (a *App) viewHelp() string {
	lines := []string{a.styles.Title.Render("Help"), ""}
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %-12s %s", h.Key, h.Desc))
		}
		lines = append(lines, "")
	}

	if a.ports.Settings != nil {
		if settings, err := a.ports.Settings.Get(); err == nil {
			lines = append(lines,
				a.styles.Subtitle.Render("Configuration"),
				fmt.Sprintf("  %-12s %s (%s)", "LLM", settings.LLM.Provider, settings.LLM.Model),
				fmt.Sprintf("  %-12s %s (%s)", "Embedding", settings.Embedding.Provider, settings.Embedding.Model),
				fmt.Sprintf("  %-12s %s", "Vectors", settings.VectorStore.Backend.Description()),
				"",
			)
		}
	}

	lines = append(lines, a.styles.Muted.Render("[esc] back"))
	return strings.Join(lines, "\n")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Status returns the status bar state.
func (a *App) Status() status.State {
	return a.statusBar.State()
}

// SessionID returns the active conversation's session.
func (a *App) SessionID() string {
	return a.chatView.SessionID()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions. One row goes to the status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	a.chatView.SetDimensions(width, height-1)
	a.sessionsView.SetDimensions(width, height-1)
}
