// Package sessions provides the recorded sessions view for the TUI.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// errNoSessionService is reported when the view has nothing to read from.
var errNoSessionService = errors.New("session service not available")

// View lists recorded sessions and shows a selected transcript.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.SessionService
	ctx     context.Context

	sessions   []domain.SessionSummary
	selected   int
	transcript *domain.Session
	reader     viewport.Model
	loading    bool
	err        error
	width      int
	height     int
}

// NewView creates a sessions view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		reader:  viewport.New(80, 20),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for store reads.
func (v *View) WithContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// Init loads the session list.
func (v *View) Init() tea.Cmd {
	return v.Reload()
}

// Reload returns a command that reads the session list.
func (v *View) Reload() tea.Cmd {
	v.loading = true
	v.transcript = nil
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.SessionsLoaded{Err: errNoSessionService}
		}
		sessions, err := service.List(ctx)
		return messages.SessionsLoaded{Sessions: sessions, Err: err}
	}
}

func (v *View) open(id string) tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.TranscriptLoaded{Err: errNoSessionService}
		}
		session, err := service.Get(ctx, id)
		return messages.TranscriptLoaded{Session: session, Err: err}
	}
}

// Viewing reports whether a transcript is open.
func (v *View) Viewing() bool {
	return v.transcript != nil
}

// Sessions returns the loaded summaries.
func (v *View) Sessions() []domain.SessionSummary {
	return v.sessions
}

// Selected returns the highlighted row.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Update handles messages for the sessions view. Esc from the list is
// left to the parent; Esc from a transcript returns to the list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SessionsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.sessions = msg.Sessions
			if v.selected >= len(v.sessions) {
				v.selected = 0
			}
		}
		return v, nil

	case messages.TranscriptLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.transcript = msg.Session
			v.reader.SetContent(v.renderTranscript())
			v.reader.GotoTop()
		}
		return v, nil

	case tea.KeyMsg:
		if v.transcript != nil {
			if key.Matches(msg, v.keymap.Back) {
				v.transcript = nil
				return v, nil
			}
			var cmd tea.Cmd
			v.reader, cmd = v.reader.Update(msg)
			return v, cmd
		}
		switch {
		case key.Matches(msg, v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case key.Matches(msg, v.keymap.Down):
			if v.selected < len(v.sessions)-1 {
				v.selected++
			}
		case key.Matches(msg, v.keymap.Select):
			if len(v.sessions) > 0 {
				return v, v.open(v.sessions[v.selected].ID)
			}
		}
	}
	return v, nil
}

// SetDimensions resizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.reader.Width = width
	v.reader.Height = height - 2
	if v.transcript != nil {
		v.reader.SetContent(v.renderTranscript())
	}
}

func (v *View) renderTranscript() string {
	if v.transcript == nil {
		return ""
	}
	wrap := lipgloss.NewStyle().Width(v.width)
	blocks := make([]string, 0, len(v.transcript.Turns))
	for _, t := range v.transcript.Turns {
		prefix := v.styles.UserTurn.Render("You: ")
		if t.Role == domain.RoleAssistant {
			prefix = v.styles.AssistantTurn.Render("Vidhi: ")
		}
		blocks = append(blocks, wrap.Render(prefix+t.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the list or the open transcript.
func (v *View) View() string {
	if v.transcript != nil {
		title := v.styles.Title.Render("Session " + v.transcript.ID)
		return lipgloss.JoinVertical(lipgloss.Left, title, "", v.reader.View())
	}

	lines := []string{v.styles.Title.Render("Sessions"), ""}
	switch {
	case v.loading:
		lines = append(lines, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		lines = append(lines, v.styles.Error.Render("Error: "+v.err.Error()))
	case len(v.sessions) == 0:
		lines = append(lines, v.styles.Muted.Render("No recorded sessions"))
	default:
		for i, s := range v.sessions {
			row := fmt.Sprintf("%s  %s  %d turns", s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.Turns)
			if i == v.selected {
				lines = append(lines, v.styles.Selected.Render("> "+row))
			} else {
				lines = append(lines, v.styles.Normal.Render("  "+row))
			}
		}
	}
	return strings.Join(lines, "\n")
}
