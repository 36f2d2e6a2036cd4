// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// sourcesHeight is the number of rows given to the sources panel.
const sourcesHeight = 10

// View is the chat view. It owns one conversation at a time.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	factory driving.ConversationFactory
	ctx     context.Context

	conversation driving.AnswerService
	input        *input.QuestionInput
	transcript   viewport.Model
	sources      *list.SourceList

	turns       []domain.Turn
	showSources bool
	thinking    bool
	width       int
	height      int
}

// NewView creates a chat view with a fresh conversation.
func NewView(s *styles.Styles, km *keymap.KeyMap, factory driving.ConversationFactory) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		factory:    factory,
		ctx:        context.Background(),
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 20),
		sources:    list.NewSourceList(s),
		width:      80,
		height:     24,
	}
	if factory != nil {
		v.conversation = factory.NewConversation()
	}
	v.refresh()
	return v
}

// WithContext sets the context passed to the answer pipeline.
func (v *View) WithContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// SessionID returns the current conversation's session, or "".
func (v *View) SessionID() string {
	if v.conversation == nil {
		return ""
	}
	return v.conversation.SessionID()
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// Turns returns the displayed transcript.
func (v *View) Turns() []domain.Turn {
	return v.turns
}

// ShowingSources reports whether the sources panel is visible.
func (v *View) ShowingSources() bool {
	return v.showSources
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.AnswerReceived:
		v.thinking = false
		text := ""
		var sources []domain.Match
		if msg.Answer != nil {
			text = msg.Answer.Text
			sources = msg.Answer.Sources
		}
		v.turns = append(v.turns, domain.Turn{Role: domain.RoleAssistant, Content: text})
		v.sources.SetSources(sources)
		v.refresh()
		return v, v.input.Focus()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.ToggleSources):
		v.showSources = !v.showSources
		v.layout()
		return v, nil

	case key.Matches(msg, v.keymap.NewSession):
		if v.thinking {
			return v, nil
		}
		return v, v.NewSession()

	case key.Matches(msg, v.keymap.ScrollUp), key.Matches(msg, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keymap.Send):
		return v, v.submit()
	}

	// Arrow keys move through sources; j/k stay typeable.
	if v.showSources && msg.Type != tea.KeyRunes &&
		(key.Matches(msg, v.keymap.Up) || key.Matches(msg, v.keymap.Down)) {
		v.sources.Update(msg)
		return v, nil
	}

	if v.thinking {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question. Blank input and questions typed while
// an answer is pending are ignored.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.thinking || v.conversation == nil {
		return nil
	}

	v.input.Reset()
	v.thinking = true
	v.turns = append(v.turns, domain.Turn{Role: domain.RoleUser, Content: question})
	v.refresh()

	conversation := v.conversation
	ctx := v.ctx
	return func() tea.Msg {
		return messages.AnswerReceived{Answer: conversation.AskDetailed(ctx, question)}
	}
}

// NewSession discards the on-screen transcript and starts a new
// conversation. The old session stays recorded.
func (v *View) NewSession() tea.Cmd {
	if v.factory == nil {
		return nil
	}
	v.conversation = v.factory.NewConversation()
	v.turns = nil
	v.sources.SetSources(nil)
	v.input.Reset()
	v.refresh()
	id := v.conversation.SessionID()
	return func() tea.Msg { return messages.SessionStarted{SessionID: id} }
}

// SetDimensions resizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.layout()
}

func (v *View) layout() {
	// Input takes three rows with its border.
	h := v.height - 3
	if v.showSources {
		h -= sourcesHeight
		v.sources.SetDimensions(v.width, sourcesHeight)
	}
	if h < 3 {
		h = 3
	}
	v.transcript.Width = v.width
	v.transcript.Height = h
	v.refresh()
}

func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask about the Constitution of India or criminal law.")
	}

	wrap := lipgloss.NewStyle().Width(v.width)
	blocks := make([]string, 0, len(v.turns)+1)
	for _, t := range v.turns {
		prefix := v.styles.UserTurn.Render("You: ")
		if t.Role == domain.RoleAssistant {
			prefix = v.styles.AssistantTurn.Render("Vidhi: ")
		}
		blocks = append(blocks, wrap.Render(prefix+t.Content))
	}
	if v.thinking {
		blocks = append(blocks, v.styles.Muted.Render("Thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	parts := []string{v.transcript.View()}
	if v.showSources {
		parts = append(parts, v.sources.View())
	}
	parts = append(parts, v.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
