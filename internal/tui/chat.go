package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eachlabs/solace/internal/chat"
	"github.com/eachlabs/solace/internal/transcript"
)

var (
	// Colors for chat
	chatPurple = lipgloss.Color("#A855F7")
	chatGreen  = lipgloss.Color("#22C55E")
	chatRed    = lipgloss.Color("#EF4444")
	chatGray   = lipgloss.Color("#6B7280")
	chatWhite  = lipgloss.Color("#F9FAFB")
	chatAmber  = lipgloss.Color("#FBBF24")

	// Styles for chat
	chatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(chatPurple).
			MarginBottom(1)

	chatUserMsgStyle = lipgloss.NewStyle().
			Foreground(chatWhite).
			Background(chatPurple).
			Padding(0, 1)

	chatUserLabelStyle = lipgloss.NewStyle().
			Foreground(chatPurple).
			Bold(true)

	chatAssistantLabelStyle = lipgloss.NewStyle().
				Foreground(chatGreen).
				Bold(true)

	chatAssistantMsgStyle = lipgloss.NewStyle().
				Foreground(chatWhite)

	chatAlertStyle = lipgloss.NewStyle().
			Foreground(chatRed).
			Bold(true)

	chatConfirmStyle = lipgloss.NewStyle().
				Foreground(chatAmber).
				Bold(true)

	chatInputBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(chatPurple).
				Padding(0, 1)

	chatInputBoxFocusedStyle = lipgloss.NewStyle().
					Border(lipgloss.RoundedBorder()).
					BorderForeground(chatGreen).
					Padding(0, 1)

	chatStatusStyle = lipgloss.NewStyle().
			Foreground(chatGray)

	chatHelpStyle = lipgloss.NewStyle().
			Foreground(chatGray)
)

// Options configure the chat model's chrome.
type Options struct {
	Title    string
	Subtitle string
	KeyMap   *KeyMap
}

// ChatModel is the bubbletea model for chat UI
type ChatModel struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     KeyMap

	client  *chat.Client
	log     *transcript.Log
	surface *Surface

	// State mirrored from the surface
	processing bool
	typing     bool
	clearSeen  int
	focusSeen  int
	alert      string
	confirm    *confirmRequest
	resetting  bool

	title    string
	subtitle string
	width    int
	height   int
	ready    bool

	// Context for in-flight exchanges
	ctx    context.Context
	cancel context.CancelFunc
}

// Messages
type refreshMsg struct{}
type exchangeDoneMsg struct{}
type resetDoneMsg struct{}

// NewChatModel creates a new chat TUI model. surface must be the one the
// client was built with, and log its renderer.
func NewChatModel(client *chat.Client, log *transcript.Log, surface *Surface, opts Options) ChatModel {
	keys := DefaultKeyMap()
	if opts.KeyMap != nil {
		keys = *opts.KeyMap
	}

	// Text area for input
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline = keys.Newline

	// Spinner for the typing indicator
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(chatPurple)

	// Viewport for messages
	vp := viewport.New(80, 20)

	title := opts.Title
	if title == "" {
		title = "solace"
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Every transcript change wakes the UI loop.
	log.Subscribe(surface.Poke)

	m := ChatModel{
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		keys:     keys,
		client:   client,
		log:      log,
		surface:  surface,
		title:    title,
		subtitle: opts.Subtitle,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.updateViewport()
	return m
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForChange(),
	)
}

func (m ChatModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case <-m.surface.notify:
			return refreshMsg{}
		}
	}
}

func (m ChatModel) runExchange(ex *chat.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ex.Run(ctx)
		return exchangeDoneMsg{}
	}
}

func (m ChatModel) runReset() tea.Cmd {
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		client.ResetConversation(ctx)
		return resetDoneMsg{}
	}
}

func (m ChatModel) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.surface.Close()
	return m, tea.Quit
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// A pending confirmation or alert takes every key.
		if m.confirm != nil {
			switch {
			case key.Matches(msg, m.keys.Yes):
				m.surface.answer(true)
			case key.Matches(msg, m.keys.No):
				m.surface.answer(false)
			}
			return m, m.sync()
		}
		if m.alert != "" {
			if key.Matches(msg, m.keys.Dismiss) {
				m.surface.dismissAlert()
			}
			return m, m.sync()
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()

		case key.Matches(msg, m.keys.Send):
			if m.processing {
				return m, nil
			}
			ex, ok := m.client.Begin(m.textarea.Value())
			cmd := m.sync()
			if !ok {
				return m, cmd
			}
			return m, tea.Batch(cmd, m.runExchange(ex))

		case key.Matches(msg, m.keys.Clear):
			if m.resetting {
				return m, nil
			}
			m.resetting = true
			return m, m.runReset()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 5
		helpHeight := 2
		viewportHeight := m.height - headerHeight - inputHeight - helpHeight - 2
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width-2, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width - 2
			m.viewport.Height = viewportHeight
		}

		m.textarea.SetWidth(m.width - 4)
		m.updateViewport()

	case refreshMsg:
		cmds = append(cmds, m.sync(), m.waitForChange())

	case exchangeDoneMsg:
		cmds = append(cmds, m.sync())

	case resetDoneMsg:
		m.resetting = false
		cmds = append(cmds, m.sync())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update textarea
	if !m.processing && m.confirm == nil && m.alert == "" {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sync applies the surface state requested by the controllers.
func (m *ChatModel) sync() tea.Cmd {
	st := m.surface.snapshot()
	var cmd tea.Cmd

	if st.clearSeq != m.clearSeen {
		m.clearSeen = st.clearSeq
		m.textarea.Reset()
	}

	if st.processing != m.processing {
		m.processing = st.processing
		if m.processing {
			m.textarea.Blur()
		}
	}

	if st.focusSeq != m.focusSeen {
		m.focusSeen = st.focusSeq
		if !m.processing {
			cmd = m.textarea.Focus()
		}
	}

	m.typing = st.typing
	m.alert = st.alert
	m.confirm = st.confirm

	m.updateViewport()
	return cmd
}

func (m *ChatModel) updateViewport() {
	var content strings.Builder

	for _, msg := range m.log.Entries() {
		switch msg.Sender {
		case transcript.SenderUser:
			content.WriteString(chatUserLabelStyle.Render("You") + "\n")
			content.WriteString(chatUserMsgStyle.Render(msg.Text) + "\n\n")

		case transcript.SenderAssistant:
			content.WriteString(chatAssistantLabelStyle.Render("AI") + "\n")
			content.WriteString(chatAssistantMsgStyle.Render(msg.Text) + "\n\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ChatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	// Header
	header := chatTitleStyle.Render(m.title)
	if m.subtitle != "" {
		header += "  " + chatStatusStyle.Render(m.subtitle)
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", m.width-2) + "\n")

	// Messages viewport
	b.WriteString(m.viewport.View() + "\n")

	// Typing indicator
	if m.typing {
		b.WriteString(m.spinner.View() + " " + chatStatusStyle.Render("Typing...") + "\n")
	} else {
		b.WriteString("\n")
	}

	// Input area
	b.WriteString(strings.Repeat("─", m.width-2) + "\n")

	inputStyle := chatInputBoxStyle
	if !m.processing {
		inputStyle = chatInputBoxFocusedStyle
	}
	b.WriteString(inputStyle.Render(m.textarea.View()) + "\n")

	// Prompt line
	switch {
	case m.confirm != nil:
		b.WriteString(chatConfirmStyle.Render(m.confirm.prompt + " (y/n)"))
	case m.alert != "":
		b.WriteString(chatAlertStyle.Render(m.alert) + "  " + chatHelpStyle.Render("enter to dismiss"))
	default:
		b.WriteString(chatHelpStyle.Render(m.keys.helpLine()))
	}

	return b.String()
}

// Run starts the chat TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, model ChatModel) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	model.cancel()
	model.surface.Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
