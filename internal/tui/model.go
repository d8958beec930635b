package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"careerag/internal/generator"
	"careerag/internal/service"
	"careerag/internal/session"
)

// Assistant is the TUI-facing subset of the RAG service.
type Assistant interface {
	AskStream(ctx context.Context, question string, sink generator.Sink) (*service.Answer, error)
	Session() *session.Session
}

type deltaMsg string

type doneMsg struct {
	answer *service.Answer
	err    error
}

// stream carries one in-flight generation. Deltas and the final result
// arrive on separate channels so Update never blocks.
type stream struct {
	deltas chan string
	done   chan doneMsg
	cancel context.CancelFunc
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service    Assistant
	input      textinput.Model
	viewport   viewport.Model
	transcript string
	stream     *stream
	partial    string
	summary    string
	status     string
	ready      bool
}

// New creates a new TUI model instance.
func New(svc Assistant, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your resume and job postings"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: svc, input: ti, viewport: vp, summary: summary, status: "Loaded. Type a question, /clear resets the conversation."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and stream events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			if m.stream != nil {
				m.stream.cancel()
			}
			return m, tea.Quit
		}
		if msg.String() == "enter" && m.stream == nil {
			q := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			switch {
			case q == "":
				return m, nil
			case q == "/clear":
				m.service.Session().Clear()
				m.transcript = ""
				m.status = "Conversation cleared."
				m.refresh()
				return m, nil
			default:
				return m.startStream(q)
			}
		}
	case deltaMsg:
		m.partial += string(msg)
		m.refresh()
		return m, listenStream(m.stream)
	case doneMsg:
		st := m.stream
		m.stream = nil
		if msg.err != nil {
			// keep whatever text already streamed in rather than discarding it
			if m.partial != "" {
				m.transcript += "Assistant: " + m.partial + " [interrupted]\n\n"
			}
			m.status = "Error: " + msg.err.Error()
		} else {
			m.transcript += "Assistant: " + msg.answer.Text + "\n"
			m.transcript += renderSources(msg.answer) + "\n\n"
			m.status = "Ready."
		}
		m.partial = ""
		if st != nil {
			st.cancel()
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current transcript.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Career Assistant")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	chat := chatBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + chat + "\n" + input + "\n" + status
}

// startStream launches AskStream in a goroutine and begins listening. The
// goroutine owns the channels; Update only ever receives from them.
func (m Model) startStream(question string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	st := &stream{
		deltas: make(chan string, 32),
		done:   make(chan doneMsg, 1),
		cancel: cancel,
	}
	m.stream = st
	m.partial = ""
	m.transcript += "You: " + question + "\n"
	m.status = "Thinking..."
	m.refresh()

	go func() {
		answer, err := m.service.AskStream(ctx, question, func(delta string) error {
			select {
			case st.deltas <- delta:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		st.done <- doneMsg{answer: answer, err: err}
		close(st.deltas)
	}()
	return m, listenStream(st)
}

// listenStream waits for the next delta or the final result.
func listenStream(st *stream) tea.Cmd {
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case d, ok := <-st.deltas:
			if ok {
				return deltaMsg(d)
			}
			return <-st.done
		case msg := <-st.done:
			// discard buffered deltas; the final answer carries the full text
			for range st.deltas {
			}
			return msg
		}
	}
}

func (m *Model) refresh() {
	content := m.transcript
	if m.partial != "" {
		content += "Assistant: " + m.partial
	}
	if content == "" {
		content = "No conversation yet."
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func renderSources(a *service.Answer) string {
	if len(a.Sources) == 0 {
		return sourceStyle.Render("Sources: none")
	}
	parts := make([]string, len(a.Sources))
	for i, s := range a.Sources {
		parts[i] = fmt.Sprintf("%s (%s)", s.Document, s.Type)
	}
	return sourceStyle.Render("Sources: " + strings.Join(parts, ", "))
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
