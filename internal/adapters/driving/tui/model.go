// Package tui implements the interactive ask view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// answerMsg delivers a completed answer to the model.
type answerMsg struct {
	answer *domain.Answer
}

// answerErrMsg delivers a failed ask to the model.
type answerErrMsg struct {
	err error
}

// Model is the Bubble Tea model for the ask view.
type Model struct {
	answerer driving.AnswerService
	input    textinput.Model
	viewport viewport.Model
	answer   *domain.Answer
	status   string
	asking   bool
	ready    bool
}

// New creates the ask view model.
func New(answerer driving.AnswerService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		answerer: answerer,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + ah // header, status, box frames
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-3)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q":
			// Only quit on a bare q; inside a question it is a letter.
			if m.input.Value() == "" {
				return m, tea.Quit
			}
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question != "" && !m.asking {
				m.asking = true
				m.status = "Thinking..."
				return m, ask(m.answerer, question)
			}
			return m, nil
		case "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.asking = false
		m.answer = msg.answer
		if msg.answer.Found {
			m.status = fmt.Sprintf("Answered from %d sources.", len(msg.answer.Sources))
		} else {
			m.status = "No relevant context found."
		}
		m.viewport.SetContent(m.renderAnswer())
		m.input.SetValue("")
		return m, nil

	case answerErrMsg:
		m.asking = false
		m.status = "Error: " + msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the ask view layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Membox")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "Ask a question to get started."
	}
	text := m.answer.Text
	if m.answer.Found && len(m.answer.Sources) > 0 {
		lines := make([]string, 0, len(m.answer.Sources))
		for _, s := range m.answer.Sources {
			lines = append(lines, "  - "+s)
		}
		text += "\n\n" + sourceStyle.Render("Sources:\n"+strings.Join(lines, "\n"))
	}
	return text
}

// ask runs the question off the update loop and delivers the outcome as
// a message.
func ask(answerer driving.AnswerService, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := answerer.Ask(context.Background(), question, nil, 0)
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{answer: answer}
	}
}

// Run starts the interactive ask view and blocks until it exits.
func Run(answerer driving.AnswerService) error {
	p := tea.NewProgram(New(answerer), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ask view: %w", err)
	}
	return nil
}
