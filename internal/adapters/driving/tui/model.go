// Package tui provides an interactive terminal front end for asking
// questions over the indexed document.
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

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// answerMsg carries the outcome of an ask back into the update loop.
type answerMsg struct {
	record domain.AnswerRecord
	err    error
}

// Model is the Bubble Tea model for the docqa TUI.
type Model struct {
	answers driving.AnswerService
	qtype   domain.QuestionType

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	status  string
	waiting bool
	ready   bool
}

// New creates a TUI model asking questions of the given type.
func New(answers driving.AnswerService, qtype domain.QuestionType) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		answers:  answers,
		qtype:    qtype,
		input:    ti,
		viewport: viewport.New(0, 0),
		spin:     sp,
		status:   "Ready. Ctrl+C to quit.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerStyle.GetFrameSize()
		_, qh := questionStyle.GetFrameSize()
		vh := msg.Height - ah - qh - 4
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.waiting = true
			m.status = "Thinking..."
			return m, tea.Batch(m.spin.Tick, m.ask(question))
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.status = statusStyle.Render(fmt.Sprintf("Answered %q", msg.record.Question))
		m.viewport.SetContent(renderRecord(msg.record))
		m.input.SetValue("")
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docqa")
	summary := summaryStyle.Render(fmt.Sprintf("question type: %s", m.qtype))

	status := m.status
	if m.waiting {
		status = m.spin.View() + " Thinking..."
	}

	return header + "\n" +
		summary + "\n" +
		answerStyle.Render(m.viewport.View()) + "\n" +
		questionStyle.Render(m.input.View()) + "\n" +
		status
}

// ask runs the question off the update loop.
func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.answers.Ask(context.Background(), question, m.qtype)
		return answerMsg{record: rec, err: err}
	}
}

// renderRecord formats an answer record for the viewport.
func renderRecord(rec domain.AnswerRecord) string {
	if !rec.Success() {
		return errorStyle.Render("Question failed: " + rec.Err)
	}

	var b strings.Builder
	switch rec.Result.Kind {
	case domain.ParseStructured:
		b.WriteString(rec.Result.Answer)
		if rec.Result.Sources != "" {
			b.WriteString("\n\n")
			b.WriteString(sourceStyle.Render("Sources: " + rec.Result.Sources))
		}
		if rec.Result.Excerpts != "" {
			b.WriteString("\n\n")
			b.WriteString(summaryStyle.Render(rec.Result.Excerpts))
		}
	default:
		b.WriteString(rec.Result.Raw)
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
