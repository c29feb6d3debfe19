// Package tui is the interactive two-tab surface: ask questions about
// the ingested documents, or generate an RFP and export it as .docx.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rfpgpt/internal/docx"
)

// QAPort is the TUI-facing subset of the QA answering service.
type QAPort interface {
	Answer(question string) (string, error)
}

// RFPPort is the TUI-facing subset of the RFP generation service.
type RFPPort interface {
	Generate(requirement string) (string, error)
}

const exportFilename = "Generated_RFP.docx"

type tab int

const (
	tabAsk tab = iota
	tabRFP
)

type answerMsg struct {
	question string
	answer   string
	err      error
}

type rfpMsg struct {
	text string
	err  error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	qa  QAPort
	rfp RFPPort

	active      tab
	input       textinput.Model
	requirement textarea.Model
	viewport    viewport.Model
	spin        spinner.Model

	conversation []string
	rfpText      string
	busy         bool
	status       string
	ready        bool
}

// New creates a new TUI model instance.
func New(qa QAPort, rfp RFPPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	ta := textarea.New()
	ta.Placeholder = "Describe the requirement, then press Ctrl+G"
	ta.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(0, 0)
	return Model{
		qa:          qa,
		rfp:         rfp,
		input:       ti,
		requirement: ta,
		viewport:    vp,
		spin:        sp,
		status:      "Ready. Tab switches between Ask and RFP.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := contentBoxStyle.GetFrameSize()
		reserved := 2 + 1 + 6 + fh // tab bar + status + input area + frame
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.currentContent())
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.conversation = append(m.conversation,
				questionStyle.Render("You: ")+msg.question,
				answerStyle.Render("Assistant: ")+msg.answer,
				"")
			m.status = "Answered."
		}
		m.viewport.SetContent(m.currentContent())
		m.viewport.GotoBottom()
		return m, nil

	case rfpMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.rfpText = msg.text
			m.status = "RFP generated. Ctrl+S exports " + exportFilename + "."
		}
		m.viewport.SetContent(m.currentContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyTab && !m.busy {
			m.switchTab()
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		switch m.active {
		case tabAsk:
			if msg.Type == tea.KeyEnter {
				q := strings.TrimSpace(m.input.Value())
				if q == "" {
					return m, nil
				}
				m.input.Reset()
				return m.startWork("Searching and answering...", askCmd(m.qa, q))
			}
		case tabRFP:
			switch msg.Type {
			case tea.KeyCtrlG:
				req := strings.TrimSpace(m.requirement.Value())
				if req == "" {
					m.status = "Please enter a requirement."
					return m, nil
				}
				return m.startWork("Generating RFP...", generateCmd(m.rfp, req))
			case tea.KeyCtrlS:
				if m.rfpText == "" {
					m.status = "Nothing to export yet."
					return m, nil
				}
				if err := docx.WriteFile(exportFilename, m.rfpText); err != nil {
					m.status = "Export failed: " + err.Error()
				} else {
					m.status = "Saved " + exportFilename + "."
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.active {
	case tabAsk:
		m.input, cmd = m.input.Update(msg)
	case tabRFP:
		m.requirement, cmd = m.requirement.Update(msg)
	}
	return m, cmd
}

// View renders the tab bar, content viewport, input area and status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var inputArea string
	switch m.active {
	case tabAsk:
		inputArea = inputBoxStyle.Render(m.input.View())
	case tabRFP:
		inputArea = inputBoxStyle.Render(m.requirement.View())
	}
	status := m.status
	if m.busy {
		status = m.spin.View() + " " + status
	}
	return m.tabBar() + "\n" +
		contentBoxStyle.Render(m.viewport.View()) + "\n" +
		inputArea + "\n" +
		statusStyle.Render(status)
}

func (m *Model) startWork(status string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = status
	return *m, tea.Batch(m.spin.Tick, cmd)
}

func (m *Model) switchTab() {
	if m.active == tabAsk {
		m.active = tabRFP
		m.input.Blur()
		m.requirement.Focus()
	} else {
		m.active = tabAsk
		m.requirement.Blur()
		m.input.Focus()
	}
	m.viewport.SetContent(m.currentContent())
}

func (m Model) currentContent() string {
	switch m.active {
	case tabRFP:
		if m.rfpText == "" {
			return "No RFP generated yet."
		}
		return m.rfpText
	default:
		if len(m.conversation) == 0 {
			return "Ask anything about the ingested documents."
		}
		return strings.Join(m.conversation, "\n")
	}
}

func (m Model) tabBar() string {
	names := []string{"Ask a Question", "Generate RFP"}
	rendered := make([]string, len(names))
	for i, name := range names {
		if tab(i) == m.active {
			rendered[i] = activeTabStyle.Render(name)
		} else {
			rendered[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func askCmd(qa QAPort, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := qa.Answer(question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func generateCmd(rfp RFPPort, requirement string) tea.Cmd {
	return func() tea.Msg {
		text, err := rfp.Generate(requirement)
		return rfpMsg{text: text, err: err}
	}
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder(), true, true, false, true)
	inactiveTabStyle = lipgloss.NewStyle().Faint(true).Padding(0, 2).Border(lipgloss.HiddenBorder(), true, true, false, true)
	contentBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	answerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// Run starts the TUI program and blocks until the user quits.
func Run(qa QAPort, rfp RFPPort) error {
	p := tea.NewProgram(New(qa, rfp), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
