package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anooppoommen/libsignal-client/hostjs"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const historyLimit = 20

// entry is one evaluated line and its outcome.
type entry struct {
	src    string
	result string
	err    error
}

type replModel struct {
	rt      *hostjs.Runtime
	input   textinput.Model
	history []entry
	busy    bool
}

type evalResultMsg struct {
	src    string
	result string
	err    error
}

func newReplModel(rt *hostjs.Runtime) *replModel {
	ti := textinput.New()
	ti.Placeholder = "add(1, 2)"
	ti.Prompt = "js> "
	ti.PromptStyle = promptStyle
	ti.Width = 72
	ti.Focus()
	return &replModel{rt: rt, input: ti}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			if src == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			return m, m.eval(src)
		}

	case evalResultMsg:
		m.busy = false
		m.history = append(m.history, entry{src: msg.src, result: msg.result, err: msg.err})
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// eval runs the source on the engine loop off the TUI goroutine.
func (m *replModel) eval(src string) tea.Cmd {
	rt := m.rt
	return func() tea.Msg {
		out, err := rt.EvalString(src)
		return evalResultMsg{src: src, result: out, err: err}
	}
}

func (m *replModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bridge REPL"))
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(promptStyle.Render("js> "))
		b.WriteString(e.src)
		b.WriteString("\n")
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
		} else {
			b.WriteString(resultStyle.Render(e.result))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter evaluate • esc quit • try add(1, 2), accumulatorNew(), failUntrusted('mallory')"))

	return b.String()
}

func runInteractive(rt *hostjs.Runtime) error {
	p := tea.NewProgram(newReplModel(rt), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
