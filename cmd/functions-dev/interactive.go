package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasm-functions/contract"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	entryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelect modelState = iota
	stateInput
	stateResult
)

// field describes one text input for an entry point.
type field struct {
	prompt      string
	placeholder string
}

var entryFields = map[string][]field{
	contract.ExportWebInvoke: {
		{prompt: "body: ", placeholder: "request body"},
		{prompt: "headers: ", placeholder: "Name: value; Other: value"},
		{prompt: "query: ", placeholder: "name=value&other=value"},
	},
	contract.ExportSpawnInvoke: {
		{prompt: "payload: ", placeholder: "spawn payload"},
	},
}

type interactiveModel struct {
	err      error
	global   *globalFlags
	session  *session
	filename string
	result   string
	entries  []string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type loadedMsg struct {
	err     error
	session *session
}

type resultMsg struct {
	err    error
	result string
}

func newInteractiveModel(global *globalFlags, filename string) *interactiveModel {
	return &interactiveModel{global: global, filename: filename}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	s, err := openSession(context.Background(), m.global, m.filename)
	return loadedMsg{session: s, err: err}
}

func (m *interactiveModel) close() {
	if m.session != nil {
		_ = m.session.Close(context.Background())
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				m.close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				if len(m.entries) == 0 {
					return m, nil
				}
				m.prepareInputs()
				m.state = stateInput
				return m, nil
			case stateInput:
				return m, m.invoke
			case stateResult:
				m.state = stateSelect
				m.result, m.err = "", nil
			}

		case "tab":
			if m.state == stateInput && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelect {
				m.state = stateSelect
				m.inputs = nil
				m.result, m.err = "", nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.entries = msg.session.runner.Entries()

	case resultMsg:
		m.result, m.err = msg.result, msg.err
		m.state = stateResult
	}

	if m.state == stateInput {
		cmds := make([]tea.Cmd, len(m.inputs))
		for i := range m.inputs {
			m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	fields := entryFields[m.entries[m.selected]]
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = f.prompt
		ti.Placeholder = f.placeholder
		ti.Width = 50
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) invoke() tea.Msg {
	ctx := context.Background()
	switch m.entries[m.selected] {
	case contract.ExportWebInvoke:
		headers, err := parsePairs(splitList(m.inputs[1].Value(), ";"), ":")
		if err != nil {
			return resultMsg{err: err}
		}
		query, err := parsePairs(splitList(m.inputs[2].Value(), "&"), "=")
		if err != nil {
			return resultMsg{err: err}
		}
		resp, err := m.session.runner.InvokeWeb(ctx, contract.WebRequest{
			Body:    []byte(m.inputs[0].Value()),
			Headers: headers,
			Query:   query,
		})
		if err != nil {
			return resultMsg{err: err}
		}
		var b strings.Builder
		printResponse(&b, resp)
		return resultMsg{result: b.String()}

	case contract.ExportSpawnInvoke:
		if err := m.session.runner.InvokeSpawn(ctx, []byte(m.inputs[0].Value())); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{result: "accepted"}
	}
	return resultMsg{err: fmt.Errorf("unknown entry point %q", m.entries[m.selected])}
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.session == nil {
		return "Loading module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("functions-dev"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		b.WriteString("Select an entry point:\n\n")
		for i, e := range m.entries {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + e))
			} else {
				b.WriteString("  " + entryStyle.Render(e))
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nhost calls so far: %d\n\n", m.session.runner.HostCalls())
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInput:
		fmt.Fprintf(&b, "Invoking %s\n\n", entryStyle.Render(m.entries[m.selected]))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter invoke • esc back"))

	case stateResult:
		fmt.Fprintf(&b, "Result of %s:\n\n", entryStyle.Render(m.entries[m.selected]))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}
	return b.String()
}

func runInteractive(global *globalFlags, filename string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	_, err := tea.NewProgram(newInteractiveModel(global, filename), tea.WithAltScreen()).Run()
	return err
}
