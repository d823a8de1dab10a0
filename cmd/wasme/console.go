package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-embedded/abi"
	"github.com/wippyai/wasm-embedded/hal"
	"github.com/wippyai/wasm-embedded/mock"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func consoleCommand() *cli.Command {
	return &cli.Command{
		Name:   "console",
		Usage:  "issue capability calls by hand from an interactive terminal",
		Flags:  backendFlags(),
		Action: consoleAction,
	}
}

func consoleAction(c *cli.Context) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return cli.Exit("console needs an interactive terminal", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// Log output would tear the alternate screen.
	installLogger(zap.NewNop())

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	m := newConsoleModel(cfg.Backend, backend.Engine())
	_, runErr := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err := backend.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type consoleModel struct {
	err      error
	hw       *hal.Engine
	title    string
	result   string
	funcs    []abi.Func
	inputs   []textinput.Model
	history  []string
	selected int
	focusIdx int
	state    modelState
}

type callResultMsg struct {
	err    error
	result string
}

// newConsoleModel lists every capability function hw provides.
func newConsoleModel(title string, hw *hal.Engine) *consoleModel {
	m := &consoleModel{hw: hw, title: title, state: stateSelectFunc}
	for _, f := range abi.Funcs {
		if hw.Provides(hal.Peripheral(f.Module)) {
			m.funcs = append(m.funcs, f)
		}
	}
	return m
}

func (m *consoleModel) Init() tea.Cmd {
	return nil
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.call

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		m.record(msg)
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *consoleModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = placeholder(p)
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func placeholder(p abi.Param) string {
	switch {
	case p.Out:
		return "length"
	case abi.IsBytes(p.Type):
		return "hex bytes"
	}
	return abi.TypeString(p.Type)
}

// call runs the selected function. A mock expectation mismatch is shown
// as the call's error instead of ending the program.
func (m *consoleModel) call() (msg tea.Msg) {
	f := m.funcs[m.selected]
	text := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		text[i] = input.Value()
	}

	defer func() {
		if r := recover(); r != nil {
			mm, ok := r.(*mock.ExpectationMismatch)
			if !ok {
				panic(r)
			}
			msg = callResultMsg{err: mm}
		}
	}()

	result, err := invoke(m.hw, f, text)
	if err != nil {
		return callResultMsg{err: fmt.Errorf("%s: %w", abi.ErrnoOf(err), err)}
	}
	return callResultMsg{result: result}
}

func (m *consoleModel) record(msg callResultMsg) {
	line := m.funcs[m.selected].Module + "." + m.funcs[m.selected].Name + " -> "
	if msg.err != nil {
		line += "error"
	} else {
		line += msg.result
	}
	m.history = append(m.history, line)
	if len(m.history) > 8 {
		m.history = m.history[len(m.history)-8:]
	}
}

func (m *consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wasme console"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	if len(m.funcs) == 0 {
		b.WriteString(errorStyle.Render("The backend provides no capabilities."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f)))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		if len(m.history) > 0 {
			b.WriteString("\nRecent calls:\n")
			for _, h := range m.history {
				b.WriteString(helpStyle.Render("  " + h))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Module+"."+f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(abi.TypeString(f.Params[i].Type)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Module+"."+f.Name)))
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

func formatFunc(f abi.Func) string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.Name+": "+typeStyle.Render(abi.TypeString(p.Type)))
	}
	result := ""
	if f.Result != nil {
		result = " -> " + typeStyle.Render(abi.TypeString(f.Result))
	}
	return funcStyle.Render(f.Module+"."+f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}
