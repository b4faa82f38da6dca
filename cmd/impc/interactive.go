package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/p-maje/inz-wasm-compiler/compiler"
	"github.com/p-maje/inz-wasm-compiler/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateRunning modelState = iota
	stateAwaitInput
	stateDone
)

type interactiveModel struct {
	err      error
	bridge   *ioBridge
	filename string
	lines    []string
	input    textinput.Model
	state    modelState
}

type outputMsg struct {
	line string
}

type needInputMsg struct{}

type doneMsg struct {
	err error
}

func newInteractiveModel(filename string, bridge *ioBridge) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Width = 40
	return &interactiveModel{
		filename: filename,
		bridge:   bridge,
		input:    ti,
		state:    stateRunning,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.bridge.CloseInput()
			return m, tea.Quit

		case "enter":
			switch m.state {
			case stateAwaitInput:
				value := m.input.Value()
				m.lines = append(m.lines, inputStyle.Render("? "+value))
				m.input.SetValue("")
				m.input.Blur()
				m.state = stateRunning
				m.bridge.Provide(value)
			case stateDone:
				return m, tea.Quit
			}
		}

	case outputMsg:
		m.lines = append(m.lines, outputStyle.Render(msg.line))

	case needInputMsg:
		m.state = stateAwaitInput
		m.input.Focus()

	case doneMsg:
		m.err = msg.err
		m.state = stateDone
	}

	if m.state == stateAwaitInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("impc"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch m.state {
	case stateRunning:
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("running • ctrl+c quit"))
	case stateAwaitInput:
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter submit • ctrl+c quit"))
	case stateDone:
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(outputStyle.Render("program finished"))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter quit"))
	}

	return b.String()
}

// ioBridge adapts the runner's stdin and stdout to the TUI event loop.
// Reads block until the user submits a value; writes become output
// messages.
type ioBridge struct {
	program *tea.Program
	inputs  chan string
	buf     []byte
	closed  bool
}

func newIOBridge() *ioBridge {
	return &ioBridge{inputs: make(chan string)}
}

func (b *ioBridge) Provide(value string) {
	b.inputs <- value
}

func (b *ioBridge) CloseInput() {
	if !b.closed {
		b.closed = true
		close(b.inputs)
	}
}

func (b *ioBridge) Read(p []byte) (int, error) {
	if len(b.buf) == 0 {
		b.program.Send(needInputMsg{})
		value, ok := <-b.inputs
		if !ok {
			return 0, io.EOF
		}
		b.buf = []byte(value + "\n")
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

func (b *ioBridge) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		b.program.Send(outputMsg{line: line})
	}
	return len(p), nil
}

func runInteractive(filename string) error {
	source, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	wat, err := compiler.Compile(string(source))
	if err != nil {
		return err
	}

	bridge := newIOBridge()
	model := newInteractiveModel(filename, bridge)
	p := tea.NewProgram(model, tea.WithAltScreen())
	bridge.program = p

	go func() {
		runner := runtime.New()
		err := runner.Run(context.Background(), wat, bridge, bridge)
		p.Send(doneMsg{err: err})
	}()

	_, err = p.Run()
	return err
}
