// Package tui provides the interactive prompts used to correct misnamed
// files.
package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned by Ask when the user cancels the prompt.
var ErrAborted = errors.New("prompt aborted")

// Styles for the prompt
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// State represents the current prompt state.
type State int

const (
	StateInput State = iota
	StateDone
	StateAborted
)

// Model is the Bubble Tea model of a single correction prompt. The input
// starts out holding the original path with the cursor at the end.
type Model struct {
	state     State
	textInput textinput.Model
	message   string
	original  string
	width     int
}

// NewModel creates a prompt pre-filled with defaultValue.
func NewModel(defaultValue, message string) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.SetValue(defaultValue)
	ti.CursorEnd()
	ti.Focus()

	return Model{
		state:     StateInput,
		textInput: ti,
		message:   message,
		original:  defaultValue,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textInput.Width = max(msg.Width-4, 20)
		return m, nil

	case tea.KeyMsg:
		if m.state != StateInput {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.state = StateAborted
			return m, tea.Quit

		case "enter":
			m.state = StateDone
			return m, tea.Quit

		case "ctrl+r":
			m.textInput.SetValue(m.original)
			m.textInput.CursorEnd()
			return m, nil
		}
	}

	if m.state != StateInput {
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	var b strings.Builder

	switch m.state {
	case StateDone:
		b.WriteString(successStyle.Render("› " + m.Value()))
		b.WriteString("\n")
		return b.String()
	case StateAborted:
		b.WriteString(dimStyle.Render("› aborted"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render("Fix path"))
	b.WriteString("\n")
	b.WriteString(warningStyle.Render(m.message))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(m.original))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter: accept • ctrl+r: reset • esc: abort"))
	b.WriteString("\n")

	return b.String()
}

// Value returns the current answer with surrounding whitespace removed.
func (m Model) Value() string {
	return strings.TrimSpace(m.textInput.Value())
}

// State returns the prompt state.
func (m Model) State() State {
	return m.state
}

// Prompter asks questions with a full-screen-free Bubble Tea program.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading keys from in and drawing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Ask shows message and an editable line holding defaultValue, and returns
// what the user accepted.
func (p *Prompter) Ask(defaultValue, message string) (string, error) {
	prog := tea.NewProgram(
		NewModel(defaultValue, message),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.State() != StateDone {
		return "", ErrAborted
	}
	return m.Value(), nil
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
