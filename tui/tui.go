// Package tui asks yes/no questions with a small full-screen terminal UI.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type (
	confirm struct {
		help     help.Model
		question string
		yes      bool
		done     bool
		aborted  bool
	}

	confirmKeyMap struct{}

	// Prompter satisfies scaffold.Prompter. Each question runs its own bubbletea program.
	Prompter struct {
		In  io.Reader
		Out io.Writer
	}
)

var (
	ErrAborted = errors.New("question aborted")

	keys = struct {
		yes    key.Binding
		no     key.Binding
		toggle key.Binding
		submit key.Binding
		help   key.Binding
		quit   key.Binding
	}{
		yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "no"),
		),
		toggle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l", "tab"),
			key.WithHelp("←/→", "switch"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "submit"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}

	palette = struct {
		magenta lipgloss.Color
		yellow  lipgloss.Color
	}{
		magenta: lipgloss.Color("212"),
		yellow:  lipgloss.Color("184"),
	}

	questionStyle = lipgloss.NewStyle().Foreground(palette.yellow)
	selectedStyle = lipgloss.NewStyle().Foreground(palette.magenta).Bold(true)
	idleStyle     = lipgloss.NewStyle().Faint(true)
)

func (confirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.yes, keys.no, keys.help}
}

func (confirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.yes, keys.no, keys.toggle, keys.submit},
		{keys.help, keys.quit},
	}
}

func newConfirm(question string) confirm {
	return confirm{
		question: strings.TrimSpace(question),
		help:     help.New(),
	}
}

func (m confirm) Init() tea.Cmd {
	return nil
}

func (m confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			m.aborted = true

			return m, tea.Quit
		case key.Matches(msg, keys.yes):
			m.yes, m.done = true, true

			return m, tea.Quit
		case key.Matches(msg, keys.no):
			m.yes, m.done = false, true

			return m, tea.Quit
		case key.Matches(msg, keys.toggle):
			m.yes = !m.yes

			return m, nil
		case key.Matches(msg, keys.submit):
			m.done = true

			return m, tea.Quit
		case key.Matches(msg, keys.help):
			m.help.ShowAll = !m.help.ShowAll

			return m, nil
		}
	}

	return m, nil
}

func (m confirm) answer() string {
	if m.yes {
		return "y"
	}

	return "n"
}

func option(label string, selected bool) string {
	if selected {
		return selectedStyle.Render("[ " + label + " ]")
	}

	return idleStyle.Render("  " + label + "  ")
}

func (m confirm) View() string {
	var b strings.Builder

	b.WriteString(questionStyle.Render(m.question))

	if m.done {
		b.WriteString(" " + m.answer() + "\n")

		return b.String()
	}

	if m.aborted {
		b.WriteString("\n")

		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(option("Yes", m.yes))
	b.WriteString("  ")
	b.WriteString(option("No", !m.yes))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(confirmKeyMap{}))
	b.WriteRune('\n')

	return b.String()
}

// Ask returns "y" or "n". Quitting without answering returns [ErrAborted].
func (p Prompter) Ask(question string) (string, error) {
	var opts []tea.ProgramOption

	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}

	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(newConfirm(question), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("failed to run the prompt UI: %w", err)
	}

	m, ok := final.(confirm)
	if !ok || m.aborted || !m.done {
		return "", ErrAborted
	}

	return m.answer(), nil
}
