package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196")).
				MarginBottom(1)

	confirmLabelStyle = lipgloss.NewStyle().
				Bold(true)

	confirmValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	confirmDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	confirmErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// confirmModel asks the operator to retype an instance name before a
// destructive operation proceeds.
type confirmModel struct {
	instance string
	details  []string

	input   textinput.Model
	errText string

	confirmed bool
	done      bool
}

func newConfirmModel(instance string, details []string) *confirmModel {
	ti := textinput.New()
	ti.Placeholder = instance
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	return &confirmModel{
		instance: instance,
		details:  details,
		input:    ti,
	}
}

func (m *confirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		case "enter":
			if strings.TrimSpace(m.input.Value()) == m.instance {
				m.confirmed = true
				m.done = true
				return m, tea.Quit
			}
			m.errText = "name does not match"
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *confirmModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(confirmTitleStyle.Render(fmt.Sprintf("Destroy instance %s", m.instance)))
	b.WriteString("\n")
	for _, d := range m.details {
		b.WriteString("  " + confirmValueStyle.Render(d) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(confirmLabelStyle.Render("Type the instance name to confirm:"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(confirmErrStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(confirmDimStyle.Render("Enter to confirm, Esc to abort."))

	return b.String()
}

// ConfirmDestroy runs the interactive destroy confirmation. It returns true
// only when the operator typed the exact instance name.
func ConfirmDestroy(instance string, details []string) (bool, error) {
	model := newConfirmModel(instance, details)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return model.confirmed, nil
}
