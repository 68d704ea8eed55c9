package cli

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/valter-silva-au/todo/pkg/models"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
)

const emptyListText = "No todos yet. Add one to get started."

// displayText makes user-entered text safe to print to a terminal: escape
// sequences are stripped and control characters become spaces.
func displayText(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// formatTodoLine renders one todo as "[x] <id>  <text>".
func formatTodoLine(t models.Task) string {
	text := displayText(t.Text)
	if t.Completed {
		text = doneStyle.Render(text)
	}
	return checkbox(t.Completed) + " " + idStyle.Render(formatID(t.ID)) + "  " + text
}
