package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

type uiMode int

const (
	modeList uiMode = iota
	modeAdd
	modeEdit
	modeConfirmClear
)

// todosChangedMsg carries a snapshot published by the manager.
type todosChangedMsg []models.Task

// todoFeed bridges manager listener calls into the bubbletea event loop.
// It holds at most one pending snapshot; a newer one replaces it.
type todoFeed struct {
	ch     chan []models.Task
	remove func()
}

func newTodoFeed() *todoFeed {
	return &todoFeed{ch: make(chan []models.Task, 1)}
}

func (f *todoFeed) publish(todos []models.Task) {
	for {
		select {
		case f.ch <- todos:
			return
		default:
			select {
			case <-f.ch:
			default:
			}
		}
	}
}

func (f *todoFeed) wait() tea.Cmd {
	return func() tea.Msg {
		return todosChangedMsg(<-f.ch)
	}
}

func (f *todoFeed) close() {
	if f.remove != nil {
		f.remove()
	}
}

var (
	uiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	uiHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type todoUIModel struct {
	mgr  core.TodoManager
	feed *todoFeed

	todos     []models.Task
	cursor    int
	mode      uiMode
	input     textinput.Model
	status    string
	width     int

	editingID   int64
	// editingText is the input value as loaded, before any keystrokes.
	editingText string
}

// addCharLimit caps new todos typed in the UI. Edits are unlimited so that
// longer todos added elsewhere are never cut.
const addCharLimit = 512

// newTodoUIModel subscribes to mgr. Call feed.close when the program exits.
func newTodoUIModel(mgr core.TodoManager) todoUIModel {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = addCharLimit
	ti.Width = 50

	m := todoUIModel{
		mgr:   mgr,
		feed:  newTodoFeed(),
		todos: mgr.GetAllTodos(),
		input: ti,
	}
	m.feed.remove = mgr.AddListener(m.feed.publish)
	return m
}

func (m todoUIModel) Init() tea.Cmd {
	return m.feed.wait()
}

func (m todoUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case todosChangedMsg:
		m.todos = []models.Task(msg)
		m.cursor = clampCursor(m.cursor, len(m.todos))
		if m.mode == modeEdit {
			if _, ok := m.mgr.GetTodo(m.editingID); !ok {
				m.leaveInput()
			}
		}
		return m, m.feed.wait()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 10 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirmClear:
			return m.updateConfirmClear(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m todoUIModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.todos))
	case "a":
		m.mode = modeAdd
		m.status = ""
		m.input.CharLimit = addCharLimit
		m.input.SetValue("")
		return m, m.input.Focus()
	case "e", "enter":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editingID = t.ID
		m.status = ""
		m.input.CharLimit = 0
		m.input.SetValue(t.Text)
		m.input.CursorEnd()
		m.editingText = m.input.Value()
		return m, m.input.Focus()
	case " ", "x":
		if t, ok := m.selected(); ok {
			_, err := m.mgr.ToggleTodo(t.ID)
			m.status = errStatus("toggle", err)
		}
	case "d":
		if t, ok := m.selected(); ok {
			_, err := m.mgr.DeleteTodo(t.ID)
			m.status = errStatus("delete", err)
		}
	case "c":
		completed := models.ComputeStats(m.todos).Completed
		if completed == 0 {
			m.status = "No completed todos to clear."
			return m, nil
		}
		m.mode = modeConfirmClear
		m.status = fmt.Sprintf("Clear %d completed todo(s)? y/n", completed)
	}
	return m, nil
}

func (m todoUIModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	case tea.KeyEnter:
		task, err := m.mgr.AddTodo(m.input.Value())
		m.input.SetValue("")
		switch {
		case err != nil:
			m.status = errStatus("add", err)
		case task == nil:
			m.status = ""
		default:
			m.status = "Added."
			m.cursor = len(m.todos)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m todoUIModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.leaveInput()
		m.status = "Edit cancelled."
		m.mgr.Refresh()
		return m, nil
	case tea.KeyEnter:
		id, value := m.editingID, m.input.Value()
		unchanged := value == m.editingText
		m.leaveInput()
		if unchanged {
			// The input may hold a sanitised copy of the text.
			m.status = "Unchanged."
			return m, nil
		}
		task, err := m.mgr.EditTodo(id, value)
		switch {
		case err != nil:
			m.status = errStatus("edit", err)
		case task == nil:
			m.status = "Deleted (blank text)."
		default:
			m.status = "Saved."
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m todoUIModel) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	switch msg.String() {
	case "y", "Y":
		removed, err := m.mgr.ClearCompleted()
		if err != nil {
			m.status = errStatus("clear", err)
		} else {
			m.status = fmt.Sprintf("Removed %d completed todo(s).", removed)
		}
	default:
		m.status = "Cancelled."
	}
	return m, nil
}

func (m *todoUIModel) leaveInput() {
	m.mode = modeList
	m.editingID = 0
	m.editingText = ""
	m.input.Blur()
}

func (m todoUIModel) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return models.Task{}, false
	}
	return m.todos[m.cursor], true
}

func (m todoUIModel) View() string {
	var b strings.Builder
	b.WriteString(uiTitleStyle.Render(" todo "))
	b.WriteString("\n\n")

	if len(m.todos) == 0 {
		b.WriteString("  " + emptyListText + "\n")
	}
	for i, t := range m.todos {
		prefix := "  "
		if i == m.cursor && m.mode != modeAdd {
			prefix = cursorStyle.Render("> ")
		}
		if m.mode == modeEdit && t.ID == m.editingID {
			b.WriteString(prefix + checkbox(t.Completed) + " " + m.input.View() + "\n")
			continue
		}
		b.WriteString(prefix + formatTodoLine(t) + "\n")
	}

	if m.mode == modeAdd {
		b.WriteString("\n  " + m.input.View() + "\n")
	}

	stats := models.ComputeStats(m.todos)
	b.WriteString("\n  " + summaryStyle.Render(stats.Summary()) + "\n")
	if m.status != "" {
		b.WriteString("  " + statusStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.helpLine(stats) + "\n")
	return b.String()
}

func (m todoUIModel) helpLine(stats models.Stats) string {
	switch m.mode {
	case modeAdd:
		return uiHelpStyle.Render("enter: add | esc: done adding")
	case modeEdit:
		return uiHelpStyle.Render("enter: save (blank deletes) | esc: cancel")
	case modeConfirmClear:
		return uiHelpStyle.Render("y: clear | any other key: cancel")
	}
	clearHint := uiHelpStyle.Render("c: clear completed")
	if stats.Completed == 0 {
		clearHint = disabledStyle.Render("c: clear completed")
	}
	return uiHelpStyle.Render("a: add | e: edit | space: toggle | d: delete | ") +
		clearHint + uiHelpStyle.Render(" | q: quit")
}

func errStatus(action string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s failed: %v", action, err)
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive terminal UI for the todo list",
	Long: `Open the todo list in an interactive terminal UI.

Keys: a add, e or enter edit, space toggle, d delete, c clear completed,
j/k or arrows to move, q to quit. While editing, enter saves (blank text
deletes the todo) and esc cancels.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}

		m := newTodoUIModel(TodoMgr)
		defer m.feed.close()

		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
