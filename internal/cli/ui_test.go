package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m todoUIModel, msg tea.Msg) todoUIModel {
	t.Helper()
	next, _ := m.Update(msg)
	um, ok := next.(todoUIModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return um
}

// deliver hands over the latest published snapshot, as the program loop would.
func deliver(t *testing.T, m todoUIModel) todoUIModel {
	t.Helper()
	select {
	case todos := <-m.feed.ch:
		return press(t, m, todosChangedMsg(todos))
	default:
		return m
	}
}

func newTestUI(t *testing.T, texts ...string) (todoUIModel, core.TodoManager) {
	t.Helper()
	mgr := core.NewTodoManager(nil)
	for _, text := range texts {
		if _, err := mgr.AddTodo(text); err != nil {
			t.Fatal(err)
		}
	}
	m := newTodoUIModel(mgr)
	t.Cleanup(m.feed.close)
	return deliver(t, m), mgr
}

func TestTodoFeed_KeepsLatestSnapshot(t *testing.T) {
	f := newTodoFeed()
	f.publish([]models.Task{{ID: 1}})
	f.publish([]models.Task{{ID: 1}, {ID: 2}})

	msg := f.wait()()
	got, ok := msg.(todosChangedMsg)
	if !ok {
		t.Fatalf("expected todosChangedMsg, got %T", msg)
	}
	if len(got) != 2 {
		t.Errorf("expected latest snapshot with 2 todos, got %d", len(got))
	}
	select {
	case <-f.ch:
		t.Error("feed should hold at most one snapshot")
	default:
	}
}

func TestTodoFeed_CloseUnsubscribes(t *testing.T) {
	mgr := core.NewTodoManager(nil)
	m := newTodoUIModel(mgr)
	<-m.feed.ch

	m.feed.close()
	if _, err := mgr.AddTodo("after close"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-m.feed.ch:
		t.Error("closed feed should not receive snapshots")
	default:
	}
}

func TestTodoUI_ListenerUpdatesView(t *testing.T) {
	m, mgr := newTestUI(t)
	if !strings.Contains(m.View(), emptyListText) {
		t.Errorf("empty list should show empty state:\n%s", m.View())
	}

	if _, err := mgr.AddTodo("from elsewhere"); err != nil {
		t.Fatal(err)
	}
	m = deliver(t, m)

	view := m.View()
	if !strings.Contains(view, "from elsewhere") {
		t.Errorf("view should show the new todo:\n%s", view)
	}
	if !strings.Contains(view, "1 item(s) left") {
		t.Errorf("view should show the summary:\n%s", view)
	}
}

func TestTodoUI_AddFlow(t *testing.T) {
	m, mgr := newTestUI(t)

	m = press(t, m, runeKey("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want modeAdd", m.mode)
	}

	m.input.SetValue("buy milk")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeAdd {
		t.Error("input should stay open after adding")
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}

	m.input.SetValue("   ")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Error("esc should leave add mode")
	}

	todos := mgr.GetAllTodos()
	if len(todos) != 1 || todos[0].Text != "buy milk" {
		t.Errorf("unexpected todos: %+v", todos)
	}
}

func TestTodoUI_ToggleAndDelete(t *testing.T) {
	m, mgr := newTestUI(t, "first", "second")

	m = press(t, m, runeKey("j"))
	m = press(t, m, runeKey("x"))
	m = deliver(t, m)

	todos := mgr.GetAllTodos()
	if todos[0].Completed || !todos[1].Completed {
		t.Errorf("expected only the second todo completed: %+v", todos)
	}

	m = press(t, m, runeKey("d"))
	m = deliver(t, m)
	todos = mgr.GetAllTodos()
	if len(todos) != 1 || todos[0].Text != "first" {
		t.Errorf("unexpected todos after delete: %+v", todos)
	}
	if m.cursor != 0 {
		t.Errorf("cursor should be clamped to 0, got %d", m.cursor)
	}
}

func TestTodoUI_EditSaves(t *testing.T) {
	m, mgr := newTestUI(t, "draft")

	m = press(t, m, runeKey("e"))
	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want modeEdit", m.mode)
	}
	if m.input.Value() != "draft" {
		t.Errorf("input should start with the current text, got %q", m.input.Value())
	}

	m.input.SetValue("final")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Error("enter should leave edit mode")
	}
	if got := mgr.GetAllTodos()[0].Text; got != "final" {
		t.Errorf("text = %q, want final", got)
	}
}

func TestTodoUI_EditLongTextUnchanged(t *testing.T) {
	long := "tab\there " + strings.Repeat("x", 600)
	m, mgr := newTestUI(t, long)

	m = press(t, m, runeKey("e"))
	if n := len([]rune(m.input.Value())); n < 600 {
		t.Errorf("edit input holds %d runes, want the whole text", n)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := mgr.GetAllTodos()[0].Text; got != long {
		t.Errorf("opening and confirming an edit changed the text (len %d -> %d)", len(long), len(got))
	}
	if m.status != "Unchanged." {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, runeKey("a"))
	if m.input.CharLimit != addCharLimit {
		t.Errorf("add mode CharLimit = %d, want %d", m.input.CharLimit, addCharLimit)
	}
}

func TestTodoUI_EditBlankDeletes(t *testing.T) {
	m, mgr := newTestUI(t, "doomed")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("  ")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if mgr.GetStats().Total != 0 {
		t.Error("blank edit should delete the todo")
	}
	if !strings.Contains(m.status, "Deleted") {
		t.Errorf("status = %q", m.status)
	}
}

func TestTodoUI_EditEscRefreshes(t *testing.T) {
	m, mgr := newTestUI(t, "original")

	m = press(t, m, runeKey("e"))
	m.input.SetValue("half typed")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeList {
		t.Error("esc should leave edit mode")
	}
	if m.status != "Edit cancelled." {
		t.Errorf("status = %q", m.status)
	}
	if got := mgr.GetAllTodos()[0].Text; got != "original" {
		t.Errorf("cancelled edit changed the text to %q", got)
	}
	select {
	case todos := <-m.feed.ch:
		if len(todos) != 1 || todos[0].Text != "original" {
			t.Errorf("refresh should republish the stored list: %+v", todos)
		}
	default:
		t.Error("esc should refresh listeners")
	}
}

func TestTodoUI_EditedTodoRemovedElsewhere(t *testing.T) {
	m, mgr := newTestUI(t, "shared")

	m = press(t, m, runeKey("e"))
	if _, err := mgr.DeleteTodo(m.editingID); err != nil {
		t.Fatal(err)
	}
	m = deliver(t, m)

	if m.mode != modeList {
		t.Error("editing should stop when the todo disappears")
	}
}

func TestTodoUI_ClearCompleted(t *testing.T) {
	m, mgr := newTestUI(t, "a", "b")

	m = press(t, m, runeKey("c"))
	if m.mode != modeList || m.status != "No completed todos to clear." {
		t.Errorf("nothing to clear: mode %v status %q", m.mode, m.status)
	}

	if _, err := mgr.ToggleTodo(mgr.GetAllTodos()[0].ID); err != nil {
		t.Fatal(err)
	}
	m = deliver(t, m)

	m = press(t, m, runeKey("c"))
	if m.mode != modeConfirmClear {
		t.Fatalf("mode = %v, want modeConfirmClear", m.mode)
	}
	m = press(t, m, runeKey("n"))
	if mgr.GetStats().Total != 2 || m.status != "Cancelled." {
		t.Errorf("declined clear: total %d status %q", mgr.GetStats().Total, m.status)
	}

	m = press(t, m, runeKey("c"))
	m = press(t, m, runeKey("y"))
	if mgr.GetStats().Total != 1 {
		t.Errorf("expected 1 todo after clear, got %d", mgr.GetStats().Total)
	}
	if !strings.Contains(m.status, "Removed 1") {
		t.Errorf("status = %q", m.status)
	}
}

func TestTodoUI_Quit(t *testing.T) {
	m, _ := newTestUI(t)

	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestClampCursor(t *testing.T) {
	tests := []struct {
		cursor, n, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{-1, 3, 0},
		{1, 3, 1},
		{3, 3, 2},
	}
	for _, tt := range tests {
		if got := clampCursor(tt.cursor, tt.n); got != tt.want {
			t.Errorf("clampCursor(%d, %d) = %d, want %d", tt.cursor, tt.n, got, tt.want)
		}
	}
}
