package cli

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/valter-silva-au/todo/internal/core"
)

// captureStdout runs fn and returns everything it wrote to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	return string(out)
}

// withTodos installs an in-memory TodoManager seeded with texts as TodoMgr
// for the duration of the test.
func withTodos(t *testing.T, texts ...string) core.TodoManager {
	t.Helper()
	orig := TodoMgr
	t.Cleanup(func() { TodoMgr = orig })

	mgr := core.NewTodoManager(nil)
	for _, text := range texts {
		if _, err := mgr.AddTodo(text); err != nil {
			t.Fatalf("seeding %q: %v", text, err)
		}
	}
	TodoMgr = mgr
	return mgr
}

// withStdin feeds input to confirmation prompts for the duration of the test.
func withStdin(t *testing.T, input string) {
	t.Helper()
	orig := stdin
	t.Cleanup(func() { stdin = orig })
	stdin = strings.NewReader(input)
}
