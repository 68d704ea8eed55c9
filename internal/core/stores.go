package core

import "github.com/valter-silva-au/todo/pkg/models"

// TodoStore persists the whole todo sequence.
// This interface is defined locally in core to avoid importing storage.
type TodoStore interface {
	// Load returns the persisted sequence. On a missing value it returns an
	// empty sequence and no error; on a malformed one it returns an empty
	// sequence and the parse error.
	Load() ([]models.Task, error)
	// Save replaces the persisted sequence.
	Save(tasks []models.Task) error
}
