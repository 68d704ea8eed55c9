package storage

import (
	"encoding/json"
	"fmt"

	"github.com/valter-silva-au/todo/pkg/models"
)

// DefaultTodoKey is the key the todo list is stored under.
const DefaultTodoKey = "todos"

// TodoRepository persists the todo list as a JSON array under one key of a
// KeyValueStore.
type TodoRepository interface {
	Load() ([]models.Task, error)
	Save(tasks []models.Task) error
}

type kvTodoRepository struct {
	kv  KeyValueStore
	key string
}

// NewTodoRepository creates a TodoRepository over kv. An empty key uses
// DefaultTodoKey.
func NewTodoRepository(kv KeyValueStore, key string) TodoRepository {
	if key == "" {
		key = DefaultTodoKey
	}
	return &kvTodoRepository{kv: kv, key: key}
}

// Load returns the stored list. A missing key yields an empty list and no
// error. An unreadable or malformed value yields an empty list and the error,
// which callers are expected to report rather than propagate.
func (r *kvTodoRepository) Load() ([]models.Task, error) {
	data, ok, err := r.kv.GetItem(r.key)
	if err != nil {
		return []models.Task{}, fmt.Errorf("loading todos: %w", err)
	}
	if !ok || len(data) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return []models.Task{}, fmt.Errorf("loading todos: parsing JSON: %w", err)
	}
	if tasks == nil {
		// A stored "null" reads back as an empty list.
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (r *kvTodoRepository) Save(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("saving todos: marshaling JSON: %w", err)
	}
	if err := r.kv.SetItem(r.key, data); err != nil {
		return fmt.Errorf("saving todos: %w", err)
	}
	return nil
}
