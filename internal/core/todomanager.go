package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// TodoManager owns the todo sequence. Every mutation is persisted through the
// TodoStore and then announced to the registered listeners.
//
// Mutations return an error when persisting fails. In that case the
// in-memory change is kept and listeners are still notified. AddTodo also
// fails, without changing anything, once ids are exhausted.
type TodoManager interface {
	AddTodo(text string) (*models.Task, error)
	ToggleTodo(id int64) (*models.Task, error)
	DeleteTodo(id int64) (bool, error)
	EditTodo(id int64, text string) (*models.Task, error)
	ClearCompleted() (int, error)
	GetAllTodos() []models.Task
	GetTodo(id int64) (models.Task, bool)
	GetStats() models.Stats
	AddListener(fn Listener) (remove func())
	Refresh()
}

// ManagerOption configures a TodoManager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	listeners []Listener
	events    EventLogger
	now       func() time.Time
	ids       IDGenerator
}

// WithListener registers fn before the store is loaded, so it also receives
// the construction-time notification.
func WithListener(fn Listener) ManagerOption {
	return func(o *managerOptions) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}

// WithEventLogger records every mutation to l.
func WithEventLogger(l EventLogger) ManagerOption {
	return func(o *managerOptions) { o.events = l }
}

// WithClock overrides the time source used for CreatedAt and ids.
func WithClock(now func() time.Time) ManagerOption {
	return func(o *managerOptions) { o.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(g IDGenerator) ManagerOption {
	return func(o *managerOptions) { o.ids = g }
}

type todoManager struct {
	// notifyMu serialises mutate, save and notify so listeners see changes
	// in the order they were made.
	notifyMu sync.Mutex
	// mu guards todos. Reads only take mu, so listeners may call them.
	mu    sync.RWMutex
	todos []models.Task

	store     TodoStore
	ids       IDGenerator
	now       func() time.Time
	events    EventLogger
	listeners listenerRegistry
}

// NewTodoManager loads the persisted sequence from store and notifies the
// listeners given as options once. A nil store keeps the list in memory only.
func NewTodoManager(store TodoStore, opts ...ManagerOption) TodoManager {
	o := managerOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.ids == nil {
		o.ids = NewIDGenerator(o.now)
	}

	m := &todoManager{
		store:  store,
		ids:    o.ids,
		now:    o.now,
		events: o.events,
	}
	m.todos = m.load()
	for _, t := range m.todos {
		m.ids.Observe(t.ID)
	}
	for _, fn := range o.listeners {
		m.listeners.add(fn)
	}
	m.listeners.notify(m.snapshot())
	return m
}

func (m *todoManager) load() []models.Task {
	if m.store == nil {
		return []models.Task{}
	}
	tasks, err := m.store.Load()
	if err != nil {
		m.warn(observability.EventLoadFailed, map[string]any{"error": err.Error()})
		return []models.Task{}
	}
	return models.CloneTasks(tasks)
}

// normalizeText trims surrounding whitespace, byte order marks included, and
// replaces invalid UTF-8 so the stored text reloads unchanged.
func normalizeText(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

func (m *todoManager) AddTodo(text string) (*models.Task, error) {
	text = normalizeText(text)
	if text == "" {
		return nil, nil
	}

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	id, err := m.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("adding todo: %w", err)
	}
	task := models.Task{
		ID:        id,
		Text:      text,
		Completed: false,
		CreatedAt: models.FormatCreatedAt(m.now()),
	}

	m.mu.Lock()
	m.todos = append(m.todos, task)
	m.mu.Unlock()

	err = m.commit(observability.EventTodoAdded, map[string]any{"id": task.ID, "text": task.Text})
	return &task, err
}

func (m *todoManager) ToggleTodo(id int64) (*models.Task, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return nil, nil
	}
	m.todos[i].Completed = !m.todos[i].Completed
	task := m.todos[i]
	m.mu.Unlock()

	eventType := observability.EventTodoReopened
	if task.Completed {
		eventType = observability.EventTodoCompleted
	}
	err := m.commit(eventType, map[string]any{"id": task.ID})
	return &task, err
}

func (m *todoManager) DeleteTodo(id int64) (bool, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	if !m.remove(id) {
		return false, nil
	}
	return true, m.commit(observability.EventTodoDeleted, map[string]any{"id": id})
}

// EditTodo replaces the text of a todo. Blank text deletes the todo instead.
func (m *todoManager) EditTodo(id int64, text string) (*models.Task, error) {
	text = normalizeText(text)

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	if text == "" {
		if !m.remove(id) {
			return nil, nil
		}
		return nil, m.commit(observability.EventTodoDeleted, map[string]any{"id": id, "reason": "blank_edit"})
	}

	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return nil, nil
	}
	m.todos[i].Text = text
	task := m.todos[i]
	m.mu.Unlock()

	err := m.commit(observability.EventTodoEdited, map[string]any{"id": id, "text": text})
	return &task, err
}

// ClearCompleted removes every completed todo and keeps the rest in order.
// It persists and notifies even when nothing was removed.
func (m *todoManager) ClearCompleted() (int, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	kept := make([]models.Task, 0, len(m.todos))
	for _, t := range m.todos {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(m.todos) - len(kept)
	m.todos = kept
	m.mu.Unlock()

	return removed, m.commit(observability.EventTodosCleared, map[string]any{"removed": removed})
}

func (m *todoManager) GetAllTodos() []models.Task {
	return m.snapshot()
}

func (m *todoManager) GetTodo(id int64) (models.Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return m.todos[i], true
	}
	return models.Task{}, false
}

func (m *todoManager) GetStats() models.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.ComputeStats(m.todos)
}

// AddListener registers fn and immediately calls it with the current
// sequence. fn must not call the mutating methods of the manager.
func (m *todoManager) AddListener(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	remove := m.listeners.add(fn)
	fn(m.snapshot())
	return remove
}

// Refresh notifies listeners with the current sequence without changing it.
func (m *todoManager) Refresh() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.listeners.notify(m.snapshot())
}

// commit persists the current sequence, records the event and notifies
// listeners. The caller must hold notifyMu.
func (m *todoManager) commit(eventType string, data map[string]any) error {
	snapshot := m.snapshot()

	var saveErr error
	if m.store != nil {
		if err := m.store.Save(snapshot); err != nil {
			saveErr = fmt.Errorf("saving todos: %w", err)
			m.warn(observability.EventSaveFailed, map[string]any{"error": err.Error()})
		}
	}

	m.logEvent(eventType, data)
	m.listeners.notify(snapshot)
	return saveErr
}

// remove deletes the todo with the given id and reports whether it existed.
func (m *todoManager) remove(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.todos = append(m.todos[:i:i], m.todos[i+1:]...)
	return true
}

// indexOf returns the position of id, or -1. The caller must hold mu.
func (m *todoManager) indexOf(id int64) int {
	for i, t := range m.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *todoManager) snapshot() []models.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.CloneTasks(m.todos)
}

func (m *todoManager) logEvent(eventType string, data map[string]any) {
	if m.events == nil {
		return
	}
	_ = m.events.LogEvent(eventType, data) // Non-fatal.
}

func (m *todoManager) warn(eventType string, data map[string]any) {
	if m.events == nil {
		return
	}
	if w, ok := m.events.(WarnLogger); ok {
		_ = w.LogWarning(eventType, data)
		return
	}
	_ = m.events.LogEvent(eventType, data)
}
