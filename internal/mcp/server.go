// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the todo list as tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Server wraps the todo services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	todos       core.TodoManager
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over todos. metricsCalc and alertEngine
// may be nil if the event log is disabled.
func NewServer(todos core.TodoManager, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		todos:       todos,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "todo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type todoOutput struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

type listTodosInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"which todos to return: all, active or completed. Defaults to all."`
}

type listTodosOutput struct {
	Todos []todoOutput `json:"todos"`
	Count int          `json:"count"`
}

type addTodoInput struct {
	Text string `json:"text" jsonschema:"the todo text; surrounding whitespace is trimmed"`
}

type idInput struct {
	ID int64 `json:"id" jsonschema:"the todo id as returned by list_todos"`
}

type editTodoInput struct {
	ID   int64  `json:"id" jsonschema:"the todo id as returned by list_todos"`
	Text string `json:"text" jsonschema:"the new text; blank text deletes the todo"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type clearCompletedOutput struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

type emptyInput struct{}

type statsOutput struct {
	Total     int    `json:"total"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Summary   string `json:"summary"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TodosAdded     int    `json:"todos_added"`
	TodosCompleted int    `json:"todos_completed"`
	TodosReopened  int    `json:"todos_reopened"`
	TodosEdited    int    `json:"todos_edited"`
	TodosDeleted   int    `json:"todos_deleted"`
	TodosCleared   int    `json:"todos_cleared"`
	StorageErrors  int    `json:"storage_errors"`
	EventCount     int    `json:"event_count"`
	OldestEvent    string `json:"oldest_event,omitempty"`
	NewestEvent    string `json:"newest_event,omitempty"`
}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_todos",
		Description: "List todos in creation order, optionally only the active or completed ones.",
	}, s.handleListTodos)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_todo",
		Description: "Add a new active todo to the end of the list. Blank text is rejected.",
	}, s.handleAddTodo)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_todo",
		Description: "Flip a todo between active and completed.",
	}, s.handleToggleTodo)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "edit_todo",
		Description: "Replace the text of a todo. Blank text deletes the todo.",
	}, s.handleEditTodo)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_todo",
		Description: "Delete a todo by id.",
	}, s.handleDeleteTodo)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "clear_completed",
		Description: "Remove every completed todo.",
	}, s.handleClearCompleted)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Get total, active and completed counts plus the status line shown under the list.",
	}, s.handleGetStats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get activity metrics from the event log: todos added, completed, edited, deleted and cleared.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (stale todos, too many open todos).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTodos(_ context.Context, _ *gomcp.CallToolRequest, input listTodosInput) (*gomcp.CallToolResult, listTodosOutput, error) {
	filter := strings.ToLower(strings.TrimSpace(input.Filter))
	if filter != "" && filter != "all" && filter != "active" && filter != "completed" {
		return errorResult(fmt.Sprintf("invalid filter %q: must be one of all, active, completed", input.Filter)), listTodosOutput{}, nil
	}

	out := listTodosOutput{Todos: []todoOutput{}}
	for _, t := range s.todos.GetAllTodos() {
		if (filter == "active" && t.Completed) || (filter == "completed" && !t.Completed) {
			continue
		}
		out.Todos = append(out.Todos, todoToOutput(t))
	}
	out.Count = len(out.Todos)

	return nil, out, nil
}

func (s *Server) handleAddTodo(_ context.Context, _ *gomcp.CallToolRequest, input addTodoInput) (*gomcp.CallToolResult, todoOutput, error) {
	task, err := s.todos.AddTodo(input.Text)
	if task == nil && err == nil {
		return errorResult("text is required"), todoOutput{}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("adding todo: %s", err)), todoOutput{}, nil
	}
	return nil, todoToOutput(*task), nil
}

func (s *Server) handleToggleTodo(_ context.Context, _ *gomcp.CallToolRequest, input idInput) (*gomcp.CallToolResult, todoOutput, error) {
	task, err := s.todos.ToggleTodo(input.ID)
	if task == nil && err == nil {
		return errorResult(notFound(input.ID)), todoOutput{}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("toggling todo %d: %s", input.ID, err)), todoOutput{}, nil
	}
	return nil, todoToOutput(*task), nil
}

func (s *Server) handleEditTodo(_ context.Context, _ *gomcp.CallToolRequest, input editTodoInput) (*gomcp.CallToolResult, messageOutput, error) {
	if _, ok := s.todos.GetTodo(input.ID); !ok {
		return errorResult(notFound(input.ID)), messageOutput{}, nil
	}

	task, err := s.todos.EditTodo(input.ID, input.Text)
	if err != nil {
		return errorResult(fmt.Sprintf("editing todo %d: %s", input.ID, err)), messageOutput{}, nil
	}
	if task == nil {
		return nil, messageOutput{Message: fmt.Sprintf("todo %d deleted (blank text)", input.ID)}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("todo %d updated to %q", task.ID, task.Text)}, nil
}

func (s *Server) handleDeleteTodo(_ context.Context, _ *gomcp.CallToolRequest, input idInput) (*gomcp.CallToolResult, messageOutput, error) {
	deleted, err := s.todos.DeleteTodo(input.ID)
	if !deleted {
		return errorResult(notFound(input.ID)), messageOutput{}, nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("deleting todo %d: %s", input.ID, err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("todo %d deleted", input.ID)}, nil
}

func (s *Server) handleClearCompleted(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, clearCompletedOutput, error) {
	removed, err := s.todos.ClearCompleted()
	if err != nil {
		return errorResult(fmt.Sprintf("clearing completed todos: %s", err)), clearCompletedOutput{}, nil
	}
	return nil, clearCompletedOutput{
		Removed: removed,
		Message: fmt.Sprintf("removed %d completed todo(s)", removed),
	}, nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, statsOutput, error) {
	st := s.todos.GetStats()
	return nil, statsOutput{
		Total:     st.Total,
		Active:    st.Active,
		Completed: st.Completed,
		Summary:   st.Summary(),
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	m, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		TodosAdded:     m.TodosAdded,
		TodosCompleted: m.TodosCompleted,
		TodosReopened:  m.TodosReopened,
		TodosEdited:    m.TodosEdited,
		TodosDeleted:   m.TodosDeleted,
		TodosCleared:   m.TodosCleared,
		StorageErrors:  m.StorageErrors,
		EventCount:     m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func todoToOutput(t models.Task) todoOutput {
	return todoOutput{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

func notFound(id int64) string {
	return fmt.Sprintf("todo %d not found", id)
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
