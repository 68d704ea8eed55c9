package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/todo/pkg/models"
)

var errNotInitialized = errors.New("todo manager not initialized")

// stdin is the source of confirmation answers. Tests replace it.
var stdin io.Reader = os.Stdin

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return id, nil
}

func printNotFound(id int64) {
	fmt.Printf("No todo with id %d.\n", id)
}

func printSummary() {
	fmt.Println(summaryStyle.Render(TodoMgr.GetStats().Summary()))
}

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a todo",
	Long: `Add a new todo to the end of the list. All arguments are joined with
spaces and surrounding whitespace is trimmed. Blank text is ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}

		task, err := TodoMgr.AddTodo(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("adding todo: %w", err)
		}
		if task == nil {
			fmt.Println("Nothing to add: text is blank.")
			return nil
		}

		fmt.Printf("Added %d: %s\n", task.ID, displayText(task.Text))
		return nil
	},
}

var (
	listJSON      bool
	listActive    bool
	listCompleted bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List todos",
	Long: `List todos in the order they were added, followed by the status line.

Use --active or --completed to filter, or --json for machine-readable output
in the same shape as the store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}
		if listActive && listCompleted {
			return fmt.Errorf("--active and --completed are mutually exclusive")
		}

		todos := filterTodos(TodoMgr.GetAllTodos(), listActive, listCompleted)

		if listJSON {
			data, err := json.MarshalIndent(todos, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting todos as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(todos) == 0 && !listActive && !listCompleted {
			fmt.Println(emptyListText)
			return nil
		}
		for _, t := range todos {
			fmt.Println(formatTodoLine(t))
		}
		fmt.Println()
		printSummary()
		return nil
	},
}

func filterTodos(todos []models.Task, activeOnly, completedOnly bool) []models.Task {
	if !activeOnly && !completedOnly {
		return todos
	}
	out := make([]models.Task, 0, len(todos))
	for _, t := range todos {
		if (activeOnly && !t.Completed) || (completedOnly && t.Completed) {
			out = append(out, t)
		}
	}
	return out
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Aliases: []string{"done"},
	Short:   "Mark a todo completed, or active again",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		task, err := TodoMgr.ToggleTodo(id)
		if err != nil {
			return fmt.Errorf("toggling todo %d: %w", id, err)
		}
		if task == nil {
			printNotFound(id)
			return nil
		}

		state := "active"
		if task.Completed {
			state = "completed"
		}
		fmt.Printf("Marked %d %s: %s\n", task.ID, state, displayText(task.Text))
		printSummary()
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <text...>",
	Short: "Change the text of a todo",
	Long: `Replace the text of a todo. Blank text deletes the todo instead, the
same way clearing the text while editing does in the terminal UI.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, ok := TodoMgr.GetTodo(id); !ok {
			printNotFound(id)
			return nil
		}

		task, err := TodoMgr.EditTodo(id, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("editing todo %d: %w", id, err)
		}
		if task == nil {
			fmt.Printf("Deleted %d (blank text).\n", id)
			return nil
		}
		fmt.Printf("Updated %d: %s\n", task.ID, displayText(task.Text))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		deleted, err := TodoMgr.DeleteTodo(id)
		if err != nil {
			return fmt.Errorf("deleting todo %d: %w", id, err)
		}
		if !deleted {
			printNotFound(id)
			return nil
		}
		fmt.Printf("Deleted %d.\n", id)
		return nil
	},
}

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all completed todos",
	Long: `Remove every completed todo, keeping the rest in order. Asks for
confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}

		completed := TodoMgr.GetStats().Completed
		if completed == 0 {
			fmt.Println("No completed todos to clear.")
			return nil
		}
		if !clearYes && !confirm(fmt.Sprintf("Clear %d completed todo(s)?", completed)) {
			fmt.Println("Cancelled.")
			return nil
		}

		removed, err := TodoMgr.ClearCompleted()
		if err != nil {
			return fmt.Errorf("clearing completed todos: %w", err)
		}
		fmt.Printf("Removed %d completed todo(s).\n", removed)
		printSummary()
		return nil
	},
}

// confirm asks a yes/no question on stdin. Anything but y or yes is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	answer, _ := bufio.NewReader(stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many todos are active and completed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}

		st := TodoMgr.GetStats()
		if statsJSON {
			data, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting stats as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("  %-12s %d\n", "Total:", st.Total)
		fmt.Printf("  %-12s %d\n", "Active:", st.Active)
		fmt.Printf("  %-12s %d\n", "Completed:", st.Completed)
		fmt.Println()
		printSummary()
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output todos as JSON")
	listCmd.Flags().BoolVar(&listActive, "active", false, "Only show active todos")
	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "Only show completed todos")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output stats as JSON")

	rootCmd.AddCommand(addCmd, listCmd, toggleCmd, editCmd, rmCmd, clearCmd, statsCmd)
}
