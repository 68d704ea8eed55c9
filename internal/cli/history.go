package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/observability"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the recorded events of one todo",
	Long: `Show everything the event log recorded for one todo: when it was added,
completed, reopened, edited and deleted. Deleted todos keep their history.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTodoIDs(nil),
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized (events.enabled may be false)")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		events, err := observability.TodoHistory(EventLog, id)
		if err != nil {
			return err
		}

		if historyJSON {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting history as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Printf("No history for todo %d.\n", id)
			return nil
		}
		for _, e := range events {
			fmt.Printf("  %s  %-15s %s\n", e.Time.Local().Format("2006-01-02 15:04"), e.Type, historyDetail(e))
		}
		return nil
	},
}

func historyDetail(e observability.Event) string {
	if text, ok := e.Data["text"].(string); ok {
		return fmt.Sprintf("%q", displayText(text))
	}
	if reason, ok := e.Data["reason"].(string); ok {
		return "(" + reason + ")"
	}
	return ""
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output history as JSON")
	rootCmd.AddCommand(historyCmd)
}
