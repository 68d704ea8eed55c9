package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/todo/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the todo list as JSON, YAML, CSV or PDF",
	Long: `Write every todo to stdout, or to a file with -o.

Formats: json (the store format), yaml, csv, and pdf (a printable table).
PDF output requires -o.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TodoMgr == nil {
			return errNotInitialized
		}

		format := strings.ToLower(exportFormat)
		if format == export.FormatPDF && exportOutput == "" {
			return fmt.Errorf("pdf export needs an output file (-o)")
		}

		var w io.Writer = os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportOutput, err)
			}
			defer f.Close()
			w = f
		}

		if err := export.NewExporter(TodoMgr).Export(w, format); err != nil {
			return err
		}
		if exportOutput != "" {
			fmt.Printf("Exported %d todo(s) to %s\n", TodoMgr.GetStats().Total, exportOutput)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatJSON,
		"Output format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
