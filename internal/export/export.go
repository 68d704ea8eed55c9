// Package export renders the todo list in formats meant for other tools or
// for printing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/todo/pkg/models"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats lists the accepted values for Export's format argument.
var Formats = []string{FormatJSON, FormatYAML, FormatCSV, FormatPDF}

// Source supplies the todos to export.
type Source interface {
	GetAllTodos() []models.Task
}

// Exporter writes a snapshot of a Source in one of the supported formats.
type Exporter struct {
	src   Source
	title string
}

// NewExporter creates an Exporter over src.
func NewExporter(src Source) *Exporter {
	return &Exporter{src: src, title: "Todo List"}
}

// Export writes every todo to w in the given format.
func (e *Exporter) Export(w io.Writer, format string) error {
	todos := e.src.GetAllTodos()

	var err error
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		err = writeJSON(w, todos)
	case FormatYAML, "yml":
		err = writeYAML(w, todos)
	case FormatCSV:
		err = writeCSV(w, todos)
	case FormatPDF:
		err = e.writePDF(w, todos)
	default:
		return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return fmt.Errorf("exporting %s: %w", format, err)
	}
	return nil
}

func writeJSON(w io.Writer, todos []models.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(todos)
}

func writeYAML(w io.Writer, todos []models.Task) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(todos); err != nil {
		return err
	}
	return enc.Close()
}

func writeCSV(w io.Writer, todos []models.Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "text", "completed", "created_at"})
	for _, t := range todos {
		_ = cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Text,
			strconv.FormatBool(t.Completed),
			t.CreatedAt,
		})
	}
	cw.Flush()
	return cw.Error()
}

func (e *Exporter) writePDF(w io.Writer, todos []models.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(e.title, true)
	pdf.SetCreator("todo", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(e.title), "", 1, "L", false, 0, "")

	stats := models.ComputeStats(todos)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d total, %d active, %d completed", stats.Total, stats.Active, stats.Completed), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(12, 7, "Done", "1", 0, "C", true, 0, "")
	pdf.CellFormat(128, 7, "Todo", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 7, "Created", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, t := range todos {
		mark := ""
		if t.Completed {
			mark = "x"
		}
		created := t.CreatedAt
		if ts := t.Created(); !ts.IsZero() {
			created = ts.Format("2006-01-02 15:04")
		}
		pdf.CellFormat(12, 7, mark, "1", 0, "C", false, 0, "")
		pdf.CellFormat(128, 7, tr(truncate(t.Text, 70)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, created, "1", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
