package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/nakachan-ing/tsk-cli/internal/model"
)

// Source is the read side of the record store.
type Source interface {
	Load(c model.Collection) ([]model.Task, error)
}

var Formats = []string{"json", "csv", "pdf"}

type Exporter struct {
	src Source
	now func() time.Time
}

func NewExporter(src Source) *Exporter {
	return &Exporter{src: src, now: time.Now}
}

type document struct {
	Pending   []model.Task `json:"pending"`
	Completed []model.Task `json:"completed"`
}

func (e *Exporter) load() (document, error) {
	pending, err := e.src.Load(model.Pending)
	if err != nil {
		return document{}, err
	}
	completed, err := e.src.Load(model.Completed)
	if err != nil {
		return document{}, err
	}
	return document{Pending: pending, Completed: completed}, nil
}

// Export renders both collections. CSV output uses the persisted column
// layout with pending rows first.
func (e *Exporter) Export(format string) ([]byte, error) {
	doc, err := e.load()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "csv":
		var b bytes.Buffer
		if err := writeCSV(&b, slices.Concat(doc.Pending, doc.Completed)); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		return e.pdf(doc)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

func writeCSV(out io.Writer, tasks []model.Task) error {
	w := csv.NewWriter(out)
	if err := w.Write(model.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range tasks {
		if err := w.Write(t.Row()); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", t.Title, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func (e *Exporter) pdf(doc document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+e.now().Format(model.DeadlineLayout))
	pdf.Ln(10)

	section := func(name string, tasks []model.Task) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, fmt.Sprintf("%s (%d)", name, len(tasks)))
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		if len(tasks) == 0 {
			pdf.MultiCell(0, 6, "No tasks.", "0", "L", false)
		}
		for _, t := range tasks {
			line := fmt.Sprintf("[%s] %s  (%s, due %s)", t.Priority, t.Title, t.Category, t.Deadline)
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		pdf.Ln(4)
	}
	section("Pending", doc.Pending)
	section("Completed", doc.Completed)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
