package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

const noteWidth = 48

var tableHeader = []string{"NAME", "VERDICT", "BEST PROFILE", "SIMILARITY", "NAME MATCH", "NOTE"}

// Render writes the document as a table. A terminal gets a styled table,
// anything else plain tab-separated columns.
func Render(w io.Writer, doc *Document) {
	fmt.Fprintf(w, "Run %s, generated %s\n", doc.RunID, doc.GeneratedAt.Format(time.RFC3339))
	if isTerminal(w) {
		fmt.Fprintln(w, renderStyled(doc))
		return
	}
	renderPlain(w, doc)
}

func renderStyled(doc *Document) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(tableHeader))
	for i, h := range tableHeader {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range tableRows(doc) {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func renderPlain(w io.Writer, doc *Document) {
	tab := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tab, "NAME\tVERDICT\tBEST PROFILE\tSIMILARITY\tNAME MATCH\tNOTE")
	for _, row := range tableRows(doc) {
		fmt.Fprintf(tab, "%s\t%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4], row[5])
	}
	tab.Flush()
}

// tableRows flattens entries into display cells shared by both renderers.
func tableRows(doc *Document) [][]string {
	rows := make([][]string, 0, len(doc.Results))
	for _, e := range doc.Results {
		rows = append(rows, []string{
			e.Name,
			string(e.Verdict),
			orDash(e.BestCandidate.ProfileURL),
			similarityCell(e.BestCandidate.Similarity),
			nameMatchCell(e),
			noteCell(e),
		})
	}
	return rows
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func similarityCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func nameMatchCell(e Entry) string {
	if e.BestCandidate.ProfileURL == nil {
		return "-"
	}
	if e.NameMatch.Exact {
		return "exact"
	}
	return fmt.Sprintf("%.1f", e.NameMatch.FuzzyScore)
}

// noteCell carries the error of a failed case or the reviewer summary,
// whichever exists, truncated to keep the table readable.
func noteCell(e Entry) string {
	note := e.Error
	if note == "" {
		note = e.Summary
	}
	if len(note) > noteWidth {
		note = note[:noteWidth-3] + "..."
	}
	return note
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
