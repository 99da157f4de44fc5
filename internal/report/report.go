// Package report renders dashboard snapshots as markdown, HTML and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"shoplens/app"
	"shoplens/domain/filter"
	"shoplens/domain/views"
)

// Markdown renders a snapshot as a markdown document, one section per view
func Markdown(snap *app.Snapshot) string {
	var b strings.Builder

	title := snap.Title
	if title == "" {
		title = "Dashboard"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Source: `%s`\n", snap.Source)
	fmt.Fprintf(&b, "- Generated: %s\n", snap.GeneratedAt)
	fmt.Fprintf(&b, "- Rows: %d of %d\n", snap.FilteredRows, snap.TotalRows)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n\n", snap.Fingerprint.Short())

	if len(snap.Predicates) > 0 {
		b.WriteString("## Filters\n\n")
		for _, p := range snap.Predicates {
			fmt.Fprintf(&b, "- %s\n", describePredicate(p))
		}
		b.WriteString("\n")
	}

	for _, v := range snap.Views {
		heading := v.Title
		if heading == "" {
			heading = v.Name
		}
		fmt.Fprintf(&b, "## %s\n\n", heading)
		if v.Error != "" {
			fmt.Fprintf(&b, "> **%s**: %s\n\n", v.ErrorCode, v.Error)
			continue
		}
		writeTable(&b, Table(v.Data))
	}
	return b.String()
}

// HTML renders a snapshot as an HTML fragment via its markdown form
func HTML(snap *app.Snapshot) []byte {
	return ToHTML(Markdown(snap))
}

// ToHTML converts markdown to HTML
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// WriteCSV writes the table form of one view result
func WriteCSV(w io.Writer, result app.ViewResult) error {
	if result.Error != "" {
		return fmt.Errorf("view %s failed: %s", result.Name, result.Error)
	}
	rows := Table(result.Data)
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", result.Name, err)
	}
	return nil
}

// Table flattens a view result into rows of cells, the first row being the
// header
func Table(data interface{}) [][]string {
	switch d := data.(type) {
	case []views.ValueCount:
		rows := [][]string{{"value", "count"}}
		for _, vc := range d {
			rows = append(rows, []string{vc.Value, strconv.Itoa(vc.Count)})
		}
		return rows

	case views.GroupedMeans:
		header := append(append([]string(nil), d.GroupColumns...), "mean "+d.ValueColumn, "count")
		rows := [][]string{header}
		for _, g := range d.Groups {
			mean := formatFloat(g.Mean)
			if g.Empty {
				mean = "-"
			}
			rows = append(rows, append(append([]string(nil), g.Key...), mean, strconv.Itoa(g.Count)))
		}
		return rows

	case views.Histogram:
		measure := "count"
		if d.Measure != "" {
			measure = d.Measure
		}
		rows := [][]string{{d.Column, measure}}
		for _, bin := range d.Bins {
			rows = append(rows, []string{bin.Label, formatFloat(bin.Value)})
		}
		return rows

	case views.CrossTab:
		rows := [][]string{append([]string{d.RowColumn + " \\ " + d.ColColumn}, d.ColLabels...)}
		for i, label := range d.RowLabels {
			row := []string{label}
			for _, n := range d.Counts[i] {
				row = append(row, strconv.Itoa(n))
			}
			rows = append(rows, row)
		}
		return rows

	case views.Association:
		return [][]string{
			{"column a", "column b", "cramers v", "chi square", "p value", "df", "n"},
			{d.ColumnA, d.ColumnB, formatScore(d.CramersV), formatScore(d.ChiSquare), formatScore(d.PValue), strconv.Itoa(d.DF), strconv.Itoa(d.N)},
		}

	case views.AssociationMatrix:
		rows := [][]string{append([]string{""}, d.Columns...)}
		for i, col := range d.Columns {
			row := []string{col}
			for _, s := range d.Values[i] {
				row = append(row, formatScore(s))
			}
			rows = append(rows, row)
		}
		return rows

	case views.Flow:
		rows := [][]string{{"stage", "source", "target", "count"}}
		for _, e := range d.Edges {
			rows = append(rows, []string{strconv.Itoa(e.Stage), e.Source, e.Target, strconv.Itoa(e.Count)})
		}
		return rows

	case views.NumericSummary:
		return [][]string{
			{"column", "count", "nulls", "sum", "mean", "median", "min", "max", "stddev"},
			{
				d.Column, strconv.Itoa(d.Count), strconv.Itoa(d.Nulls), formatFloat(d.Sum),
				formatScore(d.Mean), formatScore(d.Median), formatScore(d.Min), formatScore(d.Max), formatScore(d.StdDev),
			},
		}
	}
	return [][]string{{"value"}, {fmt.Sprintf("%v", data)}}
}

func writeTable(b *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	writeRow(b, rows[0])
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(b, sep)
	for _, row := range rows[1:] {
		writeRow(b, row)
	}
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", "\\|"))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func describePredicate(p filter.PredicateInfo) string {
	var desc string
	switch {
	case p.Low != nil && p.High != nil:
		desc = fmt.Sprintf("%s in [%s, %s]", p.Column, formatFloat(*p.Low), formatFloat(*p.High))
	case len(p.Allowed) > 0:
		desc = fmt.Sprintf("%s in {%s}", p.Column, strings.Join(p.Allowed, ", "))
	default:
		desc = fmt.Sprintf("%s: any", p.Column)
	}
	if p.AllowNull {
		desc += " (nulls kept)"
	}
	return desc
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatScore prints undefined scores as n/a and others to four places
func formatScore(s views.Score) string {
	if !s.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(s), 'f', 4, 64)
}
