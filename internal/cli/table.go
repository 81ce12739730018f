package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table collects rows and renders them either as a rounded go-pretty table
// or as plain aligned columns without box-drawing characters.
type Table struct {
	out       io.Writer
	plain     bool
	noHeaders bool
	headers   []string
	rows      [][]string
}

// minPadding is the space between plain columns.
const minPadding = 3

// NewTable creates a table with the given headers.
func NewTable(out io.Writer, plain, noHeaders bool, headers ...string) *Table {
	return &Table{out: out, plain: plain, noHeaders: noHeaders, headers: headers}
}

// Append adds a row. Missing cells are left empty, extra cells dropped.
func (t *Table) Append(cells ...any) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cellString(cells[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	if t.plain {
		t.renderPlain()
		return
	}

	w := table.NewWriter()
	w.SetOutputMirror(t.out)
	w.SetStyle(table.StyleRounded)
	if !t.noHeaders {
		header := make(table.Row, len(t.headers))
		for i, h := range t.headers {
			header[i] = text.FgHiCyan.Sprint(h)
		}
		w.AppendHeader(header)
	}
	for _, r := range t.rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		w.AppendRow(row)
	}
	w.Render()
}

func (t *Table) renderPlain() {
	if len(t.rows) == 0 && t.noHeaders {
		return
	}

	widths := make([]int, len(t.headers))
	upper := make([]string, len(t.headers))
	for i, h := range t.headers {
		upper[i] = strings.ToUpper(h)
		widths[i] = text.RuneWidthWithoutEscSequences(upper[i])
	}
	for _, r := range t.rows {
		for i, c := range r {
			if n := text.RuneWidthWithoutEscSequences(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	if !t.noHeaders {
		t.printPlainRow(upper, widths)
	}
	for _, r := range t.rows {
		t.printPlainRow(r, widths)
	}
}

func (t *Table) printPlainRow(row []string, widths []int) {
	var sb strings.Builder
	for i, cell := range row {
		sb.WriteString(cell)
		if i < len(row)-1 {
			pad := widths[i] + minPadding - text.RuneWidthWithoutEscSequences(cell)
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	fmt.Fprintln(t.out, strings.TrimRight(sb.String(), " "))
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return "-"
	case string:
		if c == "" {
			return "-"
		}
		return c
	case bool:
		if c {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(c)
	}
}
