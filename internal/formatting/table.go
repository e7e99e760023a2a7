package formatting

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxCellWidth truncates long values in key/value tables.
const maxCellWidth = 100

// NewTable creates a table writing to w. FormatWide gets rounded borders,
// anything else the plain style.
func NewTable(w io.Writer, opts Options) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if opts.Format == FormatWide {
		t.SetStyle(table.StyleRounded)
		return t
	}

	style := table.StyleDefault
	style.Options = table.OptionsNoBordersAndSeparators
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "   "
	style.Format.Header = text.FormatUpper
	t.SetStyle(style)
	return t
}

// Rows renders headers and rows as a table. With NoHeaders the header row is
// left out.
func Rows(w io.Writer, opts Options, headers []string, rows [][]string) {
	t := NewTable(w, opts)
	if !opts.NoHeaders {
		h := make(table.Row, len(headers))
		for i, s := range headers {
			h[i] = s
		}
		t.AppendHeader(h)
	}
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, s := range row {
			if s == "" {
				s = "-"
			}
			r[i] = s
		}
		t.AppendRow(r)
	}
	t.Render()
}

// KeyValues renders a flat map as a KEY/VALUE table sorted by key.
func KeyValues(w io.Writer, opts Options, data map[string]any) {
	if len(data) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No entries found"))
		return
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		v := fmt.Sprintf("%v", data[k])
		if len(v) > maxCellWidth {
			v = v[:maxCellWidth-3] + "..."
		}
		rows = append(rows, []string{k, v})
	}
	Rows(w, opts, []string{"Key", "Value"}, rows)
}
