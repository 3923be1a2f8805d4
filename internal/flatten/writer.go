package flatten

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/schema"
)

// Output formats of NewWriter.
const (
	OutputNDJSON = "ndjson"
	OutputCSV    = "csv"
	OutputTable  = "table"
)

// Outputs lists the formats NewWriter accepts.
var Outputs = []string{OutputNDJSON, OutputCSV, OutputTable}

// Writer receives the header once, then rows, then a final Flush.
type Writer interface {
	WriteHeader(columns []schema.Column) error
	WriteRow(row Row) error
	Flush() error
}

// NewWriter returns a writer for format. styles only affect the table.
func NewWriter(format string, w io.Writer, styles formatter.Styles) (Writer, error) {
	switch format {
	case OutputNDJSON, "":
		return &ndjsonWriter{w: w}, nil
	case OutputCSV:
		return &csvWriter{w: csv.NewWriter(w)}, nil
	case OutputTable:
		return &tableWriter{w: w, styles: styles}, nil
	}
	return nil, fmt.Errorf("unknown flatten output %q (expected %s)", format, strings.Join(Outputs, ", "))
}

// Cell returns the text of a cell for column-oriented outputs: strings
// unquoted, nulls empty, everything else as its JSON literal.
func Cell(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return ""
	case jsonvalue.KindString:
		return v.Str()
	case jsonvalue.KindArray, jsonvalue.KindObject:
		return v.Marshal()
	default:
		return v.Literal()
	}
}

// ndjsonWriter writes one compact JSON object per row, keyed by column.
type ndjsonWriter struct {
	w     io.Writer
	names []string
	buf   strings.Builder
}

func (n *ndjsonWriter) WriteHeader(columns []schema.Column) error {
	n.names = columnNames(columns)
	return nil
}

func (n *ndjsonWriter) WriteRow(row Row) error {
	members := make([]jsonvalue.Member, len(n.names))
	for i, name := range n.names {
		members[i] = jsonvalue.Member{Key: name, Value: row[i]}
	}
	n.buf.Reset()
	n.buf.WriteString(jsonvalue.NewObject(members...).Marshal())
	n.buf.WriteByte('\n')
	_, err := io.WriteString(n.w, n.buf.String())
	return err
}

func (n *ndjsonWriter) Flush() error { return nil }

type csvWriter struct {
	w *csv.Writer
}

func (c *csvWriter) WriteHeader(columns []schema.Column) error {
	return c.w.Write(columnNames(columns))
}

func (c *csvWriter) WriteRow(row Row) error {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = Cell(v)
	}
	return c.w.Write(cells)
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// tableWriter buffers every row and renders a bordered table on Flush,
// with the column types under the names.
type tableWriter struct {
	w       io.Writer
	styles  formatter.Styles
	columns []schema.Column
	rows    []Row
}

func (t *tableWriter) WriteHeader(columns []schema.Column) error {
	t.columns = columns
	return nil
}

func (t *tableWriter) WriteRow(row Row) error {
	t.rows = append(t.rows, row)
	return nil
}

func (t *tableWriter) Flush() error {
	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Name + "\n" + c.Type
	}
	cells := make([][]string, len(t.rows))
	for i, row := range t.rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			if v.Kind() == jsonvalue.KindNull {
				cells[i][j] = "null"
				continue
			}
			cells[i][j] = Cell(v)
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if t.styles.NoColor {
				return base
			}
			if row == table.HeaderRow {
				return base.Inherit(t.styles.Key).Bold(true)
			}
			if row >= 0 && row < len(t.rows) && col < len(t.rows[row]) {
				if st, ok := t.styles.Values[t.rows[row][col].TypeClass()]; ok {
					return base.Inherit(st)
				}
			}
			return base
		})
	if !t.styles.NoColor {
		tbl = tbl.BorderStyle(t.styles.Punct)
	}
	_, err := io.WriteString(t.w, tbl.Render()+"\n")
	return err
}

func columnNames(columns []schema.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}
