package flatten

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/pkg/logger"
)

// Input formats accepted by ReadRecords.
const (
	InputNDJSON = "ndjson"
	InputJSON   = "json"
)

// maxLine bounds one NDJSON record.
const maxLine = 64 << 20

// RecordError reports a record that could not be read or flattened.
type RecordError struct {
	Record int // 1-based; an NDJSON parse error gives the line instead
	Err    error
}

func (e *RecordError) Error() string { return fmt.Sprintf("record %d: %v", e.Record, e.Err) }

func (e *RecordError) Unwrap() error { return e.Err }

// ReadRecords calls fn for each record in r. NDJSON holds one record per
// line and skips blank lines. JSON is a single document: an array is a
// list of records, anything else is one record.
func ReadRecords(ctx context.Context, r io.Reader, format string, fn func(jsonvalue.Value) error) error {
	switch format {
	case InputJSON:
		doc, err := jsonvalue.Parse(r)
		if err != nil {
			return err
		}
		if doc.Kind() != jsonvalue.KindArray {
			return fn(doc)
		}
		for _, rec := range doc.Items() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	case InputNDJSON, "":
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxLine)
		line := 0
		for sc.Scan() {
			line++
			if err := ctx.Err(); err != nil {
				return err
			}
			text := bytes.TrimSpace(sc.Bytes())
			if len(text) == 0 {
				continue
			}
			rec, err := jsonvalue.ParseBytes(text)
			if err != nil {
				return &RecordError{Record: line, Err: err}
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read records: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown input format %q (expected %s, %s)", format, InputNDJSON, InputJSON)
}

// Stats counts what Stream and WriteAll processed.
type Stats struct {
	Records int
	Rows    int
}

// Stream flattens every record read from r into w and flushes w.
func (f *Flattener) Stream(ctx context.Context, r io.Reader, format string, w Writer) (Stats, error) {
	var stats Stats
	if err := w.WriteHeader(f.Columns()); err != nil {
		return stats, err
	}
	err := ReadRecords(ctx, r, format, func(rec jsonvalue.Value) error {
		return f.write(rec, w, &stats)
	})
	if err != nil {
		return stats, err
	}
	return stats, f.finish(ctx, w, stats)
}

// WriteAll flattens records that are already in memory into w and flushes w.
func (f *Flattener) WriteAll(ctx context.Context, records []jsonvalue.Value, w Writer) (Stats, error) {
	var stats Stats
	if err := w.WriteHeader(f.Columns()); err != nil {
		return stats, err
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := f.write(rec, w, &stats); err != nil {
			return stats, err
		}
	}
	return stats, f.finish(ctx, w, stats)
}

func (f *Flattener) write(rec jsonvalue.Value, w Writer, stats *Stats) error {
	stats.Records++
	if f.focus != nil {
		var err error
		if rec, err = f.focus(rec); err != nil {
			return &RecordError{Record: stats.Records, Err: err}
		}
	}
	rows, err := f.Record(rec)
	if err != nil {
		return &RecordError{Record: stats.Records, Err: err}
	}
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	stats.Rows += len(rows)
	return nil
}

func (f *Flattener) finish(ctx context.Context, w Writer, stats Stats) error {
	logger.FromContext(ctx).V(1).Info("records flattened",
		"records", stats.Records, "rows", stats.Rows, "columns", len(f.Columns()))
	return w.Flush()
}
