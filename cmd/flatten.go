package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/unpack/internal/flatten"
	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/schema"
	"github.com/oakwood-commons/unpack/pkg/core"
	"github.com/oakwood-commons/unpack/pkg/logger"
)

type flattenOptions struct {
	schemaPath  string
	input       string
	output      string
	expression  string
	maxRows     int
	columns     bool
	printSchema bool
}

func newFlattenCmd() *cobra.Command {
	var opts flattenOptions
	cmd := &cobra.Command{
		Use:   "flatten [file]",
		Short: "Flatten JSON records into named columns following a schema",
		Long: `flatten reads JSON records, one per line by default, and writes one row per
combination of list elements: lists are exploded, structs are unnested and
every scalar field becomes a column named by the schema (key=column renames
it). Fields the schema names but a record lacks come out null; anything else
in the record is dropped.

The schema uses the syntax the schema view prints. Without --schema it is
inferred from the records themselves, the first record to reach a field
deciding its type.`,
		Example: "\n  unpack -o schema sample.json > orders.schema\n" +
			"  unpack flatten --schema orders.schema orders.ndjson\n" +
			"  unpack flatten -o csv --input json export.json\n" +
			"  unpack flatten --print-schema orders.ndjson\n" +
			"  unpack flatten --columns --schema orders.schema\n",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(cmd, args, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.schemaPath, "schema", "s", "", "schema file; inferred from the records when empty")
	flags.StringVar(&opts.input, "input", "", "input format: "+flatten.InputNDJSON+"|"+flatten.InputJSON+" (default from config)")
	flags.StringVarP(&opts.output, "output", "o", "", "output format: "+strings.Join(flatten.Outputs, "|")+" (default from config)")
	flags.StringVarP(&opts.expression, "expression", "e", "", "CEL expression applied to each record before flattening")
	flags.IntVar(&opts.maxRows, "max-rows", -1, "rows one record may explode into; 0 means no cap (default from config)")
	flags.BoolVar(&opts.columns, "columns", false, "print each column's name, type and source path instead of flattening")
	flags.BoolVar(&opts.printSchema, "print-schema", false, "print the schema in use instead of flattening")
	return cmd
}

func runFlatten(cmd *cobra.Command, args []string, opts flattenOptions) error {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)
	params := runParams(cmd)
	cfg, err := loadConfig(params)
	if err != nil {
		return err
	}
	if opts.input == "" {
		opts.input = cfg.Flatten.Input
	}
	if opts.output == "" {
		opts.output = cfg.Flatten.Output
	}
	if opts.maxRows < 0 {
		opts.maxRows = cfg.Flatten.MaxRows
	}

	engine, err := core.New(core.WithRootToken(cfg.Render.RootToken), core.WithLogger(*lgr))
	if err != nil {
		return err
	}
	focus := func(rec jsonvalue.Value) (jsonvalue.Value, error) {
		return engine.Focus(opts.expression, rec)
	}

	var sch *schema.Schema
	if opts.schemaPath != "" {
		if sch, err = readSchema(cmd, opts.schemaPath); err != nil {
			return err
		}
	}

	// Only schema-only listings can skip the records.
	if sch != nil && (opts.columns || opts.printSchema) {
		return describeSchema(cmd.OutOrStdout(), sch, opts)
	}

	in, closeIn, err := openRecords(cmd, args)
	if err != nil {
		return err
	}
	defer closeIn()

	noColor := params.NoColor || !isTerminal(cmd.OutOrStdout())
	w, err := flatten.NewWriter(opts.output, cmd.OutOrStdout(), formatter.NewStyles(cfg.Theme, noColor))
	if err != nil {
		return err
	}

	if sch != nil {
		f := flatten.New(sch, flatten.WithMaxRows(opts.maxRows), flatten.WithFocus(focus))
		stats, err := f.Stream(ctx, in, opts.input, w)
		lgr.V(1).Info("flatten done", "schema", opts.schemaPath, "records", stats.Records, "rows", stats.Rows)
		return err
	}

	records, err := collectRecords(ctx, in, opts.input, focus)
	if err != nil {
		return err
	}
	sch, _, err = engine.InferSchema(records...)
	if err != nil {
		return err
	}
	lgr.V(1).Info("schema inferred", "records", len(records), "columns", len(sch.Columns))
	if opts.columns || opts.printSchema {
		return describeSchema(cmd.OutOrStdout(), sch, opts)
	}
	_, err = flatten.New(sch, flatten.WithMaxRows(opts.maxRows)).WriteAll(ctx, records, w)
	return err
}

// readSchema parses the schema file. A parse error also prints the
// offending lines to stderr.
func readSchema(cmd *cobra.Command, path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	sch, err := schema.Parse(string(data))
	if err != nil {
		var perr *schema.ParseError
		if errors.As(err, &perr) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: tripped on line %d\n\n%s\n", path, perr.Line, perr.Excerpt())
		}
		return nil, err
	}
	return sch, nil
}

func describeSchema(out io.Writer, sch *schema.Schema, opts flattenOptions) error {
	if opts.printSchema {
		_, err := io.WriteString(out, sch.Text())
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range sch.Columns {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Type, c.Selector()); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func openRecords(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", args[0], err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	in := cmd.InOrStdin()
	if in == os.Stdin && !stdinIsPiped() {
		return nil, nil, errNoInput
	}
	return in, func() {}, nil
}

func collectRecords(ctx context.Context, r io.Reader, format string, focus func(jsonvalue.Value) (jsonvalue.Value, error)) ([]jsonvalue.Value, error) {
	var records []jsonvalue.Value
	err := flatten.ReadRecords(ctx, r, format, func(rec jsonvalue.Value) error {
		rec, err := focus(rec)
		if err != nil {
			return &flatten.RecordError{Record: len(records) + 1, Err: err}
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}
