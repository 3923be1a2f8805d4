package cmd

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/oakwood-commons/unpack/internal/dom"
	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/web"
	"github.com/oakwood-commons/unpack/pkg/core"
)

// Output formats of the root command.
const (
	OutputSchema  = "schema"
	OutputPretty  = "pretty"
	OutputTree    = "tree"
	OutputRenames = "renames"
	OutputHTML    = "html"
	OutputMermaid = "mermaid"
)

var outputFormats = []string{OutputSchema, OutputPretty, OutputTree, OutputRenames, OutputHTML, OutputMermaid}

type renderOptions struct {
	Format         string
	Styles         formatter.Styles
	Highlight      string
	HighlightClass string
}

func validateOutput(format string) error {
	for _, f := range outputFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (expected %s)", format, strings.Join(outputFormats, ", "))
}

// render formats res for the terminal or, for html, as the two view
// containers the browser page uses.
func render(res *core.Result, opts renderOptions) (string, error) {
	switch opts.Format {
	case OutputSchema:
		return opts.Styles.Render(formatter.Lines(res.Schema), formatter.DefaultIndent), nil
	case OutputPretty:
		return opts.Styles.Render(formatter.Lines(res.Pretty), "  "), nil
	case OutputTree:
		return formatter.FormatAsTree(res.Pretty, formatter.TreeOptions{}), nil
	case OutputRenames:
		keys := res.Renames.Keys()
		if len(keys) == 0 {
			return "", nil
		}
		return strings.Join(keys, "\n") + "\n", nil
	case OutputHTML:
		return renderHTML(res, opts)
	case OutputMermaid:
		return formatter.FormatAsMermaid(res.Schema, formatter.MermaidOptions{}), nil
	}
	return "", validateOutput(opts.Format)
}

func renderHTML(res *core.Result, opts renderOptions) (string, error) {
	pretty := dom.Build(res.Pretty, web.PrettyContainerID)
	schema := dom.Build(res.Schema, web.SchemaContainerID)
	if opts.Highlight != "" {
		h := dom.NewHighlighter(res.Registry, pretty, schema, opts.HighlightClass)
		id, ok := h.Lookup(opts.Highlight)
		if !ok {
			return "", fmt.Errorf("no path with class %q", opts.Highlight)
		}
		h.Enter(dom.Pretty, id)
	}

	var b strings.Builder
	for _, n := range []*html.Node{pretty, schema} {
		s, err := dom.Render(n)
		if err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
