// Package cmd is the unpack command line: render JSON to the terminal,
// browse it in the TUI, or serve the browser front end.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/unpack/internal/config"
	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/ui"
	"github.com/oakwood-commons/unpack/pkg/core"
	"github.com/oakwood-commons/unpack/pkg/logger"
	"github.com/oakwood-commons/unpack/pkg/settings"
)

var (
	stdinIsPiped   = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	runInteractive = runTUI
)

// errNoInput is returned when stdin is a terminal and neither a file nor
// --demo was given.
var errNoInput = errors.New("no input: pass a file, pipe JSON on stdin, or use --demo")

// NewRootCmd builds the command tree. Each call returns independent flag
// state.
func NewRootCmd() *cobra.Command {
	params := settings.NewCliParams()
	var (
		demo  bool
		debug bool
	)

	root := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Pretty-print JSON next to its rough schema",
		Long: `unpack parses one JSON document and renders two views of it: the document
pretty-printed, and a rough schema that names the type of every value.
Arrays are described by their first element; a key that appears at several
depths with different types is renamed after its parent path.`,
		Example:       "\n  unpack data.json\n  curl -s https://example.com/api | unpack -o pretty\n  unpack data.json -e '_.items[0]'\n  unpack --demo -i\n  unpack serve --addr :8080\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       settings.VersionInformation.BuildVersion,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level int8
			if debug {
				level = -1
			}
			params.MinLogLevel = level
			lgr := logger.Get(level)
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = logger.WithLogger(ctx, lgr)
			ctx = settings.IntoContext(ctx, params)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case demo:
				params.Input = settings.Input{Source: settings.InputDemo}
			case len(args) == 1 && args[0] != "-":
				params.Input = settings.Input{Source: settings.InputFile, Path: args[0]}
			}
			return runRoot(cmd, params)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&params.Output, "output", "o", params.Output, "output format: "+strings.Join(outputFormats, "|"))
	flags.StringVarP(&params.Expression, "expression", "e", "", "CEL expression using '_' as the root; the result is rendered instead of the whole document")
	flags.StringVar(&params.Highlight, "highlight", "", "path class to mark highlighted in html output")
	flags.BoolVar(&params.Repair, "repair", false, "on invalid input, print a repaired version of the document as a suggestion")
	flags.BoolVarP(&params.Interactive, "interactive", "i", false, "browse both views in the terminal UI")
	flags.BoolVar(&demo, "demo", false, "render the built-in demo document")
	addSharedFlags(root.PersistentFlags(), params, &debug)

	root.AddCommand(newServeCmd(), newFlattenCmd(), newVersionCmd(), newConfigCmd(), newFunctionsCmd())
	return root
}

func addSharedFlags(fs *pflag.FlagSet, params *settings.Run, debug *bool) {
	fs.StringVar(&params.ConfigFile, "config-file", "", "path to a YAML or TOML config file")
	fs.BoolVar(&params.NoColor, "no-color", false, "disable color output")
	fs.BoolVar(debug, "debug", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func runRoot(cmd *cobra.Command, params *settings.Run) error {
	lgr := logger.FromContext(cmd.Context())
	if err := validateOutput(params.Output); err != nil {
		return err
	}

	cfg, err := loadConfig(params)
	if err != nil {
		return err
	}
	engine, err := core.New(core.WithRootToken(cfg.Render.RootToken), core.WithLogger(*lgr))
	if err != nil {
		return err
	}

	text, err := readInput(cmd, params, cfg)
	if err != nil {
		return err
	}
	lgr.V(1).Info("input read", "source", params.Input.Source.String(), "bytes", len(text))

	noColor := params.NoColor || !isTerminal(cmd.OutOrStdout())
	if params.Interactive {
		styles := formatter.NewStyles(cfg.Theme, params.NoColor)
		return runInteractive(cmd.Context(), text, ui.Options{
			Engine:     engine,
			Styles:     styles,
			Expression: params.Expression,
		})
	}

	res, err := engine.UnpackExpression(text, params.Expression)
	if err != nil {
		if params.Repair {
			reportRepair(cmd.ErrOrStderr(), text, err)
		}
		return err
	}

	out, err := render(res, renderOptions{
		Format:         params.Output,
		Styles:         formatter.NewStyles(cfg.Theme, noColor),
		Highlight:      params.Highlight,
		HighlightClass: cfg.Render.HighlightClass,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func loadConfig(params *settings.Run) (config.Config, error) {
	path := config.ResolvePath(params.ConfigFile)
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// readInput returns the document text from the source params selects.
func readInput(cmd *cobra.Command, params *settings.Run, cfg config.Config) (string, error) {
	switch params.Input.Source {
	case settings.InputDemo:
		data, err := cfg.DemoPayload()
		if err != nil {
			return "", err
		}
		return string(data), nil
	case settings.InputFile:
		data, err := os.ReadFile(params.Input.Path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", params.Input.Path, err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if in == os.Stdin && !stdinIsPiped() {
		if !params.Interactive {
			return "", errNoInput
		}
		// the TUI starts on the demo document and the user edits from there
		params.Input.Source = settings.InputDemo
		return readInput(cmd, params, cfg)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// reportRepair prints a repaired version of text when one can be produced.
// Parse failures that are not syntax problems are left alone.
func reportRepair(w io.Writer, text string, parseErr error) {
	var perr *jsonvalue.ParseError
	if !errors.As(parseErr, &perr) || errors.Is(parseErr, jsonvalue.ErrEmptyInput) {
		return
	}
	fixed, err := jsonvalue.Repair(text)
	if err != nil {
		fmt.Fprintf(w, "no repair suggestion: %v\n", err)
		return
	}
	fmt.Fprintln(w, "repaired suggestion (not rendered):")
	fmt.Fprintln(w, fixed)
}
