package cmd

import (
	"context"
	"io"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/unpack/internal/ui"
	"github.com/oakwood-commons/unpack/pkg/logger"
)

var openTerminalIOFn = openTerminalIO

// isTerminal reports whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runTUI(ctx context.Context, text string, opts ui.Options) error {
	progOpts, cleanup := programOptions(ctx)
	defer cleanup()
	_, err := ui.Run(text, opts, progOpts...)
	if err != nil {
		logger.FromContext(ctx).V(1).Info("tui exited", "error", err.Error())
	}
	return err
}

// programOptions reopens the terminal for keyboard input when the document
// arrived on a pipe. Without a terminal device it falls back to the
// defaults.
func programOptions(ctx context.Context) ([]tea.ProgramOption, func()) {
	noop := func() {}
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !stdinIsPiped() {
		return opts, noop
	}

	in, out, err := openTerminalIOFn()
	if err != nil {
		return opts, noop
	}
	opts = append(opts, tea.WithInput(in))
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts, func() {
		_ = in.Close()
		if out != nil && out != in {
			_ = out.Close()
		}
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, nil //nolint:nilerr // input alone is enough to drive the TUI
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}
