package ui

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the TUI on input and blocks until the user quits. A zero
// width or height is taken from the terminal on stdout. It returns the
// input as last edited.
func Run(input string, opts Options, progOpts ...tea.ProgramOption) (string, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if opts.Width <= 0 {
				opts.Width = w
			}
			if opts.Height <= 0 {
				opts.Height = h
			}
		}
	}
	m, err := New(input, opts)
	if err != nil {
		return input, err
	}
	final, err := tea.NewProgram(m, progOpts...).Run()
	if err != nil {
		return m.Input(), fmt.Errorf("run TUI: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm.Input(), nil
	}
	return m.Input(), nil
}
