// Package display styles terminal output with ANSI escape codes and renders
// aligned tables.
//
// Styling follows NO_COLOR (https://no-color.org/) and FORCE_COLOR, and is
// off when stdout is not a terminal.
package display

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI escape codes for styling.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	fgGray = "\033[90m"
)

var enabled = detect()

func detect() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetEnabled overrides the detected styling state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether styling is active.
func Enabled() bool {
	return enabled
}

func style(text string, codes ...string) string {
	if !enabled || len(codes) == 0 {
		return text
	}
	var prefix string
	for _, c := range codes {
		prefix += c
	}
	return prefix + text + reset
}

// Bold renders text in bold.
func Bold(text string) string { return style(text, bold) }

// Dim renders text faint. Used for the prayer in progress.
func Dim(text string) string { return style(text, dim) }

// Gray renders secondary information.
func Gray(text string) string { return style(text, fgGray) }

// Warn renders estimated or otherwise uncertain values.
func Warn(text string) string { return style(text, yellow) }

// Accent renders the next prayer and today's row.
func Accent(text string) string { return style(text, bold, cyan) }
