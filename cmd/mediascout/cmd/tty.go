package cmd

import (
	"os"

	"golang.org/x/term"
)

// isStdoutTTY returns true if stdout is connected to a terminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// useColor reports whether event lines get ANSI colors. NO_COLOR disables
// them regardless of the terminal.
func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isStdoutTTY()
}
