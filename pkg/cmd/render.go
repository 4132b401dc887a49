package cmd

import (
	"fmt"
	"os"

	"github.com/svlang/elaborate/pkg/elaborate/diag"
)

// renderDiagnostics prints every diagnostic in the store, one per line,
// coloring the severity label when stdout is an interactive terminal.
func renderDiagnostics(store *diag.Store) {
	color := isColorTerminal()
	for _, d := range store.Sorted() {
		label := severityLabel(d.Severity())
		if color {
			label = colorize(d.Severity(), label)
		}
		fmt.Printf("%s: %s", label, d.Code)
		for _, a := range d.Args {
			fmt.Printf(" %v", a)
		}
		if d.Count > 1 {
			fmt.Printf(" (x%d)", d.Count)
		}
		fmt.Println()
	}
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func colorize(s diag.Severity, label string) string {
	const (
		red    = "\x1b[31m"
		yellow = "\x1b[33m"
		cyan   = "\x1b[36m"
		reset  = "\x1b[0m"
	)
	switch s {
	case diag.SeverityError:
		return red + label + reset
	case diag.SeverityWarning:
		return yellow + label + reset
	default:
		return cyan + label + reset
	}
}

// exitOnErrors exits the process with status 1 if store holds any
// error-severity diagnostic, the convention `check` uses to signal failure
// to a calling build system.
func exitOnErrors(store *diag.Store) {
	if store.ErrorCount() > 0 {
		os.Exit(1)
	}
}
