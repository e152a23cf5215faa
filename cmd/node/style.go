package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/ocxide/monee/apperr"
)

// Styles mirror robinvdvleuten-beancount's cli package: a small adaptive
// palette for success/error/info lines, reused here for show's tabular
// output and the structured stderr diagnostic printer spec.md §6/§7 call
// for ("errors are written as structured diagnostics to stderr").
var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"}).Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	moneyStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
)

// coder is satisfied by anything carrying a stable error code, whether it
// arrived as an apperr.Coder directly or wrapped in apperr.Error[E].
type coder interface {
	Code() string
}

// printDiagnostic writes err to stderr with its stable error code, if any
// (spec.md §7: "a stable error code ... and a single descriptive
// sentence"). Errors with no code (infrastructure failures, plain Go
// errors from flag parsing) print the message alone.
func printDiagnostic(err error) {
	var c coder
	if errors.As(err, &c) && c.Code() != "" {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", errorStyle.Render("error"), codeStyle.Render(c.Code()), err.Error())
		return
	}

	var withCode apperr.Coder
	if errors.As(err, &withCode) {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", errorStyle.Render("error"), codeStyle.Render(withCode.Code()), withCode.Error())
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("error"), err.Error())
}
