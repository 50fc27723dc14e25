// Package ui provides the non-interactive terminal output helpers:
// colored status messages, tables, prompts and spinners. The interactive
// frontend lives in internal/tui.
package ui

import (
	"os"

	"github.com/fatih/color"
)

// Message styles.
var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan)
	Header  = color.New(color.FgMagenta, color.Bold)
	Muted   = color.New(color.FgHiBlack)
)

// Record listing styles, shared by the table and plan printers.
var (
	PackageName    = color.New(color.FgWhite, color.Bold)
	PackageVersion = color.New(color.FgGreen)
	PackageRepo    = color.New(color.FgCyan)
	Installed      = color.New(color.FgGreen)
)

// UseColors reports whether output is colored.
var UseColors = true

// UseUnicode reports whether unicode symbols are rendered.
var UseUnicode = true

// Status and plan-change indicators. SymbolAdd, SymbolRemove and
// SymbolKeep mark additions, removals and install-reason changes in plan
// and journal listings.
var (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "→"
	SymbolAdd     = "+"
	SymbolRemove  = "-"
	SymbolKeep    = "~"
)

// Init applies the output configuration. NO_COLOR always wins over the
// config file.
func Init(useColors, useUnicode bool) {
	UseColors = useColors
	UseUnicode = useUnicode

	if !useColors || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	if !useUnicode {
		SymbolSuccess = "[OK]"
		SymbolError = "[ERROR]"
		SymbolWarning = "[WARN]"
		SymbolInfo = "->"
	}
}

// SuccessMsg prints a success message.
func SuccessMsg(format string, args ...any) {
	Success.Printf(SymbolSuccess+" "+format+"\n", args...)
}

// ErrorMsg prints an error message on stderr.
func ErrorMsg(format string, args ...any) {
	Error.Fprintf(os.Stderr, SymbolError+" "+format+"\n", args...)
}

// WarningMsg prints a warning message on stderr.
func WarningMsg(format string, args ...any) {
	Warning.Fprintf(os.Stderr, SymbolWarning+" "+format+"\n", args...)
}

// InfoMsg prints an informational message.
func InfoMsg(format string, args ...any) {
	Info.Printf(SymbolInfo+" "+format+"\n", args...)
}

// HeaderMsg prints a section header.
func HeaderMsg(format string, args ...any) {
	Header.Printf("\n"+format+"\n", args...)
}

// MutedMsg prints a dim message.
func MutedMsg(format string, args ...any) {
	Muted.Printf(format+"\n", args...)
}

// Bold returns s in bold.
func Bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Green returns s in green.
func Green(s string) string {
	return color.GreenString(s)
}

// Red returns s in red.
func Red(s string) string {
	return color.RedString(s)
}

// Cyan returns s in cyan.
func Cyan(s string) string {
	return color.CyanString(s)
}
