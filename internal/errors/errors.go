// Package errors provides diagnostic accumulation and formatting for the
// Rove compiler. Diagnostics carry position and source context and render
// with a caret pointing at the error location.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/rovelang/go-rove/internal/lexer"
)

// Severity distinguishes errors from stylistic warnings. Warnings are
// non-fatal: a parse succeeds iff no error-severity diagnostics were
// reported.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single compiler diagnostic with position and context.
type Diagnostic struct {
	Severity Severity
	Message  string
	Source   string
	File     string
	Pos      lexer.Position
}

// New creates an error-severity diagnostic.
func New(pos lexer.Position, message, source, file string) *Diagnostic {
	return &Diagnostic{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

var (
	caretColor = color.New(color.FgRed, color.Bold)
	msgColor   = color.New(color.Bold)
)

// Format renders the diagnostic with its source line and a caret. If
// colored is true, ANSI colors are used for terminal output.
func (d *Diagnostic) Format(colored bool) string {
	var sb strings.Builder

	head := "Error"
	if d.Severity == Warning {
		head = "Warning"
	}
	if d.File != "" {
		fmt.Fprintf(&sb, "%s in %s:%d:%d\n", head, d.File, d.Pos.Line, d.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s at line %d:%d\n", head, d.Pos.Line, d.Pos.Column)
	}

	if line := d.sourceLine(d.Pos.Line); line != "" {
		lineNum := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNum)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNum)+d.Pos.Column-1))
		if colored {
			sb.WriteString(caretColor.Sprint("^"))
		} else {
			sb.WriteString("^")
		}
		sb.WriteString("\n")
	}

	if colored {
		sb.WriteString(msgColor.Sprint(d.Message))
	} else {
		sb.WriteString(d.Message)
	}

	return sb.String()
}

// sourceLine extracts a specific 1-indexed line from the source.
func (d *Diagnostic) sourceLine(lineNum int) string {
	if d.Source == "" {
		return ""
	}

	lines := strings.Split(d.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// DiagnosticList accumulates diagnostics for one compilation session.
// Parsing continues to end of input after an error; the session succeeds iff
// the list holds no error-severity entries.
type DiagnosticList struct {
	diags []*Diagnostic
}

// NewList creates an empty diagnostic list.
func NewList() *DiagnosticList {
	return &DiagnosticList{}
}

// Append adds a diagnostic.
func (l *DiagnosticList) Append(d *Diagnostic) {
	l.diags = append(l.diags, d)
}

// Errorf records an error-severity diagnostic at pos.
func (l *DiagnosticList) Errorf(pos lexer.Position, source, file, format string, args ...any) {
	l.Append(&Diagnostic{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		Source:  source,
		File:    file,
	})
}

// Warnf records a warning-severity diagnostic at pos.
func (l *DiagnosticList) Warnf(pos lexer.Position, source, file, format string, args ...any) {
	l.Append(&Diagnostic{
		Severity: Warning,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
		File:     file,
	})
}

// All returns every diagnostic in report order.
func (l *DiagnosticList) All() []*Diagnostic {
	return l.diags
}

// ErrorCount returns the number of error-severity diagnostics.
func (l *DiagnosticList) ErrorCount() int {
	count := 0
	for _, d := range l.diags {
		if d.Severity == Error {
			count++
		}
	}
	return count
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (l *DiagnosticList) HasErrors() bool {
	return l.ErrorCount() > 0
}
