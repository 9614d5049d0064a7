// Package diag carries the line-keyed errors shared by every pipeline stage.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Error ties a stage failure to one source line.
//
// Line counts from the bottom of the file, starting at 1, because the lexer
// hands lines to the rest of the pipeline in reverse order.
type Error struct {
	Stage       string // "lexer", "parser" or "codegen"; may be empty
	Line        int
	LinesAmount int
	Text        string // raw source line
	Err         error
}

// New wraps err with its line information. A nil err stays nil.
func New(stage string, line, linesAmount int, text string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Stage:       stage,
		Line:        line,
		LinesAmount: linesAmount,
		Text:        text,
		Err:         err,
	}
}

// TopLine returns the conventional 1-based line number counted from the top.
func (e *Error) TopLine() int {
	return e.LinesAmount - (e.Line - 1)
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	var b strings.Builder
	if e.Stage != "" {
		fmt.Fprintf(&b, "[%s] ", e.Stage)
	}
	fmt.Fprintf(&b, "line %d (from bottom %d): %v", e.TopLine(), e.Line, e.Err)
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Format renders err for a terminal. Errors without line information are
// printed as they are.
//
//	error: [parser] "x" is not defined as variable at this point
//	  3 | print x
//	    | ^^^^^^^
//	    = line 3 (from bottom: 1)
func Format(err error) string {
	if err == nil {
		return ""
	}
	lerr, ok := Line(err)
	if !ok {
		return fmt.Sprintf("error: %v\n", err)
	}

	var b strings.Builder
	b.WriteString("error: ")
	if lerr.Stage != "" {
		fmt.Fprintf(&b, "[%s] ", lerr.Stage)
	}
	fmt.Fprintf(&b, "%v\n", lerr.Err)

	text := strings.TrimRight(lerr.Text, "\r")
	trimmed := strings.TrimLeft(text, " \t")
	indent := text[:len(text)-len(trimmed)]
	width := runewidth.StringWidth(strings.TrimRight(trimmed, " \t"))
	if width == 0 {
		width = 1
	}
	fmt.Fprintf(&b, "%3d | %s\n", lerr.TopLine(), text)
	fmt.Fprintf(&b, "    | %s%s\n", indent, strings.Repeat("^", width))
	fmt.Fprintf(&b, "    = line %d (from bottom: %d)\n", lerr.TopLine(), lerr.Line)
	return b.String()
}

// Line reports the line information attached to err, if any.
func Line(err error) (*Error, bool) {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr, true
	}
	return nil, false
}
