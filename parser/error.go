package parser

import (
	"errors"
	"fmt"

	"github.com/sergev/gnalose/ir"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// InvalidStructure: the line matches no command.
	InvalidStructure ErrorKind = iota
	// NotDefinedVariable: a name is read before a line below defines it.
	NotDefinedVariable
	// NameUsedTwice: a name is used as two different kinds.
	NameUsedTwice
	// DoubleLabel: a label is placed twice.
	DoubleLabel
	// InvalidName: a new name cannot be spelled in C.
	InvalidName
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidStructure:
		return "InvalidStructure"
	case NotDefinedVariable:
		return "NotDefinedVariable"
	case NameUsedTwice:
		return "NameUsedTwice"
	case DoubleLabel:
		return "DoubleLabel"
	case InvalidName:
		return "InvalidName"
	default:
		return "unknown"
	}
}

// Error is a parse failure of a single line.
type Error struct {
	Kind ErrorKind
	Name string
	Have ir.NameType // NameUsedTwice: the kind the name already has
	Want ir.NameType // NotDefinedVariable, NameUsedTwice: the kind the line asks for
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case InvalidStructure:
		return "the line does not match any command"
	case NotDefinedVariable:
		return fmt.Sprintf("%q is not defined as %v at this point", e.Name, e.Want)
	case NameUsedTwice:
		return fmt.Sprintf("the name %q is used both for %v and %v", e.Name, e.Have, e.Want)
	case DoubleLabel:
		return fmt.Sprintf("label %q was defined twice", e.Name)
	case InvalidName:
		return fmt.Sprintf("%q cannot be used as a %v name", e.Name, e.Want)
	default:
		return "unknown parse error"
	}
}

var errInvalidStructure = &Error{Kind: InvalidStructure}

func notDefined(name string, want ir.NameType) error {
	return &Error{Kind: NotDefinedVariable, Name: name, Want: want}
}

func usedTwice(name string, have, want ir.NameType) error {
	return &Error{Kind: NameUsedTwice, Name: name, Have: have, Want: want}
}

// KindOf reports the kind of the parse error wrapped in err.
func KindOf(err error) (ErrorKind, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind, true
	}
	return 0, false
}
