// Package ir defines the intermediate representation produced by the parser
// and consumed by the code generator and the interpreter.
//
// Operands refer to the name tables of a Representation through integer
// handles; the IR has no pointers between its parts.
package ir

import "fmt"

// RValue identifies a scalar variable in Representation.Vars.
type RValue int

// ArrayRef identifies an array in Representation.Arrays.
type ArrayRef int

// FlagRef identifies a label in Representation.Flags.
type FlagRef int

// Literal is an immediate integer operand.
type Literal int32

// ArrayElement addresses one cell of an array. The index is never another
// array element.
type ArrayElement struct {
	Array ArrayRef
	Index IValue
}

// AValue is any readable operand: Literal, RValue or ArrayElement.
type AValue interface {
	avalue()
}

// VValue is a storage operand: RValue or ArrayElement.
type VValue interface {
	AValue
	vvalue()
}

// IValue is an array index: Literal or RValue.
type IValue interface {
	AValue
	ivalue()
}

func (Literal) avalue() {}
func (Literal) ivalue() {}

func (RValue) avalue() {}
func (RValue) vvalue() {}
func (RValue) ivalue() {}

func (ArrayElement) avalue() {}
func (ArrayElement) vvalue() {}

func (l Literal) String() string { return fmt.Sprintf("Literal(%d)", int32(l)) }
func (r RValue) String() string  { return fmt.Sprintf("RValue(%d)", int(r)) }
func (a ArrayRef) String() string {
	return fmt.Sprintf("ArrayRef(%d)", int(a))
}
func (f FlagRef) String() string { return fmt.Sprintf("FlagRef(%d)", int(f)) }
func (e ArrayElement) String() string {
	return fmt.Sprintf("ArrayElement(%v[%v])", e.Array, e.Index)
}

// NameType is the kind a name is bound to. A name has exactly one.
type NameType int

const (
	Variable NameType = iota
	Array
	Flag
)

func (t NameType) String() string {
	switch t {
	case Variable:
		return "variable"
	case Array:
		return "array"
	case Flag:
		return "flag"
	default:
		return "unknown"
	}
}
