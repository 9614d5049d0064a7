package ir

import "fmt"

// Op is one operation of a Gnalose program.
type Op interface {
	opNode()
}

// Cond is a comparison between two operands.
type Cond int

const (
	Equal Cond = iota
	NotEqual
	Less
	Greater
	LessOrEqual
	GreaterOrEqual
)

// Symbol returns the C operator for c.
func (c Cond) Symbol() string {
	switch c {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case Greater:
		return ">"
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	default:
		panic(fmt.Sprintf("ir: unknown condition %d", int(c)))
	}
}

// Holds reports whether a c b.
func (c Cond) Holds(a, b int32) bool {
	switch c {
	case Equal:
		return a == b
	case NotEqual:
		return a != b
	case Less:
		return a < b
	case Greater:
		return a > b
	case LessOrEqual:
		return a <= b
	case GreaterOrEqual:
		return a >= b
	default:
		panic(fmt.Sprintf("ir: unknown condition %d", int(c)))
	}
}

func (c Cond) String() string {
	switch c {
	case Equal:
		return "Equal"
	case NotEqual:
		return "NotEqual"
	case Less:
		return "Less"
	case Greater:
		return "Greater"
	case LessOrEqual:
		return "LessOrEqual"
	case GreaterOrEqual:
		return "GreaterOrEqual"
	default:
		return "unknown"
	}
}

type (
	// Define makes a variable alive with value 0.
	Define struct{ Var RValue }

	// DefineArray makes every cell of an array alive with value 0.
	DefineArray struct{ Array ArrayRef }

	// Undefine kills a variable.
	Undefine struct{ Var RValue }

	// UndefineArray kills an array.
	UndefineArray struct{ Array ArrayRef }

	// Read stores an integer from the input into Target.
	Read struct{ Target VValue }

	// Print writes Value as a decimal number.
	Print struct{ Value AValue }

	// PrintASCII writes Value as a character.
	PrintASCII struct{ Value AValue }

	// Add shifts every displayed value up by Value, except Target and
	// Value itself, which are compensated.
	Add struct {
		Value  AValue
		Target VValue
	}

	// Subtract is Add with the opposite sign.
	Subtract struct {
		Value  AValue
		Target VValue
	}

	// If closes a conditional block opened by an earlier Fi.
	//
	// Cond is stored negated with respect to the source text: the line
	// "if a greater than b" produces Cond == LessOrEqual. The block between
	// the Fi and this If runs when A Cond B holds.
	If struct {
		A, B AValue
		Cond Cond
	}

	// Fi opens a conditional block; it is paired with the next unpaired If.
	Fi struct{}

	// Mark places a label.
	Mark struct{ Flag FlagRef }

	// Unmark kills a label.
	Unmark struct{ Flag FlagRef }

	// Pin sets the label the next Goto jumps to.
	Pin struct{ Flag FlagRef }

	// Goto jumps to the pinned label.
	Goto struct{}
)

func (Define) opNode()        {}
func (DefineArray) opNode()   {}
func (Undefine) opNode()      {}
func (UndefineArray) opNode() {}
func (Read) opNode()          {}
func (Print) opNode()         {}
func (PrintASCII) opNode()    {}
func (Add) opNode()           {}
func (Subtract) opNode()      {}
func (If) opNode()            {}
func (Fi) opNode()            {}
func (Mark) opNode()          {}
func (Unmark) opNode()        {}
func (Pin) opNode()           {}
func (Goto) opNode()          {}

func (o Define) String() string        { return fmt.Sprintf("Define(%v)", o.Var) }
func (o DefineArray) String() string   { return fmt.Sprintf("DefineArray(%v)", o.Array) }
func (o Undefine) String() string      { return fmt.Sprintf("Undefine(%v)", o.Var) }
func (o UndefineArray) String() string { return fmt.Sprintf("UndefineArray(%v)", o.Array) }
func (o Read) String() string          { return fmt.Sprintf("Read(%v)", o.Target) }
func (o Print) String() string         { return fmt.Sprintf("Print(%v)", o.Value) }
func (o PrintASCII) String() string    { return fmt.Sprintf("PrintASCII(%v)", o.Value) }
func (o Add) String() string           { return fmt.Sprintf("Add(%v, %v)", o.Value, o.Target) }
func (o Subtract) String() string      { return fmt.Sprintf("Subtract(%v, %v)", o.Value, o.Target) }
func (o If) String() string            { return fmt.Sprintf("If(%v, %v, %v)", o.A, o.B, o.Cond) }
func (Fi) String() string              { return "Fi" }
func (o Mark) String() string          { return fmt.Sprintf("Mark(%v)", o.Flag) }
func (o Unmark) String() string        { return fmt.Sprintf("Unmark(%v)", o.Flag) }
func (o Pin) String() string           { return fmt.Sprintf("Pin(%v)", o.Flag) }
func (Goto) String() string            { return "Goto" }

// OpLine is an Op with the source line it came from.
type OpLine struct {
	Op   Op
	Line int // 1-based, counted from the bottom of the file
	Text string
}
