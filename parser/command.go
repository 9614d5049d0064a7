package parser

import (
	"fmt"
	"strings"

	"github.com/sergev/gnalose/ir"
	"github.com/sergev/gnalose/lexer"
)

type slotKind int

const (
	slotName  slotKind = iota // <name>: a bare name
	slotVValue                // <vval>: a name or an array access
	slotAValue                // <aval>: anything
	slotArray                 // <arr>: an array access
)

func (k slotKind) accepts(op operand) bool {
	switch k {
	case slotName:
		return op.kind == operandName
	case slotVValue:
		return op.kind == operandName || op.kind == operandArray
	case slotAValue:
		return true
	case slotArray:
		return op.kind == operandArray
	default:
		return false
	}
}

// command is one line template: fixed keywords at some positions and typed
// slots at the others. build receives the slot operands in order.
type command struct {
	pattern string
	words   []string // "" at slot positions
	slots   []slotKind
	build   func(s *state, args []operand) (ir.Op, error)
}

var slotKinds = map[string]slotKind{
	"<name>": slotName,
	"<vval>": slotVValue,
	"<aval>": slotAValue,
	"<arr>":  slotArray,
}

func newCommand(pattern string, build func(s *state, args []operand) (ir.Op, error)) command {
	c := command{pattern: pattern, build: build}
	for _, word := range strings.Fields(pattern) {
		if kind, ok := slotKinds[word]; ok {
			c.words = append(c.words, "")
			c.slots = append(c.slots, kind)
			continue
		}
		if strings.HasPrefix(word, "<") {
			panic(fmt.Sprintf("parser: unknown slot %s in %q", word, pattern))
		}
		c.words = append(c.words, word)
	}
	return c
}

// match returns the slot operands if ops fits the template.
func (c *command) match(ops []operand) ([]operand, bool) {
	if len(ops) != len(c.words) {
		return nil, false
	}
	args := make([]operand, 0, len(c.slots))
	for i, word := range c.words {
		op := ops[i]
		if word != "" {
			if op.kind != operandName || op.name != word {
				return nil, false
			}
			continue
		}
		if !c.slots[len(args)].accepts(op) {
			return nil, false
		}
		args = append(args, op)
	}
	return args, true
}

// commands lists every Gnalose line in matching order.
//
// The surface language is inverted: "undefine" defines, "define"
// undefines, "print" reads, "read to" prints, "add" subtracts, "sub" adds,
// "unmark" places a label and "mark" removes it. Conditions are stored
// negated (see ir.If). Array forms must come before the scalar ones.
var commands = []command{
	newCommand("undefine single <arr>", buildDefineArray),
	newCommand("define single <name>", buildUndefineArray),
	newCommand("undefine <name>", buildDefine),
	newCommand("define <name>", buildUndefine),
	newCommand("print <vval>", buildRead),
	newCommand("read to <vval>", buildPrint),
	newCommand("read as number to <aval>", buildPrintASCII),
	newCommand("add <aval> to <vval>", buildSubtract),
	newCommand("sub <aval> from <vval>", buildAdd),
	newCommand("unmark <name>", buildMark),
	newCommand("mark <name>", buildUnmark),
	newCommand("forget <name>", buildPin),
	newCommand("halt", buildGoto),
	newCommand("if <aval> greater than <aval>", buildIf(ir.LessOrEqual)),
	newCommand("if <aval> not equal to <aval>", buildIf(ir.Equal)),
	newCommand("if <aval> lower than <aval>", buildIf(ir.GreaterOrEqual)),
	newCommand("if <aval> equal to <aval>", buildIf(ir.NotEqual)),
	newCommand("if <aval> lower or equal than <aval>", buildIf(ir.Greater)),
	newCommand("if <aval> greater or equal than <aval>", buildIf(ir.Less)),
	newCommand("fi", buildFi),
}

func buildDefineArray(s *state, args []operand) (ir.Op, error) {
	arr := args[0]
	if arr.index.Kind != lexer.KindLiteral {
		return nil, errInvalidStructure
	}
	ref, err := s.internArray(arr.name, int(arr.index.Value))
	if err != nil {
		return nil, err
	}
	return ir.DefineArray{Array: ref}, nil
}

func buildUndefineArray(s *state, args []operand) (ir.Op, error) {
	idx, err := s.lookup(args[0].name, ir.Array)
	if err != nil {
		return nil, err
	}
	return ir.UndefineArray{Array: ir.ArrayRef(idx)}, nil
}

func buildDefine(s *state, args []operand) (ir.Op, error) {
	idx, err := s.intern(args[0].name, ir.Variable)
	if err != nil {
		return nil, err
	}
	return ir.Define{Var: ir.RValue(idx)}, nil
}

func buildUndefine(s *state, args []operand) (ir.Op, error) {
	idx, err := s.lookup(args[0].name, ir.Variable)
	if err != nil {
		return nil, err
	}
	return ir.Undefine{Var: ir.RValue(idx)}, nil
}

func buildRead(s *state, args []operand) (ir.Op, error) {
	target, err := s.vValue(args[0])
	if err != nil {
		return nil, err
	}
	return ir.Read{Target: target}, nil
}

func buildPrint(s *state, args []operand) (ir.Op, error) {
	value, err := s.aValue(args[0])
	if err != nil {
		return nil, err
	}
	return ir.Print{Value: value}, nil
}

func buildPrintASCII(s *state, args []operand) (ir.Op, error) {
	value, err := s.aValue(args[0])
	if err != nil {
		return nil, err
	}
	return ir.PrintASCII{Value: value}, nil
}

func buildSubtract(s *state, args []operand) (ir.Op, error) {
	value, target, err := s.arithmetic(args)
	if err != nil {
		return nil, err
	}
	return ir.Subtract{Value: value, Target: target}, nil
}

func buildAdd(s *state, args []operand) (ir.Op, error) {
	value, target, err := s.arithmetic(args)
	if err != nil {
		return nil, err
	}
	return ir.Add{Value: value, Target: target}, nil
}

func buildMark(s *state, args []operand) (ir.Op, error) {
	name := args[0].name
	if kind, ok := s.kinds[name]; ok && kind == ir.Flag {
		return nil, &Error{Kind: DoubleLabel, Name: name}
	}
	idx, err := s.intern(name, ir.Flag)
	if err != nil {
		return nil, err
	}
	return ir.Mark{Flag: ir.FlagRef(idx)}, nil
}

func buildUnmark(s *state, args []operand) (ir.Op, error) {
	idx, err := s.lookup(args[0].name, ir.Flag)
	if err != nil {
		return nil, err
	}
	return ir.Unmark{Flag: ir.FlagRef(idx)}, nil
}

func buildPin(s *state, args []operand) (ir.Op, error) {
	idx, err := s.lookup(args[0].name, ir.Flag)
	if err != nil {
		return nil, err
	}
	return ir.Pin{Flag: ir.FlagRef(idx)}, nil
}

func buildGoto(*state, []operand) (ir.Op, error) {
	return ir.Goto{}, nil
}

func buildIf(cond ir.Cond) func(*state, []operand) (ir.Op, error) {
	return func(s *state, args []operand) (ir.Op, error) {
		a, err := s.aValue(args[0])
		if err != nil {
			return nil, err
		}
		b, err := s.aValue(args[1])
		if err != nil {
			return nil, err
		}
		return ir.If{A: a, B: b, Cond: cond}, nil
	}
}

func buildFi(*state, []operand) (ir.Op, error) {
	return ir.Fi{}, nil
}
