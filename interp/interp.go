// Package interp runs a parsed Gnalose program directly.
//
// The machine follows the C emitted by package codegen statement for
// statement: the same offset storage, the same liveness checks, the same
// abort messages, and int32 wraparound in place of C overflow.
package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/sergev/gnalose/ir"
)

// Abort messages, as printed by the generated program.
const (
	msgNothingToPin = "ABORTED\n:nothing to pin"
	msgUndefinedUse = "ABORTED\nTried to use already undefined variable/flag/array"
	msgLeakFormat   = "ABORTED\nMemory leaked: %s. Everything should be undefined at the end using \"define\""
)

// Abort is a runtime trap of the program. Its message has already been
// written to the output.
type Abort struct {
	Message string
}

func (a *Abort) Error() string { return a.Message }

// RuntimeError is a failure the generated C leaves undefined, such as an
// array index out of range.
type RuntimeError struct {
	Line int
	Text string
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d (from bottom) %q: %v", e.Line, e.Text, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ErrStepLimit is returned when a machine exceeds its MaxSteps.
var ErrStepLimit = errors.New("step limit exceeded")

// Input supplies the integers consumed by read operations.
type Input interface {
	ReadInt() (int32, error)
}

type scanner struct {
	r *bufio.Reader
}

// NewScanner reads whitespace separated decimal integers from r.
func NewScanner(r io.Reader) Input {
	return &scanner{r: bufio.NewReader(r)}
}

func (s *scanner) ReadInt() (int32, error) {
	var v int32
	if _, err := fmt.Fscan(s.r, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// Machine holds the state of one program run.
type Machine struct {
	// MaxSteps bounds the number of executed ops; zero means no limit.
	MaxSteps int

	rep    *ir.Representation
	in     Input
	out    io.Writer
	blocks map[int]int // Fi index -> closing If index
	marks  []int       // FlagRef -> index of its Mark

	global int32
	vars   []int32
	varOn  []bool
	arrays [][]int32
	arrOn  []bool
	flagOn []bool
	label  int // pinned FlagRef, -1 when none
	pc     int
}

// New prepares a machine for rep. It fails on unbalanced if/fi blocks.
func New(rep *ir.Representation, in Input, out io.Writer) (*Machine, error) {
	blocks, err := ir.MatchBlocks(rep.Ops)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		rep:    rep,
		in:     in,
		out:    out,
		blocks: blocks,
		marks:  make([]int, len(rep.Flags)),
		vars:   make([]int32, len(rep.Vars)),
		varOn:  make([]bool, len(rep.Vars)),
		arrays: make([][]int32, len(rep.Arrays)),
		arrOn:  make([]bool, len(rep.Arrays)),
		flagOn: make([]bool, len(rep.Flags)),
		label:  -1,
	}
	for i, arr := range rep.Arrays {
		m.arrays[i] = make([]int32, arr.Size)
	}
	for i := range m.flagOn {
		m.flagOn[i] = true
	}
	for i, line := range rep.Ops {
		if mark, ok := line.Op.(ir.Mark); ok {
			m.marks[mark.Flag] = i
		}
	}
	return m, nil
}

// Run executes rep reading from in and writing to out.
func Run(rep *ir.Representation, in Input, out io.Writer) error {
	m, err := New(rep, in, out)
	if err != nil {
		return err
	}
	return m.Run()
}

// Run executes the program to completion, then checks for leaks.
func (m *Machine) Run() error {
	steps := 0
	for m.pc < len(m.rep.Ops) {
		if m.MaxSteps > 0 && steps >= m.MaxSteps {
			return ErrStepLimit
		}
		steps++
		if err := m.step(); err != nil {
			return err
		}
	}
	return m.leakCheck()
}

func (m *Machine) step() error {
	idx := m.pc
	m.pc++
	switch op := m.rep.Ops[idx].Op.(type) {
	case ir.Define:
		m.vars[op.Var] = -m.global
		m.varOn[op.Var] = true
	case ir.DefineArray:
		for i := range m.arrays[op.Array] {
			m.arrays[op.Array][i] = -m.global
		}
		m.arrOn[op.Array] = true
	case ir.Undefine:
		m.varOn[op.Var] = false
	case ir.UndefineArray:
		m.arrOn[op.Array] = false
	case ir.Read:
		if err := m.assertAlive(op.Target); err != nil {
			return err
		}
		v, err := m.in.ReadInt()
		if err != nil {
			return m.runtimeError(idx, fmt.Errorf("read: %w", err))
		}
		cell, err := m.cell(idx, op.Target)
		if err != nil {
			return err
		}
		*cell = v - m.global
	case ir.Print:
		v, err := m.read(idx, op.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(m.out, "%d\n", v)
	case ir.PrintASCII:
		v, err := m.read(idx, op.Value)
		if err != nil {
			return err
		}
		m.out.Write([]byte{byte(v), '\n'})
	case ir.Add:
		return m.arithmetic(idx, op.Value, op.Target, 1)
	case ir.Subtract:
		return m.arithmetic(idx, op.Value, op.Target, -1)
	case ir.Fi:
		end := m.blocks[idx]
		cond := m.rep.Ops[end].Op.(ir.If)
		a, err := m.read(idx, cond.A)
		if err != nil {
			return err
		}
		b, err := m.read(idx, cond.B)
		if err != nil {
			return err
		}
		if !cond.Cond.Holds(a, b) {
			m.pc = end + 1
		}
	case ir.If, ir.Mark:
		// nothing to do at run time
	case ir.Unmark:
		m.flagOn[op.Flag] = false
	case ir.Pin:
		if !m.flagOn[op.Flag] {
			return m.abort(msgUndefinedUse)
		}
		m.label = int(op.Flag)
	case ir.Goto:
		if m.label < 0 {
			return m.abort(msgNothingToPin)
		}
		m.pc = m.marks[m.label]
	default:
		return m.runtimeError(idx, fmt.Errorf("unexpected op %T", op))
	}
	return nil
}

// arithmetic mirrors the generated add/sub block; sign is +1 for Add.
func (m *Machine) arithmetic(idx int, value ir.AValue, target ir.VValue, sign int32) error {
	temp, err := m.read(idx, value)
	if err != nil {
		return err
	}
	if err := m.assertAlive(target); err != nil {
		return err
	}
	addr, err := m.cell(idx, target)
	if err != nil {
		return err
	}
	m.global += sign * temp
	*addr -= sign * temp
	if v, ok := value.(ir.VValue); ok {
		// the index of a[i] is evaluated again, after global moved
		src, err := m.cell(idx, v)
		if err != nil {
			return err
		}
		*src -= sign * temp
	}
	return nil
}

// read checks liveness and returns the displayed value of v.
func (m *Machine) read(idx int, v ir.AValue) (int32, error) {
	if lit, ok := v.(ir.Literal); ok {
		return int32(lit), nil
	}
	if err := m.assertAlive(v); err != nil {
		return 0, err
	}
	cell, err := m.cell(idx, v.(ir.VValue))
	if err != nil {
		return 0, err
	}
	return *cell + m.global, nil
}

func (m *Machine) cell(idx int, v ir.VValue) (*int32, error) {
	switch v := v.(type) {
	case ir.RValue:
		return &m.vars[v], nil
	case ir.ArrayElement:
		var i int32
		switch index := v.Index.(type) {
		case ir.Literal:
			i = int32(index)
		case ir.RValue:
			i = m.vars[index] + m.global
		}
		arr := m.arrays[v.Array]
		if i < 0 || int(i) >= len(arr) {
			return nil, m.runtimeError(idx, fmt.Errorf("index %d out of range for array %s[%d]",
				i, m.rep.ArrayName(v.Array), len(arr)))
		}
		return &arr[i], nil
	default:
		return nil, m.runtimeError(idx, fmt.Errorf("unexpected operand %T", v))
	}
}

// assertAlive checks the same liveness bits the generated ASSERT_ALIVE does.
func (m *Machine) assertAlive(v ir.AValue) error {
	switch v := v.(type) {
	case ir.RValue:
		if !m.varOn[v] {
			return m.abort(msgUndefinedUse)
		}
	case ir.ArrayElement:
		if err := m.assertAlive(v.Index); err != nil {
			return err
		}
		if !m.arrOn[v.Array] {
			return m.abort(msgUndefinedUse)
		}
	}
	return nil
}

func (m *Machine) leakCheck() error {
	for i, name := range m.rep.Vars {
		if m.varOn[i] {
			return m.abort(fmt.Sprintf(msgLeakFormat, name))
		}
	}
	for i, arr := range m.rep.Arrays {
		if m.arrOn[i] {
			return m.abort(fmt.Sprintf(msgLeakFormat, arr.Name))
		}
	}
	for i, name := range m.rep.Flags {
		if m.flagOn[i] {
			return m.abort(fmt.Sprintf(msgLeakFormat, name))
		}
	}
	return nil
}

func (m *Machine) abort(msg string) error {
	io.WriteString(m.out, msg)
	return &Abort{Message: msg}
}

func (m *Machine) runtimeError(idx int, err error) error {
	line := m.rep.Ops[idx]
	return &RuntimeError{Line: line.Line, Text: line.Text, Err: err}
}
