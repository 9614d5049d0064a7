package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ArrayDecl is an entry of the array table. Size is fixed by the first
// definition.
type ArrayDecl struct {
	Name string
	Size int
}

// Representation is a parsed program: three name tables and the op list.
type Representation struct {
	Vars        []string
	Arrays      []ArrayDecl
	Flags       []string
	Ops         []OpLine
	LinesAmount int // physical lines in the source
}

// Variable looks a variable up by name.
func (r *Representation) Variable(name string) (RValue, bool) {
	for i, v := range r.Vars {
		if v == name {
			return RValue(i), true
		}
	}
	return 0, false
}

// Array looks an array up by name.
func (r *Representation) Array(name string) (ArrayRef, bool) {
	for i, a := range r.Arrays {
		if a.Name == name {
			return ArrayRef(i), true
		}
	}
	return 0, false
}

// Flag looks a label up by name.
func (r *Representation) Flag(name string) (FlagRef, bool) {
	for i, f := range r.Flags {
		if f == name {
			return FlagRef(i), true
		}
	}
	return 0, false
}

func (r *Representation) VarName(v RValue) string     { return r.Vars[v] }
func (r *Representation) ArrayName(a ArrayRef) string { return r.Arrays[a].Name }
func (r *Representation) ArraySize(a ArrayRef) int    { return r.Arrays[a].Size }
func (r *Representation) FlagName(f FlagRef) string   { return r.Flags[f] }

var (
	ErrUnmatchedIf = errors.New("if has no matching fi")
	ErrUnmatchedFi = errors.New("fi has no matching if")
)

// BlockError locates a block structure error in an op list.
type BlockError struct {
	Index int
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("op %d: %v", e.Index, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// MatchBlocks pairs every Fi with the If that closes its block and returns
// the If index keyed by the Fi index.
func MatchBlocks(ops []OpLine) (map[int]int, error) {
	pairs := make(map[int]int)
	var open []int
	for i, line := range ops {
		switch line.Op.(type) {
		case Fi:
			open = append(open, i)
		case If:
			if len(open) == 0 {
				return nil, &BlockError{Index: i, Err: ErrUnmatchedIf}
			}
			pairs[open[len(open)-1]] = i
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return nil, &BlockError{Index: open[len(open)-1], Err: ErrUnmatchedFi}
	}
	return pairs, nil
}

// Format dumps the name tables followed by the op list.
func Format(r *Representation) string {
	var b strings.Builder
	for i, name := range r.Vars {
		fmt.Fprintf(&b, "{%s} var with %v\n", name, RValue(i))
	}
	for i, arr := range r.Arrays {
		fmt.Fprintf(&b, "{%s[%d]} array with %v\n", arr.Name, arr.Size, ArrayRef(i))
	}
	for i, name := range r.Flags {
		fmt.Fprintf(&b, "{%s} flag with %v\n", name, FlagRef(i))
	}
	b.WriteString("\n")
	for _, line := range r.Ops {
		fmt.Fprintf(&b, "[%d]%q -> %v\n", line.Line, line.Text, line.Op)
	}
	return b.String()
}
