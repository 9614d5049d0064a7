// Package parser turns lexed Gnalose lines into the IR.
package parser

import (
	"strings"

	"github.com/sergev/gnalose/diag"
	"github.com/sergev/gnalose/ir"
	"github.com/sergev/gnalose/lexer"
)

// Parse builds a Representation from lines in the order the lexer produced
// them, bottom line first. Empty and comment-only lines are skipped.
func Parse(lines []lexer.TokenLine) (*ir.Representation, error) {
	s := newState()
	for i, line := range lines {
		code := stripComments(line.Tokens)
		if len(code) == 0 {
			continue
		}
		op, err := s.parseLine(code)
		if err != nil {
			return nil, diag.New("parser", i+1, len(lines), line.Raw, err)
		}
		s.rep.Ops = append(s.rep.Ops, ir.OpLine{
			Op:   op,
			Line: i + 1,
			Text: line.Raw,
		})
	}
	s.rep.LinesAmount = len(lines)
	return s.rep, nil
}

func stripComments(toks []lexer.Token) []lexer.Token {
	code := make([]lexer.Token, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind != lexer.KindComment {
			code = append(code, tok)
		}
	}
	return code
}

type state struct {
	rep   *ir.Representation
	kinds map[string]ir.NameType
	index map[string]int
}

func newState() *state {
	return &state{
		rep:   &ir.Representation{},
		kinds: make(map[string]ir.NameType),
		index: make(map[string]int),
	}
}

func (s *state) parseLine(toks []lexer.Token) (ir.Op, error) {
	ops, ok := operands(toks)
	if !ok {
		return nil, errInvalidStructure
	}
	for i := range commands {
		cmd := &commands[i]
		if args, ok := cmd.match(ops); ok {
			return cmd.build(s, args)
		}
	}
	return nil, errInvalidStructure
}

// lookup resolves a name that must already exist with the given kind.
func (s *state) lookup(name string, want ir.NameType) (int, error) {
	have, ok := s.kinds[name]
	if !ok {
		return 0, notDefined(name, want)
	}
	if have != want {
		return 0, usedTwice(name, have, want)
	}
	return s.index[name], nil
}

// intern resolves a name, adding it to the table for want if it is new.
func (s *state) intern(name string, want ir.NameType) (int, error) {
	if have, ok := s.kinds[name]; ok {
		if have != want {
			return 0, usedTwice(name, have, want)
		}
		return s.index[name], nil
	}
	if !validName(name, want) {
		return 0, &Error{Kind: InvalidName, Name: name, Want: want}
	}

	var idx int
	switch want {
	case ir.Variable:
		idx = len(s.rep.Vars)
		s.rep.Vars = append(s.rep.Vars, name)
	case ir.Flag:
		idx = len(s.rep.Flags)
		s.rep.Flags = append(s.rep.Flags, name)
	case ir.Array:
		idx = len(s.rep.Arrays)
		s.rep.Arrays = append(s.rep.Arrays, ir.ArrayDecl{Name: name})
	}
	s.kinds[name] = want
	s.index[name] = idx
	return idx, nil
}

// internArray is intern for arrays; size only counts on first definition.
func (s *state) internArray(name string, size int) (ir.ArrayRef, error) {
	_, existed := s.kinds[name]
	idx, err := s.intern(name, ir.Array)
	if err != nil {
		return 0, err
	}
	if !existed {
		s.rep.Arrays[idx].Size = size
	}
	return ir.ArrayRef(idx), nil
}

func (s *state) aValue(op operand) (ir.AValue, error) {
	switch op.kind {
	case operandLiteral:
		return ir.Literal(op.value), nil
	case operandName:
		idx, err := s.lookup(op.name, ir.Variable)
		if err != nil {
			return nil, err
		}
		return ir.RValue(idx), nil
	case operandArray:
		return s.element(op)
	default:
		return nil, errInvalidStructure
	}
}

func (s *state) vValue(op operand) (ir.VValue, error) {
	switch op.kind {
	case operandName:
		idx, err := s.lookup(op.name, ir.Variable)
		if err != nil {
			return nil, err
		}
		return ir.RValue(idx), nil
	case operandArray:
		return s.element(op)
	default:
		return nil, errInvalidStructure
	}
}

func (s *state) element(op operand) (ir.ArrayElement, error) {
	arr, err := s.lookup(op.name, ir.Array)
	if err != nil {
		return ir.ArrayElement{}, err
	}
	var index ir.IValue
	if op.index.Kind == lexer.KindLiteral {
		index = ir.Literal(op.index.Value)
	} else {
		v, err := s.lookup(op.index.Text, ir.Variable)
		if err != nil {
			return ir.ArrayElement{}, err
		}
		index = ir.RValue(v)
	}
	return ir.ArrayElement{Array: ir.ArrayRef(arr), Index: index}, nil
}

func (s *state) arithmetic(args []operand) (ir.AValue, ir.VValue, error) {
	value, err := s.aValue(args[0])
	if err != nil {
		return nil, nil, err
	}
	target, err := s.vValue(args[1])
	if err != nil {
		return nil, nil, err
	}
	return value, target, nil
}

// validName reports whether name can be spelled in the generated C.
// Labels are emitted verbatim, so they must not collide with a keyword or
// an object-like macro of the included headers. Variables are emitted as
// "__" + name, which lands in the implementation's reserved namespace.
func validName(name string, kind ir.NameType) bool {
	if name == "" || isDigit(name[0]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '_' && !isDigit(c) && !isLower(c) && !isUpper(c) {
			return false
		}
	}
	switch kind {
	case ir.Flag:
		return !cKeywords[name] && !headerMacros[name] && !reservedIdentifier(name)
	case ir.Variable:
		return !reservedAfterPrefix(name)
	}
	return true
}

// reservedIdentifier reports names of the form __x or _X.
func reservedIdentifier(name string) bool {
	return strings.HasPrefix(name, "__") || (len(name) > 1 && name[0] == '_' && isUpper(name[1]))
}

// reservedAfterPrefix reports whether "__" + name is a spelling gcc or
// glibc already use.
func reservedAfterPrefix(name string) bool {
	switch {
	case gccNames[name]:
		return true
	case strings.HasSuffix(name, "__"), strings.HasSuffix(name, "_defined"):
		return true
	case len(name) > 1 && isMacroCase(name):
		return true
	}
	for _, prefix := range gccPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// isMacroCase reports names made of capitals, digits and underscores only.
func isMacroCase(name string) bool {
	upper := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case isUpper(c):
			upper = true
		case isLower(c):
			return false
		}
	}
	return upper
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true, "bool": true,
	"true": true, "false": true, "asm": true, "typeof": true, "typeof_unqual": true,
	"alignas": true, "alignof": true, "static_assert": true, "thread_local": true,
	"constexpr": true, "nullptr": true,
}

// headerMacros are the object-like macros of stdio.h, stdlib.h and
// stdbool.h under gcc's default gnu mode, plus the ones of the preamble.
var headerMacros = map[string]bool{
	"NULL": true, "EOF": true, "BUFSIZ": true, "FILENAME_MAX": true, "FOPEN_MAX": true,
	"TMP_MAX": true, "L_tmpnam": true, "L_ctermid": true, "L_cuserid": true, "P_tmpdir": true,
	"SEEK_SET": true, "SEEK_CUR": true, "SEEK_END": true, "SEEK_DATA": true, "SEEK_HOLE": true,
	"EXIT_SUCCESS": true, "EXIT_FAILURE": true, "RAND_MAX": true, "MB_CUR_MAX": true,
	"WNOHANG": true, "WUNTRACED": true, "WSTOPPED": true, "WEXITED": true,
	"WCONTINUED": true, "WNOWAIT": true,
	"LITTLE_ENDIAN": true, "BIG_ENDIAN": true, "PDP_ENDIAN": true, "BYTE_ORDER": true,
	"FD_SETSIZE": true, "NFDBITS": true,
	"linux": true, "unix": true, "i386": true,
	"GOTO": true, "LEAK_CHECK": true, "ASSERT_ALIVE": true,
}

// gccNames are gcc keywords, predefined macros and glibc macros that
// follow a "__" prefix and are not covered by a rule.
var gccNames = map[string]bool{
	"asm": true, "attribute": true, "auto_type": true, "alignof": true, "bf16": true,
	"complex": true, "const": true, "extension": true, "float80": true, "float128": true,
	"fp16": true, "ibm128": true, "imag": true, "inline": true, "int128": true,
	"label": true, "real": true, "restrict": true, "seg_fs": true, "seg_gs": true,
	"signed": true, "thread": true, "typeof": true, "typeof_unqual": true, "volatile": true,
	"linux": true, "unix": true, "i386": true, "i486": true, "i586": true, "i686": true,
	"amd64": true, "x86_64": true, "k8": true,
	"always_inline": true, "flexarr": true, "long_double_t": true, "ptr_t": true,
	"returns_nonnull": true, "wur": true,
}

var gccPrefixes = []string{
	"attr_", "attribute_", "builtin_", "extern_", "fortif", "glibc_", "has_", "restrict",
}
