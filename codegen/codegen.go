// Package codegen emits a C translation unit for a parsed Gnalose program.
//
// The generated program relies on the GNU computed goto extension
// (&&label, goto *p).
//
// Storage model: every cell holds its value minus a process-wide offset
// named global, and is read through get(cell) = cell + global. An add or
// sub moves global, which shifts every displayed value at once, and then
// compensates the target and the source operand so that only the other
// cells appear to change.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergev/gnalose/diag"
	"github.com/sergev/gnalose/ir"
)

const includes = `#include <stdio.h>
#include <stdbool.h>
#include <stdlib.h>
`

const preamble = `int global=0;
void* label=NULL;
int err(char* text)
{
    printf("ABORTED\n:%s",text);
    return 1;
}
#define GOTO if(label!=NULL) goto *label; else return err("nothing to pin")
#define LEAK_CHECK(on_name,normal) if(on_name) {printf("ABORTED\nMemory leaked: %s. Everything should be undefined at the end using \"define\"",normal);return 1;}
#define ASSERT_ALIVE(bool_name) if(!(bool_name)) {printf("ABORTED\nTried to use already undefined variable/flag/array");return 1;}
int get(int val)
{
    return val + global;
}
`

// EmptyProgram is the output for a program without operations.
const EmptyProgram = "int main(){}"

// Compile translates rep into C source.
func Compile(rep *ir.Representation) (string, error) {
	if len(rep.Ops) == 0 {
		return EmptyProgram, nil
	}
	g := &generator{rep: rep}

	var body strings.Builder
	end, err := g.block(&body, 0)
	if err != nil {
		return "", err
	}
	if end >= 0 {
		return "", g.errorAt(end, ir.ErrUnmatchedIf)
	}

	var b strings.Builder
	b.WriteString(includes)
	b.WriteString(preamble)
	b.WriteString("int main(){\n")
	g.declarations(&b)
	b.WriteString(body.String())
	g.leakChecks(&b)
	b.WriteString("}\n")
	return b.String(), nil
}

type generator struct {
	rep *ir.Representation
}

func (g *generator) errorAt(idx int, err error) error {
	line := g.rep.Ops[idx]
	return diag.New("codegen", line.Line, g.rep.LinesAmount, line.Text, err)
}

// block emits ops from start on. It stops at an If, which closes the block
// opened by the caller's Fi, and returns its index; -1 means the op list
// ended first.
func (g *generator) block(b *strings.Builder, start int) (int, error) {
	ops := g.rep.Ops
	for i := start; i < len(ops); i++ {
		switch op := ops[i].Op.(type) {
		case ir.If:
			return i, nil
		case ir.Fi:
			var inner strings.Builder
			end, err := g.block(&inner, i+1)
			if err != nil {
				return 0, err
			}
			if end < 0 {
				return 0, g.errorAt(i, ir.ErrUnmatchedFi)
			}
			cond := ops[end].Op.(ir.If)
			b.WriteString(g.assertAlive(cond.A))
			b.WriteString(g.assertAlive(cond.B))
			fmt.Fprintf(b, "if(%s%s%s){\n", g.get(cond.A), cond.Cond.Symbol(), g.get(cond.B))
			b.WriteString(inner.String())
			b.WriteString("}\n")
			i = end
		default:
			fmt.Fprintf(b, "%s//%s\n", g.statement(op), annotation(ops[i].Text))
		}
	}
	return -1, nil
}

func (g *generator) statement(op ir.Op) string {
	switch op := op.(type) {
	case ir.Define:
		cell := g.cell(op.Var)
		return fmt.Sprintf("%s=-global;%s=true;", cell, liveness(cell))
	case ir.DefineArray:
		cell := arrayCell(g.rep.ArrayName(op.Array))
		return fmt.Sprintf("for(int i=0;i<%d;i++){%s[i]=-global;}%s=true;",
			g.rep.ArraySize(op.Array), cell, liveness(cell))
	case ir.Undefine:
		return fmt.Sprintf("%s=false;", liveness(g.cell(op.Var)))
	case ir.UndefineArray:
		return fmt.Sprintf("%s=false;", liveness(arrayCell(g.rep.ArrayName(op.Array))))
	case ir.Read:
		cell := g.cell(op.Target)
		return fmt.Sprintf("%sscanf(\"%%d\",&%s);%s-=global;", g.assertAlive(op.Target), cell, cell)
	case ir.Print:
		return fmt.Sprintf("%sprintf(\"%%d\\n\",%s);", g.assertAlive(op.Value), g.get(op.Value))
	case ir.PrintASCII:
		return fmt.Sprintf("%sprintf(\"%%c\\n\",(char)%s);", g.assertAlive(op.Value), g.get(op.Value))
	case ir.Add:
		return g.arithmetic(op.Value, op.Target, "+", "-")
	case ir.Subtract:
		return g.arithmetic(op.Value, op.Target, "-", "+")
	case ir.Mark:
		return fmt.Sprintf("%s:;", g.rep.FlagName(op.Flag))
	case ir.Unmark:
		return fmt.Sprintf("%s=false;", g.flagLiveness(op.Flag))
	case ir.Pin:
		return fmt.Sprintf("ASSERT_ALIVE(%s);label=&&%s;", g.flagLiveness(op.Flag), g.rep.FlagName(op.Flag))
	case ir.Goto:
		return "GOTO;"
	default:
		panic(fmt.Sprintf("codegen: unexpected op %T", op))
	}
}

// arithmetic emits an add or sub. The value and the target address are
// taken before global moves; the source cell is compensated afterwards
// through a fresh index evaluation, so a[i] sees the shifted i.
func (g *generator) arithmetic(value ir.AValue, target ir.VValue, shift, compensate string) string {
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(g.assertAlive(value))
	b.WriteString(g.assertAlive(target))
	fmt.Fprintf(&b, "int temp=%s;", g.get(value))
	fmt.Fprintf(&b, "int* addr=&%s;", g.cell(target))
	fmt.Fprintf(&b, "global%s=temp;", shift)
	fmt.Fprintf(&b, "(*addr)%s=temp;", compensate)
	if v, ok := value.(ir.VValue); ok {
		fmt.Fprintf(&b, "%s%s=temp;", g.cell(v), compensate)
	}
	b.WriteString("}")
	return b.String()
}

func (g *generator) declarations(b *strings.Builder) {
	for _, name := range g.rep.Vars {
		cell := varCell(name)
		fmt.Fprintf(b, "int %s=0; bool %s=false;\n", cell, liveness(cell))
	}
	for _, arr := range g.rep.Arrays {
		cell := arrayCell(arr.Name)
		fmt.Fprintf(b, "int %s[%d]={}; bool %s=false;\n", cell, arr.Size, liveness(cell))
	}
	for _, name := range g.rep.Flags {
		fmt.Fprintf(b, "bool %s=true;\n", liveness(flagCell(name)))
	}
}

func (g *generator) leakChecks(b *strings.Builder) {
	for _, name := range g.rep.Vars {
		fmt.Fprintf(b, "LEAK_CHECK(%s,\"%s\");", liveness(varCell(name)), name)
	}
	for _, arr := range g.rep.Arrays {
		fmt.Fprintf(b, "LEAK_CHECK(%s,\"%s\");", liveness(arrayCell(arr.Name)), arr.Name)
	}
	for _, name := range g.rep.Flags {
		fmt.Fprintf(b, "LEAK_CHECK(%s,\"%s\");", liveness(flagCell(name)), name)
	}
	b.WriteString("\n")
}

// cell returns the C lvalue of a storage operand.
func (g *generator) cell(v ir.VValue) string {
	switch v := v.(type) {
	case ir.RValue:
		return varCell(g.rep.VarName(v))
	case ir.ArrayElement:
		return fmt.Sprintf("%s[%s]", arrayCell(g.rep.ArrayName(v.Array)), g.get(v.Index))
	default:
		panic(fmt.Sprintf("codegen: unexpected storage operand %T", v))
	}
}

// get returns the C expression for the displayed value of an operand.
func (g *generator) get(v ir.AValue) string {
	switch v := v.(type) {
	case ir.Literal:
		if v < 0 {
			return "(" + strconv.Itoa(int(v)) + ")"
		}
		return strconv.Itoa(int(v))
	case ir.VValue:
		return fmt.Sprintf("get(%s)", g.cell(v))
	default:
		panic(fmt.Sprintf("codegen: unexpected operand %T", v))
	}
}

// assertAlive returns the liveness checks needed before reading v.
func (g *generator) assertAlive(v ir.AValue) string {
	switch v := v.(type) {
	case ir.RValue:
		return fmt.Sprintf("ASSERT_ALIVE(%s);", liveness(g.cell(v)))
	case ir.ArrayElement:
		return g.assertAlive(v.Index) +
			fmt.Sprintf("ASSERT_ALIVE(%s);", liveness(arrayCell(g.rep.ArrayName(v.Array))))
	default:
		return ""
	}
}

func (g *generator) flagLiveness(f ir.FlagRef) string {
	return liveness(flagCell(g.rep.FlagName(f)))
}

func varCell(name string) string   { return "__" + name }
func arrayCell(name string) string { return "_a_" + name }
func flagCell(name string) string  { return "_f_" + name }
func liveness(cell string) string  { return "_isOn" + cell }

// annotation makes a source line safe for a trailing // comment.
func annotation(text string) string {
	text = strings.TrimSpace(text)
	return strings.TrimRight(text, "\\ \t")
}
