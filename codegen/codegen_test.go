package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/sergev/gnalose/diag"
	"github.com/sergev/gnalose/ir"
	"github.com/sergev/gnalose/parser"
)

func compileSource(t *testing.T, src string) string {
	t.Helper()
	rep, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	out, err := Compile(rep)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	return out
}

func expectContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, frag := range fragments {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q:\n%s", frag, out)
		}
	}
}

func expectOrder(t *testing.T, out string, fragments ...string) {
	t.Helper()
	pos := 0
	for _, frag := range fragments {
		idx := strings.Index(out[pos:], frag)
		if idx < 0 {
			t.Fatalf("fragment %q missing or out of order:\n%s", frag, out)
		}
		pos += idx + len(frag)
	}
}

func TestCompileEmptyProgram(t *testing.T) {
	for _, src := range []string{"", "\n\n", "just a comment/\nanother/"} {
		if out := compileSource(t, src); out != EmptyProgram {
			t.Errorf("source %q: expected %q, got %q", src, EmptyProgram, out)
		}
	}
}

func TestCompileEchoProgram(t *testing.T) {
	out := compileSource(t, "define x\nread to x\nprint x\nundefine x\n")
	expectOrder(t, out,
		"#include <stdio.h>",
		"#include <stdbool.h>",
		"#include <stdlib.h>",
		"int global=0;",
		"void* label=NULL;",
		"int get(int val)",
		"int main(){\n",
		"int __x=0; bool _isOn__x=false;\n",
		"__x=-global;_isOn__x=true;//undefine x\n",
		"ASSERT_ALIVE(_isOn__x);scanf(\"%d\",&__x);__x-=global;//print x\n",
		"ASSERT_ALIVE(_isOn__x);printf(\"%d\\n\",get(__x));//read to x\n",
		"_isOn__x=false;//define x\n",
		"LEAK_CHECK(_isOn__x,\"x\");",
	)
	if !strings.HasSuffix(out, "}\n") {
		t.Fatalf("expected main to be closed, got %q", out[len(out)-10:])
	}
}

func TestCompileArithmetic(t *testing.T) {
	out := compileSource(t, "define y\ndefine x\nadd x to y\nsub 5 from x\nundefine y\nundefine x")
	expectContains(t, out,
		"{ASSERT_ALIVE(_isOn__x);int temp=5;int* addr=&__x;global+=temp;(*addr)-=temp;}//sub 5 from x",
		"{ASSERT_ALIVE(_isOn__x);ASSERT_ALIVE(_isOn__y);int temp=get(__x);int* addr=&__y;global-=temp;(*addr)+=temp;__x+=temp;}//add x to y",
	)
}

func TestCompileArrays(t *testing.T) {
	out := compileSource(t, "define single arr\ndefine i\nsub arr[i] from arr[2]\nread as number to arr[0]\nundefine i\nundefine single arr[3]")
	expectContains(t, out,
		"int _a_arr[3]={}; bool _isOn_a_arr=false;\n",
		"for(int i=0;i<3;i++){_a_arr[i]=-global;}_isOn_a_arr=true;//undefine single arr[3]",
		"ASSERT_ALIVE(_isOn_a_arr);printf(\"%c\\n\",(char)get(_a_arr[0]));",
		"{ASSERT_ALIVE(_isOn__i);ASSERT_ALIVE(_isOn_a_arr);ASSERT_ALIVE(_isOn_a_arr);int temp=get(_a_arr[get(__i)]);int* addr=&_a_arr[2];global+=temp;(*addr)-=temp;_a_arr[get(__i)]-=temp;}",
		"_isOn_a_arr=false;//define single arr",
		"LEAK_CHECK(_isOn_a_arr,\"arr\");",
	)
}

func TestCompileLabels(t *testing.T) {
	out := compileSource(t, "mark L\nhalt\nforget L\nunmark L")
	expectOrder(t, out,
		"bool _isOn_f_L=true;\n",
		"L:;//unmark L\n",
		"ASSERT_ALIVE(_isOn_f_L);label=&&L;//forget L\n",
		"GOTO;//halt\n",
		"_isOn_f_L=false;//mark L\n",
		"LEAK_CHECK(_isOn_f_L,\"L\");",
	)
}

func TestCompileConditionalBlock(t *testing.T) {
	src := `define b
define a
if a greater than b
read to a
fi
sub 2 from b
sub 3 from a
undefine b
undefine a`
	out := compileSource(t, src)
	expectOrder(t, out,
		"ASSERT_ALIVE(_isOn__a);ASSERT_ALIVE(_isOn__b);if(get(__a)<=get(__b)){\n",
		"printf(\"%d\\n\",get(__a));//read to a\n",
		"}\n",
		"_isOn__a=false;//define a\n",
	)
	if strings.Contains(out, "//fi") || strings.Contains(out, "//if") {
		t.Fatalf("block delimiters must not be emitted as statements:\n%s", out)
	}
}

func TestCompileNestedBlocksBalanced(t *testing.T) {
	src := `define x
if x equal to 1
if x lower than 5
read to x
fi
read to x
fi
undefine x`
	out := compileSource(t, src)
	if strings.Count(out, "{") != strings.Count(out, "}") {
		t.Fatalf("unbalanced braces:\n%s", out)
	}
	expectOrder(t, out,
		"if(get(__x)!=1){\n",
		"if(get(__x)>=5){\n",
		"}\n",
		"}\n",
		"_isOn__x=false;",
	)
}

func TestCompileUnmatchedBlocks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
		line int
	}{
		{"if without fi", "if 1 equal to 1\nhalt", ir.ErrUnmatchedIf, 2},
		{"fi without if", "halt\nfi", ir.ErrUnmatchedFi, 1},
		{"inner fi without if", "if 1 equal to 1\nfi\nfi", ir.ErrUnmatchedFi, 1},
	}
	for _, tt := range tests {
		rep, err := parser.ParseString(tt.src)
		if err != nil {
			t.Fatalf("%s: ParseString returned error: %v", tt.name, err)
		}
		_, err = Compile(rep)
		if !errors.Is(err, tt.err) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.err, err)
		}
		lerr, ok := diag.Line(err)
		if !ok || lerr.Line != tt.line || lerr.Stage != "codegen" {
			t.Fatalf("%s: unexpected line info %+v", tt.name, lerr)
		}
	}
}

func TestCompileDeclaresEveryName(t *testing.T) {
	src := "define x\ndefine single arr\nmark L\nforget L\nunmark L\nundefine single arr[2]\nundefine x"
	rep, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	out, err := Compile(rep)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	for _, v := range rep.Vars {
		expectContains(t, out, "int __"+v+"=0;", "LEAK_CHECK(_isOn__"+v+",")
	}
	for _, a := range rep.Arrays {
		expectContains(t, out, "int _a_"+a.Name+"[", "LEAK_CHECK(_isOn_a_"+a.Name+",")
	}
	for _, f := range rep.Flags {
		expectContains(t, out, "bool _isOn_f_"+f+"=true;", "LEAK_CHECK(_isOn_f_"+f+",")
	}
}

func TestAnnotationCannotContinueComment(t *testing.T) {
	if got := annotation("  halt \\  "); got != "halt" {
		t.Fatalf("annotation => %q", got)
	}
}
