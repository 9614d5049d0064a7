package gnalose

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergev/gnalose/interp"
	"github.com/sergev/gnalose/parser"
)

// compileC builds c with gcc and returns the path of the executable.
func compileC(t *testing.T, gcc, c string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	bin := filepath.Join(dir, "prog")
	if err := os.WriteFile(src, []byte(c), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out, err := exec.Command(gcc, "-o", bin, src).CombinedOutput()
	if err != nil {
		t.Fatalf("gcc failed: %v\n%s\n%s", err, out, c)
	}
	return bin
}

// runBinary runs bin with input and returns its stdout and exit code.
func runBinary(t *testing.T, bin, input string) (string, int) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := exec.Command(bin)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), exitErr.ExitCode()
	default:
		t.Fatalf("running %s: %v", bin, err)
		return "", 0
	}
}

// interpret runs src in the interpreter and returns its output and the exit
// code the generated program would have.
func interpret(t *testing.T, src, input string) (string, int) {
	t.Helper()
	rep, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	var out strings.Builder
	err = interp.Run(rep, interp.NewScanner(strings.NewReader(input)), &out)
	var abort *interp.Abort
	switch {
	case err == nil:
		return out.String(), 0
	case errors.As(err, &abort):
		return out.String(), 1
	default:
		t.Fatalf("interp.Run returned error: %v", err)
		return "", 0
	}
}

func TestGeneratedCMatchesInterpreter(t *testing.T) {
	gcc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not found")
	}
	tests := []struct {
		name   string
		src    string
		input  string
		output string
		code   int
	}{
		{
			name:   "echo",
			src:    "define x\nread to x\nprint x\nundefine x\n",
			input:  "42\n",
			output: "42\n",
		},
		{
			name: "offset arithmetic",
			src: "define z\ndefine y\ndefine x\nread to x\nread to y\nread to z\n" +
				"add 3 to x\nsub x from y\nprint x\nundefine z\nundefine y\nundefine x\n",
			input:  "10\n",
			output: "7\n-3\n10\n",
		},
		{
			name:   "ascii",
			src:    "read as number to 105\nread as number to 72\n",
			output: "H\ni\n",
		},
		{
			name: "conditional",
			src: "define b\ndefine a\nif a greater than b\nread to a\nfi\n" +
				"sub 2 from b\nsub 3 from a\nundefine b\nundefine a\n",
			output: "2\n",
		},
		{
			name: "goto loop",
			src: "mark L\ndefine d\ndefine i\nif i lower or equal than 0\nhalt\nforget L\nfi\n" +
				"add 1 to d\nread to i\nunmark L\nprint i\nundefine d\nundefine i\n",
			input:  "3\n",
			output: "3\n2\n1\n",
		},
		{
			name: "array index evaluated after the shift",
			src: "define single arr\ndefine i\ndefine x\nread to i\nread to arr[2]\nread to arr[1]\n" +
				"read to arr[0]\nsub arr[i] from x\nprint arr[0]\nundefine x\nundefine i\nundefine single arr[3]\n",
			input:  "1\n",
			output: "2\n0\n1\n1\n",
		},
		{
			name:   "leak",
			src:    "undefine x\n",
			output: "ABORTED\nMemory leaked: x. Everything should be undefined at the end using \"define\"",
			code:   1,
		},
		{
			name:   "nothing to pin",
			src:    "halt\n",
			output: "ABORTED\n:nothing to pin",
			code:   1,
		},
		{
			name: "label ends a block",
			src:  "mark L\nif 1 equal to 1\nunmark L\nfi\n",
		},
		{
			name: "names next to reserved spellings",
			src: "mark get\ndefine single BUFSIZ\ndefine N\ndefine Max_value\nundefine Max_value\n" +
				"undefine N\nundefine single BUFSIZ[2]\nunmark get\n",
		},
		{
			name:   "empty program",
			src:    "",
			output: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Transpile(tt.src, Options{})
			if err != nil {
				t.Fatalf("Transpile returned error: %v", err)
			}
			bin := compileC(t, gcc, c)
			got, code := runBinary(t, bin, tt.input)
			if got != tt.output || code != tt.code {
				t.Fatalf("compiled program => %q (exit %d), want %q (exit %d)", got, code, tt.output, tt.code)
			}
			want, wantCode := interpret(t, tt.src, tt.input)
			if got != want || code != wantCode {
				t.Fatalf("interpreter => %q (exit %d), compiled program => %q (exit %d)", want, wantCode, got, code)
			}
		})
	}
}
