// Package gnalose wires the lexer, parser and code generator into the
// source-to-C pipeline used by the command line tool.
package gnalose

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sergev/gnalose/codegen"
	"github.com/sergev/gnalose/interp"
	"github.com/sergev/gnalose/ir"
	"github.com/sergev/gnalose/lexer"
	"github.com/sergev/gnalose/parser"
)

// DefaultOutput is the file written when no -o is given.
const DefaultOutput = "output.c"

// Options controls progress reporting of a pipeline run.
type Options struct {
	Verbose bool      // report the time spent in each stage
	Dump    bool      // print the output of each stage
	Log     io.Writer // destination of reports; nil discards them
}

func (o Options) logf(format string, args ...any) {
	if o.Log == nil {
		return
	}
	fmt.Fprintf(o.Log, format, args...)
}

// Result holds every intermediate product of a build.
type Result struct {
	Tokens []lexer.TokenLine
	Rep    *ir.Representation
	C      string
}

// Build runs all stages over src and keeps their outputs.
func Build(src string, opts Options) (*Result, error) {
	res := &Result{}

	start := time.Now()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	res.Tokens = tokens
	if opts.Verbose {
		opts.logf("TOKENIZATION DONE in %g s\n", time.Since(start).Seconds())
	}
	if opts.Dump {
		opts.logf("Tokenization Output:\n%s", lexer.Format(tokens))
	}

	start = time.Now()
	rep, err := parser.Parse(tokens)
	if err != nil {
		return nil, err
	}
	res.Rep = rep
	if opts.Verbose {
		opts.logf("PARSING DONE in %g s\n", time.Since(start).Seconds())
	}
	if opts.Dump {
		opts.logf("Parsing Output:\n%s", ir.Format(rep))
	}

	start = time.Now()
	c, err := codegen.Compile(rep)
	if err != nil {
		return nil, err
	}
	res.C = c
	if opts.Verbose {
		opts.logf("COMPILATION DONE in %g s\n", time.Since(start).Seconds())
	}
	if opts.Dump {
		opts.logf("Compilation Output:\n%s\n", c)
	}
	return res, nil
}

// Transpile translates Gnalose source into C.
func Transpile(src string, opts Options) (string, error) {
	res, err := Build(src, opts)
	if err != nil {
		return "", err
	}
	return res.C, nil
}

// RunFile parses the program at path and interprets it, reading integers
// from in.
func RunFile(path string, in io.Reader, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	rep, err := parser.ParseReader(f)
	if err != nil {
		return err
	}
	return interp.Run(rep, interp.NewScanner(in), out)
}

// ReadSource loads a program from path.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteOutput stores generated C at path, replacing any previous file.
func WriteOutput(path, c string) error {
	if err := os.WriteFile(path, []byte(c), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
