package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sergev/gnalose/diag"
	"github.com/sergev/gnalose/gnalose"
	"github.com/sergev/gnalose/interp"
)

const usage = `usage: gnalose <input> [-o output] [-v] [-p] [-r]
       gnalose -i

  -o file  write C to file (default output.c)
  -v       report the time spent in each stage
  -p       print tokens, IR and C
  -r       run the program instead of writing C
  -i       interactive session
`

var (
	errMissingInput = errors.New("no file name provided")
	errHelp         = errors.New("help requested")
)

type config struct {
	input       string
	output      string
	verbose     bool
	dump        bool
	run         bool
	interactive bool
}

func parseArgs(args []string) (config, error) {
	cfg := config{output: gnalose.DefaultOutput}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-o":
			if i+1 >= len(args) {
				return cfg, errors.New("-o should be followed with output file name")
			}
			i++
			cfg.output = args[i]
		case "-v":
			cfg.verbose = true
		case "-p":
			cfg.dump = true
		case "-r":
			cfg.run = true
		case "-i":
			cfg.interactive = true
		case "-h", "-help", "--help":
			return cfg, errHelp
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return cfg, fmt.Errorf("unknown flag %s", arg)
			}
			if cfg.input != "" {
				return cfg, fmt.Errorf("unexpected argument %s", arg)
			}
			cfg.input = arg
		}
	}
	if cfg.input == "" && !cfg.interactive {
		return cfg, errMissingInput
	}
	return cfg, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command line invocation and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args)
	switch {
	case errors.Is(err, errHelp):
		fmt.Fprint(stdout, usage)
		return 0
	case errors.Is(err, errMissingInput):
		fmt.Fprintf(stderr, "gnalose: %v\n%s", err, usage)
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "gnalose: %v\n", err)
		return 1
	}

	if cfg.interactive {
		runREPL(stdin, stdout, stderr)
		return 0
	}

	if cfg.run {
		err := gnalose.RunFile(cfg.input, stdin, stdout)
		var abort *interp.Abort
		if errors.As(err, &abort) {
			fmt.Fprintln(stdout)
			return 1
		}
		if err != nil {
			fmt.Fprint(stderr, diag.Format(err))
			return 1
		}
		return 0
	}

	src, err := gnalose.ReadSource(cfg.input)
	if err != nil {
		fmt.Fprintf(stderr, "gnalose: %v\n", err)
		return 1
	}

	c, err := gnalose.Transpile(src, gnalose.Options{
		Verbose: cfg.verbose,
		Dump:    cfg.dump,
		Log:     stdout,
	})
	if err != nil {
		fmt.Fprint(stderr, diag.Format(err))
		return 1
	}
	if err := gnalose.WriteOutput(cfg.output, c); err != nil {
		fmt.Fprintf(stderr, "gnalose: %v\n", err)
		return 1
	}
	return 0
}
