package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/sergev/gnalose/diag"
	"github.com/sergev/gnalose/gnalose"
	"github.com/sergev/gnalose/interp"
	"github.com/sergev/gnalose/ir"
	"github.com/sergev/gnalose/lexer"
)

const replHelp = `Lines are added at the bottom of the program, so the newest line runs first.
  :c            print the generated C
  :ir           print the parsed representation
  :tokens       print the token stream
  :run          run the program, integers are read at the ? prompt
  :list         show the program
  :find <name>  show what a name is bound to
  :undo         drop the last line
  :reset        drop every line
  :write <path> write the generated C to path
  :help         show this text
  :quit         leave
`

// session is the state of one interactive program buffer.
type session struct {
	lines  []string // top to bottom
	out    io.Writer
	errOut io.Writer
	prompt func(string) (string, error)
}

func (s *session) source() string {
	return strings.Join(s.lines, "\n")
}

// serve reads lines until end of input or :quit.
func (s *session) serve() {
	for {
		line, err := s.prompt("gnalose> ")
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(s.out)
				continue
			case errors.Is(err, io.EOF):
				return
			default:
				fmt.Fprintf(s.errOut, "read error: %v\n", err)
				return
			}
		}
		if !s.handle(line) {
			return
		}
	}
}

// handle processes one input line and reports whether to keep going.
func (s *session) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		if _, err := lexer.LexLine(line); err != nil {
			fmt.Fprintf(s.errOut, "error: [lexer] %v\n", err)
			return true
		}
		s.lines = append(s.lines, line)
		return true
	}

	cmd, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":q", ":quit":
		return false
	case ":h", ":help":
		fmt.Fprint(s.out, replHelp)
	case ":c":
		if res, ok := s.build(); ok {
			fmt.Fprintln(s.out, res.C)
		}
	case ":ir":
		if res, ok := s.build(); ok {
			fmt.Fprint(s.out, ir.Format(res.Rep))
		}
	case ":tokens":
		tokens, err := lexer.Tokenize(s.source())
		if err != nil {
			fmt.Fprint(s.errOut, diag.Format(err))
			break
		}
		fmt.Fprint(s.out, lexer.Format(tokens))
	case ":run":
		s.run()
	case ":find":
		s.find(arg)
	case ":list":
		for i, l := range s.lines {
			fmt.Fprintf(s.out, "%3d | %s\n", i+1, l)
		}
	case ":undo":
		if len(s.lines) > 0 {
			s.lines = s.lines[:len(s.lines)-1]
		}
	case ":reset":
		s.lines = nil
	case ":write":
		if arg == "" {
			fmt.Fprintln(s.errOut, ":write needs a path")
			break
		}
		res, ok := s.build()
		if !ok {
			break
		}
		if err := gnalose.WriteOutput(arg, res.C); err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(s.errOut, "unknown command %s, try :help\n", cmd)
	}
	return true
}

func (s *session) build() (*gnalose.Result, bool) {
	res, err := gnalose.Build(s.source(), gnalose.Options{})
	if err != nil {
		fmt.Fprint(s.errOut, diag.Format(err))
		return nil, false
	}
	return res, true
}

// find reports the kind and handle of name in the current program.
func (s *session) find(name string) {
	if name == "" {
		fmt.Fprintln(s.errOut, ":find needs a name")
		return
	}
	res, ok := s.build()
	if !ok {
		return
	}
	rep := res.Rep
	if v, ok := rep.Variable(name); ok {
		fmt.Fprintf(s.out, "%s: %v %v\n", name, ir.Variable, v)
		return
	}
	if a, ok := rep.Array(name); ok {
		fmt.Fprintf(s.out, "%s: %v %v size %d\n", name, ir.Array, a, rep.ArraySize(a))
		return
	}
	if f, ok := rep.Flag(name); ok {
		fmt.Fprintf(s.out, "%s: %v %v\n", name, ir.Flag, f)
		return
	}
	fmt.Fprintf(s.errOut, "%s is not defined\n", name)
}

func (s *session) run() {
	res, ok := s.build()
	if !ok {
		return
	}
	err := interp.Run(res.Rep, promptInput(s.prompt), s.out)
	var abort *interp.Abort
	switch {
	case errors.As(err, &abort):
		fmt.Fprintln(s.out)
	case err != nil:
		fmt.Fprint(s.errOut, diag.Format(err))
	}
}

// promptInput reads one integer per prompted line.
type promptInput func(string) (string, error)

func (p promptInput) ReadInt() (int32, error) {
	line, err := p("? ")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func runREPL(stdin io.Reader, stdout, stderr io.Writer) {
	s := &session{out: stdout, errOut: stderr}
	if f, ok := stdin.(*os.File); ok && isInteractive(f) {
		runInteractiveREPL(s)
		return
	}
	reader := bufio.NewReader(stdin)
	s.prompt = func(string) (string, error) {
		return readLine(reader)
	}
	s.serve()
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runInteractiveREPL(s *session) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if path := historyPath(os.Args[0]); path != "" {
		loadHistory(state, path)
		defer saveHistory(state, path)
	}

	s.prompt = func(p string) (string, error) {
		line, err := state.Prompt(p)
		if err != nil {
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		return line, nil
	}
	fmt.Fprintln(s.out, "gnalose interactive session, :help for commands")
	s.serve()
}

// historyPath names the history file after the running binary, so that
// "gnalose" keeps ~/.gnalose_history.
func historyPath(prog string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	name := strings.TrimSuffix(filepath.Base(prog), filepath.Ext(prog))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "gnalose"
	}
	return filepath.Join(home, "."+name+"_history")
}

func loadHistory(state *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	state.ReadHistory(f)
}

func saveHistory(state *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	state.WriteHistory(f)
}

func isInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
