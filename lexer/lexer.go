// Package lexer splits Gnalose source into tokens.
//
// Gnalose is read from the last line up, so Tokenize returns lines in
// reverse physical order and nothing downstream has to care.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergev/gnalose/diag"
)

// LiteralError reports an integer literal that does not fit in 32 bits.
type LiteralError struct {
	Text string
	Err  error
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("integer literal %q cannot be parsed: %v", e.Text, e.Err)
}

func (e *LiteralError) Unwrap() error { return e.Err }

// Lines splits src into physical lines the way the rest of the toolchain
// counts them: a trailing carriage return is dropped and a final newline does
// not start another line.
func Lines(src string) []string {
	if src == "" {
		return nil
	}
	lines := strings.Split(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Tokenize lexes every line of src, last physical line first.
func Tokenize(src string) ([]TokenLine, error) {
	lines := Lines(src)
	out := make([]TokenLine, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		raw := lines[i]
		toks, err := LexLine(strings.TrimSpace(raw))
		if err != nil {
			return nil, diag.New("lexer", len(out)+1, len(lines), raw, err)
		}
		out = append(out, TokenLine{Tokens: toks, Raw: raw})
	}
	return out, nil
}

// LexLine lexes a single, already trimmed, line.
//
// Every '/' closes a comment holding the text on its left; only what follows
// the last '/' is code.
func LexLine(line string) ([]Token, error) {
	var toks []Token
	for {
		idx := strings.IndexByte(line, '/')
		if idx < 0 {
			break
		}
		toks = append(toks, Comment(line[:idx]))
		line = line[idx+1:]
	}

	lx := &lineLexer{src: line}
	for {
		tok, ok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

type lineLexer struct {
	src string
	pos int
}

func (lx *lineLexer) next() (Token, bool, error) {
	lx.skipWhitespace()
	if lx.pos >= len(lx.src) {
		return Token{}, false, nil
	}

	switch c := lx.src[lx.pos]; {
	case c == '[':
		lx.pos++
		return Bracket(Left), true, nil
	case c == ']':
		lx.pos++
		return Bracket(Right), true, nil
	case isDigit(c):
		start := lx.pos
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
		text := lx.src[start:lx.pos]
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Token{}, false, &LiteralError{Text: text, Err: err}
		}
		return Literal(int32(v)), true, nil
	}

	start := lx.pos
	for lx.pos < len(lx.src) {
		r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if unicode.IsSpace(r) || r == '[' || r == ']' {
			break
		}
		lx.pos += w
	}
	return Name(lx.src[start:lx.pos]), true, nil
}

func (lx *lineLexer) skipWhitespace() {
	for lx.pos < len(lx.src) {
		r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		lx.pos += w
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
