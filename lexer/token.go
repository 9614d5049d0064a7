package lexer

import (
	"fmt"
	"strings"
)

// Kind enumerates the lexical categories of a Gnalose line.
type Kind int

const (
	KindName Kind = iota
	KindLiteral
	KindBracket
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "Name"
	case KindLiteral:
		return "Literal"
	case KindBracket:
		return "ArrayBracket"
	case KindComment:
		return "Comment"
	default:
		return "unknown"
	}
}

// Side tells an opening array bracket from a closing one.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "Left"
	}
	return "Right"
}

// Token is a single lexeme.
type Token struct {
	Kind  Kind
	Text  string // name or comment text
	Value int32  // literal value
	Side  Side   // bracket side
}

// Name builds a KindName token.
func Name(text string) Token { return Token{Kind: KindName, Text: text} }

// Literal builds a KindLiteral token.
func Literal(v int32) Token { return Token{Kind: KindLiteral, Value: v} }

// Bracket builds a KindBracket token.
func Bracket(side Side) Token { return Token{Kind: KindBracket, Side: side} }

// Comment builds a KindComment token.
func Comment(text string) Token { return Token{Kind: KindComment, Text: text} }

func (t Token) String() string {
	switch t.Kind {
	case KindName, KindComment:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case KindLiteral:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Value)
	case KindBracket:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Side)
	default:
		return "unknown"
	}
}

// TokenLine is one source line: its tokens and its raw text.
type TokenLine struct {
	Tokens []Token
	Raw    string
}

// Format renders a token stream, one TokenLine per output line.
func Format(lines []TokenLine) string {
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "%q [", line.Raw)
		for i, tok := range line.Tokens {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(tok.String())
		}
		b.WriteString("]\n")
	}
	return b.String()
}
