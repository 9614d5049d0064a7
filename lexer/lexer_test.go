package lexer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sergev/gnalose/diag"
)

func TestLexLineCommentsNamesAndBrackets(t *testing.T) {
	toks, err := LexLine("comment/ comment 2/3 haha [hah][[")
	if err != nil {
		t.Fatalf("LexLine returned error: %v", err)
	}
	want := []Token{
		Comment("comment"),
		Comment(" comment 2"),
		Literal(3),
		Name("haha"),
		Bracket(Left),
		Name("hah"),
		Bracket(Right),
		Bracket(Left),
		Bracket(Left),
	}
	if !reflect.DeepEqual(toks, want) {
		t.Fatalf("LexLine tokens mismatch:\n got %v\nwant %v", toks, want)
	}
}

func TestLexLineDigitsSplitFromName(t *testing.T) {
	toks, err := LexLine("add 12abc to arr[i]")
	if err != nil {
		t.Fatalf("LexLine returned error: %v", err)
	}
	want := []Token{
		Name("add"),
		Literal(12),
		Name("abc"),
		Name("to"),
		Name("arr"),
		Bracket(Left),
		Name("i"),
		Bracket(Right),
	}
	if !reflect.DeepEqual(toks, want) {
		t.Fatalf("got %v, want %v", toks, want)
	}
}

func TestLexLineNegativeNumberIsName(t *testing.T) {
	toks, err := LexLine("-5")
	if err != nil {
		t.Fatalf("LexLine returned error: %v", err)
	}
	if len(toks) != 1 || toks[0] != Name("-5") {
		t.Fatalf("expected a single name token, got %v", toks)
	}
}

func TestLexLineLiteralOverflow(t *testing.T) {
	_, err := LexLine("print 99999999999")
	var lerr *LiteralError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LiteralError, got %v", err)
	}
	if lerr.Text != "99999999999" {
		t.Fatalf("expected offending literal text, got %q", lerr.Text)
	}
}

func TestLexLineMaxInt32(t *testing.T) {
	toks, err := LexLine("2147483647")
	if err != nil {
		t.Fatalf("LexLine returned error: %v", err)
	}
	if toks[0].Value != 2147483647 {
		t.Fatalf("expected max int32, got %d", toks[0].Value)
	}
}

func TestTokenizeReversesLines(t *testing.T) {
	src := "undefine x\nread to x\n\nprint x\ndefine x\n"
	lines, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	wantRaw := []string{"define x", "print x", "", "read to x", "undefine x"}
	if len(lines) != len(wantRaw) {
		t.Fatalf("expected %d lines, got %d", len(wantRaw), len(lines))
	}
	for i, raw := range wantRaw {
		if lines[i].Raw != raw {
			t.Errorf("line %d: expected raw %q, got %q", i, raw, lines[i].Raw)
		}
	}
	if len(lines[2].Tokens) != 0 {
		t.Errorf("expected empty line to have no tokens, got %v", lines[2].Tokens)
	}
	if !reflect.DeepEqual(lines[0].Tokens, []Token{Name("define"), Name("x")}) {
		t.Errorf("unexpected first tokens %v", lines[0].Tokens)
	}
}

func TestTokenizeKeepsRawLineAndTrimsForLexing(t *testing.T) {
	lines, err := Tokenize("   halt   \r\n")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Raw != "   halt   " {
		t.Fatalf("expected raw text without carriage return, got %q", lines[0].Raw)
	}
	if !reflect.DeepEqual(lines[0].Tokens, []Token{Name("halt")}) {
		t.Fatalf("unexpected tokens %v", lines[0].Tokens)
	}
}

func TestTokenizeEmptySource(t *testing.T) {
	lines, err := Tokenize("")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
}

func TestTokenizeErrorCarriesLine(t *testing.T) {
	src := "print 1\nprint 4294967296\nhalt"
	_, err := Tokenize(src)
	lerr, ok := diag.Line(err)
	if !ok {
		t.Fatalf("expected a lined error, got %v", err)
	}
	if lerr.Line != 2 || lerr.LinesAmount != 3 || lerr.TopLine() != 2 {
		t.Fatalf("unexpected line info: line=%d amount=%d top=%d", lerr.Line, lerr.LinesAmount, lerr.TopLine())
	}
	if lerr.Text != "print 4294967296" {
		t.Fatalf("unexpected text %q", lerr.Text)
	}
	if lerr.Stage != "lexer" {
		t.Fatalf("unexpected stage %q", lerr.Stage)
	}
}

func TestFormatTokenStream(t *testing.T) {
	out := Format([]TokenLine{{Tokens: []Token{Name("halt"), Literal(3)}, Raw: "halt 3"}})
	want := `"halt 3" [Name("halt") Literal(3)]`
	if strings.TrimSpace(out) != want {
		t.Fatalf("Format => %q, want %q", out, want)
	}
}
