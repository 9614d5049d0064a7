package parser

import (
	"io"

	"github.com/sergev/gnalose/ir"
	"github.com/sergev/gnalose/lexer"
)

// ParseString lexes and parses Gnalose source text.
func ParseString(src string) (*ir.Representation, error) {
	lines, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(lines)
}

// ParseReader consumes Gnalose source from an io.Reader and parses it.
func ParseReader(r io.Reader) (*ir.Representation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}
