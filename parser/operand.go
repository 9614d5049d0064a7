package parser

import "github.com/sergev/gnalose/lexer"

type operandKind int

const (
	operandName operandKind = iota
	operandLiteral
	operandArray
)

// operand is a token after brackets have been folded into array accesses.
type operand struct {
	kind  operandKind
	name  string
	value int32
	index lexer.Token // operandArray: a Name or Literal token
}

// operands folds `name [ index ]` sequences into single array operands.
// Any other use of brackets, or a comment, makes the line malformed.
func operands(toks []lexer.Token) ([]operand, bool) {
	out := make([]operand, 0, len(toks))
	for i := 0; i < len(toks); {
		tok := toks[i]
		switch tok.Kind {
		case lexer.KindLiteral:
			out = append(out, operand{kind: operandLiteral, value: tok.Value})
			i++
		case lexer.KindName:
			if i+1 >= len(toks) || toks[i+1].Kind != lexer.KindBracket {
				out = append(out, operand{kind: operandName, name: tok.Text})
				i++
				continue
			}
			if i+3 >= len(toks) || toks[i+1].Side != lexer.Left {
				return nil, false
			}
			index, closing := toks[i+2], toks[i+3]
			if index.Kind != lexer.KindName && index.Kind != lexer.KindLiteral {
				return nil, false
			}
			if closing.Kind != lexer.KindBracket || closing.Side != lexer.Right {
				return nil, false
			}
			out = append(out, operand{kind: operandArray, name: tok.Text, index: index})
			i += 4
		default:
			return nil, false
		}
	}
	return out, true
}
