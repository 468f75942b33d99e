// Package objparser implements the recursive-descent object parser:
// token.Token sequences in, objects.Object trees out (spec.md §4.2).
//
// Grounded on parser/parser.go, generalized from an in-memory []byte
// parser to one driving the seekable token.Tokenizer, and from the
// teacher's pointer-typed Dict/Array/IndirectRef to this module's
// objects.Dict/Array/Reference.
package objparser

import (
	"github.com/pdfcpu/pdfcpu/pkg/log"

	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
	"github.com/gettalong/hexapdf-sub005/token"
)

// Parser reads objects.Object values from a Tokenizer. ContentStreamMode
// is carried over from the teacher for parity with spec.md's object
// model, but this engine's Non-goals exclude content-stream operator
// parsing, so it only affects whether a bare integer may be followed by
// an indirect-reference collapse.
type Parser struct {
	Tokens            *token.Tokenizer
	ContentStreamMode bool
}

func New(tk *token.Tokenizer) *Parser {
	return &Parser{Tokens: tk}
}

// ParseValue reads exactly one Value, per spec.md §4.2.
func (p *Parser) ParseValue() (objects.Object, error) {
	tk, err := p.Tokens.Next()
	if err != nil {
		return nil, err
	}
	return p.parseFromToken(tk)
}

func (p *Parser) parseFromToken(tk token.Token) (objects.Object, error) {
	switch tk.Kind {
	case token.EOF:
		return nil, pdferr.Malformedf(tk.Offset, "unexpected end of data while parsing a value")
	case token.Name:
		return objects.Name(tk.Value), nil
	case token.String:
		return objects.ByteString(tk.Value), nil
	case token.StringHex:
		return objects.ByteString(tk.Value), nil
	case token.Real:
		f, err := tk.Float()
		if err != nil {
			return nil, pdferr.Malformedf(tk.Offset, "invalid real: %v", err)
		}
		return objects.Real(f), nil
	case token.StartArray:
		return p.parseArray()
	case token.StartDict:
		return p.parseDict()
	case token.Integer:
		return p.parseNumericOrReference(tk)
	case token.Keyword:
		return p.parseKeyword(tk)
	default:
		return nil, pdferr.Malformedf(tk.Offset, "unexpected token %s", tk.Kind)
	}
}

func (p *Parser) parseKeyword(tk token.Token) (objects.Object, error) {
	switch tk.Value {
	case "null":
		return objects.Null{}, nil
	case "true":
		return objects.Boolean(true), nil
	case "false":
		return objects.Boolean(false), nil
	default:
		return nil, pdferr.Malformedf(tk.Offset, "unexpected keyword %q", tk.Value)
	}
}

func (p *Parser) parseArray() (objects.Array, error) {
	arr := objects.Array{}
	for {
		tk, err := p.Tokens.Peek()
		if err != nil {
			return nil, err
		}
		switch tk.Kind {
		case token.EndArray:
			_, _ = p.Tokens.Next()
			return arr, nil
		case token.EOF:
			return nil, pdferr.Malformedf(tk.Offset, "unterminated array")
		default:
			v, err := p.ParseValue()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	}
}

func (p *Parser) parseDict() (objects.Dict, error) {
	d := objects.Dict{}
	for {
		tk, err := p.Tokens.Peek()
		if err != nil {
			return nil, err
		}
		switch tk.Kind {
		case token.EndDict:
			_, _ = p.Tokens.Next()
			return d, nil
		case token.EOF:
			return nil, pdferr.Malformedf(tk.Offset, "unterminated dictionary")
		case token.Name:
			_, _ = p.Tokens.Next() // consume the key
			key := objects.Name(tk.Value)
			v, err := p.ParseValue()
			if err != nil {
				return nil, err
			}
			// A dictionary entry whose value is Null is dropped
			// (spec.md §4.2).
			if _, isNull := v.(objects.Null); !isNull {
				d[key] = v
			}
			log.Parse.Printf("objparser: dict[%s] = %v\n", key, v)
		default:
			return nil, pdferr.Malformedf(tk.Offset, "expected a name key, got %s", tk.Kind)
		}
	}
}

// parseNumericOrReference implements spec.md §4.1's reference-collapsing
// rule: "<int> <int> R" (with whitespace between) collapses to a
// Reference; the tokenizer's two-token lookahead lets us peek both
// following tokens before committing to either interpretation.
func (p *Parser) parseNumericOrReference(tk token.Token) (objects.Object, error) {
	i, err := tk.Int()
	if err != nil {
		return nil, pdferr.Malformedf(tk.Offset, "invalid integer: %v", err)
	}

	if p.ContentStreamMode || i < 0 || i > 0xFFFFFFFF {
		return objects.Integer(i), nil
	}

	next, err := p.Tokens.Peek()
	if err != nil {
		return nil, err
	}
	if next.Kind != token.Integer {
		return objects.Integer(i), nil
	}
	gen, err := next.Int()
	if err != nil || gen < 0 || gen > 0xFFFF {
		return objects.Integer(i), nil
	}

	nextNext, err := p.Tokens.PeekPeek()
	if err != nil {
		return nil, err
	}
	if !nextNext.IsKeyword("R") {
		return objects.Integer(i), nil
	}

	_, _ = p.Tokens.Next() // consume the generation number
	_, _ = p.Tokens.Next() // consume "R"
	return objects.Reference{Oid: uint32(i), Gen: uint16(gen)}, nil
}
