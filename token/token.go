package token

import "strconv"

// Token is an atom produced by the Tokenizer. Value holds the decoded
// payload for Name/String/StringHex/Keyword, or the literal digit
// sequence for Integer/Real; it is meaningless for the structural kinds.
//
// Grounded on parser/tokenizer/token.go's Token, with an added Offset so
// higher layers (objparser, xref reconstruction) can report byte
// positions without re-deriving them.
type Token struct {
	Kind   Kind
	Value  string
	Offset int64
}

// Int parses an Integer token's value.
func (t Token) Int() (int64, error) {
	return strconv.ParseInt(t.Value, 10, 64)
}

// Float parses an Integer or Real token's value.
func (t Token) Float() (float64, error) {
	return strconv.ParseFloat(t.Value, 64)
}

// IsNumber reports whether t is an Integer or Real.
func (t Token) IsNumber() bool {
	return t.Kind == Integer || t.Kind == Real
}

// IsKeyword reports whether t is the Keyword token with the given text.
func (t Token) IsKeyword(word string) bool {
	return t.Kind == Keyword && t.Value == word
}
