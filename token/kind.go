package token

// Kind classifies a Token. Grounded on parser/tokenizer/token.go's Kind
// enum, trimmed of the PostScript-only variants (StartProc/EndProc/
// CharString) that font/content-stream parsing needed but this engine's
// Non-goals (no content-stream interpretation, no font programs) do not.
type Kind uint8

const (
	EOF Kind = iota
	Integer
	Real
	Name
	String    // literal "(...)" string
	StringHex // hex "<...>" string
	StartArray
	EndArray
	StartDict
	EndDict
	Keyword // obj, endobj, stream, endstream, xref, trailer, startxref, true, false, null, R
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case Name:
		return "Name"
	case String:
		return "String"
	case StringHex:
		return "StringHex"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case StartDict:
		return "StartDict"
	case EndDict:
		return "EndDict"
	case Keyword:
		return "Keyword"
	default:
		return "<invalid token>"
	}
}
