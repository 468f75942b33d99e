package token

import (
	"io"

	"github.com/gettalong/hexapdf-sub005/pdferr"
)

func isWhitespace(b byte) bool {
	switch b {
	case 0, 9, 10, 12, 13, 32:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isWhitespace(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Tokenizer scans a seekable byte source into Tokens. It keeps a
// two-token lookahead so callers (objparser's Reference collapsing) can
// inspect "the next two tokens" without consuming them, mirroring
// parser/tokenizer/token.go's aToken/aaToken scheme.
type Tokenizer struct {
	src *source

	pos int64 // end of the furthest token read so far (end of aaToken)

	currentPos int64 // end of the current (about to be returned) token
	nextPos    int64 // end of the +1 token

	aToken Token
	aErr   error

	aaToken Token
	aaErr   error
}

// New builds a Tokenizer over r, which contains size bytes, starting at
// byte offset start.
func New(r io.ReaderAt, size int64, start int64) *Tokenizer {
	tk := &Tokenizer{src: newSource(r, size)}
	tk.initiateAt(start)
	return tk
}

func (tk *Tokenizer) initiateAt(pos int64) {
	tk.currentPos = pos
	tk.pos = pos
	tk.aToken, tk.aErr = tk.scan(pos, &tk.pos)
	tk.nextPos = tk.pos
	tk.aaToken, tk.aaErr = tk.scan(tk.pos, &tk.pos)
}

// Pos returns the offset at which the next call to Next will begin
// scanning (i.e. the end of the token last returned).
func (tk *Tokenizer) Pos() int64 { return tk.currentPos }

// Peek returns the next token without consuming it.
func (tk *Tokenizer) Peek() (Token, error) { return tk.aToken, tk.aErr }

// PeekPeek returns the token after next without consuming either.
func (tk *Tokenizer) PeekPeek() (Token, error) { return tk.aaToken, tk.aaErr }

// Next returns the next token and advances past it.
func (tk *Tokenizer) Next() (Token, error) {
	t, err := tk.aToken, tk.aErr
	tk.aToken, tk.aErr = tk.aaToken, tk.aaErr
	tk.currentPos = tk.nextPos
	tk.nextPos = tk.pos
	tk.aaToken, tk.aaErr = tk.scan(tk.pos, &tk.pos)
	return t, err
}

// SeekTo discards all lookahead and resumes scanning at pos. Used after
// reading a stream body, whose length is not known until the
// dictionary above it has been parsed (spec.md §4.2).
func (tk *Tokenizer) SeekTo(pos int64) {
	tk.initiateAt(pos)
}

// ReadRaw returns the n raw bytes starting at pos, without tokenizing
// them, and repositions the tokenizer just past them. Used to pull a
// stream's encoded body out once its extent is known.
func (tk *Tokenizer) ReadRaw(pos int64, n int64) []byte {
	out := tk.src.slice(pos, pos+n)
	tk.SeekTo(pos + n)
	return out
}

// Byte exposes a single source byte for callers doing their own
// low-level scanning (the endstream-search fallback in objparser).
func (tk *Tokenizer) Byte(pos int64) (b byte, ok bool) {
	defer func() { recoverReadFailure(recover()) }()
	return tk.src.byteAt(pos)
}

// scanCursor bundles the mutable read position and its read/unread
// primitives so the scanXxx helpers below can share a single source of
// truth for "how far have we advanced" instead of threading stale
// position values through return values.
type scanCursor struct {
	src *source
	cur int64
}

func (c *scanCursor) read() (byte, bool) {
	b, ok := c.src.byteAt(c.cur)
	if ok {
		c.cur++
	}
	return b, ok
}

func (c *scanCursor) unread() { c.cur-- }

func (tk *Tokenizer) scan(pos int64, advance *int64) (t Token, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = recoverReadFailure(rec)
		}
	}()
	c := &scanCursor{src: tk.src, cur: pos}

	start := c.cur
	b, ok := c.read()
	for ok && isWhitespace(b) {
		start = c.cur
		b, ok = c.read()
	}
	if !ok {
		*advance = c.cur
		return Token{Kind: EOF, Offset: start}, nil
	}

	switch b {
	case '[':
		*advance = c.cur
		return Token{Kind: StartArray, Offset: start}, nil
	case ']':
		*advance = c.cur
		return Token{Kind: EndArray, Offset: start}, nil
	case '/':
		tok := tk.scanName(c)
		tok.Offset = start
		*advance = c.cur
		return tok, nil
	case '>':
		b2, ok2 := c.read()
		if !ok2 || b2 != '>' {
			return Token{}, pdferr.Malformedf(start, "stray '>' outside hex string")
		}
		*advance = c.cur
		return Token{Kind: EndDict, Offset: start}, nil
	case '<':
		b2, ok2 := c.read()
		if ok2 && b2 == '<' {
			*advance = c.cur
			return Token{Kind: StartDict, Offset: start}, nil
		}
		if ok2 {
			c.unread()
		}
		tok, serr := tk.scanHexString(c)
		if serr != nil {
			return Token{}, pdferr.Malformedf(start, "%v", serr)
		}
		tok.Offset = start
		*advance = c.cur
		return tok, nil
	case '%':
		for ok && b != '\r' && b != '\n' {
			b, ok = c.read()
		}
		return tk.scan(c.cur, advance)
	case '(':
		tok, serr := tk.scanLiteralString(c)
		if serr != nil {
			return Token{}, pdferr.Malformedf(start, "%v", serr)
		}
		tok.Offset = start
		*advance = c.cur
		return tok, nil
	default:
		c.unread() // re-see b
		if tok, isNum := tk.scanNumber(c); isNum {
			tok.Offset = start
			*advance = c.cur
			return tok, nil
		}
		tok := tk.scanKeyword(c)
		tok.Offset = start
		*advance = c.cur
		return tok, nil
	}
}

func (tk *Tokenizer) scanName(c *scanCursor) Token {
	var out []byte
	b, ok := c.read()
	for ok && !isDelimiter(b) {
		if b == '#' {
			h1, ok1 := c.read()
			h2, ok2 := c.read()
			if v, good := decodeHexByte(h1, h2, ok1, ok2); good {
				out = append(out, v)
				b, ok = c.read()
				continue
			}
			// malformed escape: keep the literal bytes, matching the
			// teacher's tolerant behaviour for odd producer bugs.
			out = append(out, '#')
			b, ok = c.read()
			continue
		}
		out = append(out, b)
		b, ok = c.read()
	}
	if ok {
		c.unread()
	}
	return Token{Kind: Name, Value: string(out)}
}

func decodeHexByte(h1, h2 byte, ok1, ok2 bool) (byte, bool) {
	if !ok1 || !ok2 {
		return 0, false
	}
	v1, good1 := hexVal(h1)
	v2, good2 := hexVal(h2)
	if !good1 || !good2 {
		return 0, false
	}
	return v1<<4 | v2, true
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (tk *Tokenizer) scanHexString(c *scanCursor) (Token, error) {
	var out []byte
	var nibble byte
	haveNibble := false
	for {
		b, ok := c.read()
		if !ok {
			return Token{}, errUnexpectedEOF
		}
		if isWhitespace(b) {
			continue
		}
		if b == '>' {
			break
		}
		v, good := hexVal(b)
		if !good {
			return Token{}, pdferr.Malformedf(c.cur, "invalid hex digit %q", b)
		}
		if !haveNibble {
			nibble = v
			haveNibble = true
			continue
		}
		out = append(out, nibble<<4|v)
		haveNibble = false
	}
	if haveNibble {
		// odd-length hex string padded with 0 (spec.md §4.1).
		out = append(out, nibble<<4)
	}
	return Token{Kind: StringHex, Value: string(out)}, nil
}

var errUnexpectedEOF = pdferr.Malformedf(-1, "unexpected end of data")

func (tk *Tokenizer) scanLiteralString(c *scanCursor) (Token, error) {
	var out []byte
	depth := 0
	for {
		b, ok := c.read()
		if !ok {
			return Token{}, errUnexpectedEOF
		}
		switch {
		case b == '(':
			depth++
			out = append(out, b)
		case b == ')':
			if depth == 0 {
				return Token{Kind: String, Value: string(out)}, nil
			}
			depth--
			out = append(out, b)
		case b == '\\':
			nb, nbOK := c.read()
			if !nbOK {
				return Token{}, errUnexpectedEOF
			}
			switch nb {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\n') // CR normalized to LF
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, nb)
			case '\r':
				// backslash-CR(LF) line continuation: emits nothing.
				if b2, ok2 := c.read(); ok2 && b2 != '\n' {
					c.unread()
				}
			case '\n':
				// backslash-LF line continuation, emits nothing.
			default:
				if nb >= '0' && nb <= '7' {
					val := nb - '0'
					for i := 0; i < 2; i++ {
						d, dOK := c.read()
						if !dOK || d < '0' || d > '7' {
							if dOK {
								c.unread()
							}
							break
						}
						val = val<<3 | (d - '0')
					}
					out = append(out, val)
				} else {
					out = append(out, nb)
				}
			}
		case b == '\r':
			out = append(out, '\n')
			if b2, ok2 := c.read(); ok2 && b2 != '\n' {
				c.unread()
			}
		default:
			out = append(out, b)
		}
	}
}

func (tk *Tokenizer) scanNumber(c *scanCursor) (Token, bool) {
	marked := c.cur
	var sb []byte
	b, ok := c.read()
	if b == '+' || b == '-' {
		sb = append(sb, b)
		b, ok = c.read()
	}
	hasDigit := false
	for ok && isDigit(b) {
		sb = append(sb, b)
		hasDigit = true
		b, ok = c.read()
	}
	isReal := false
	if b == '.' {
		isReal = true
		sb = append(sb, b)
		b, ok = c.read()
		for ok && isDigit(b) {
			sb = append(sb, b)
			hasDigit = true
			b, ok = c.read()
		}
	}
	if !hasDigit {
		// a solitary "+"/"-" (or bare ".") is a keyword, not a number
		// (spec.md §4.1); rewind and let scanKeyword claim it.
		c.cur = marked
		return Token{}, false
	}
	if ok {
		c.unread()
	}
	if isReal {
		return Token{Kind: Real, Value: string(sb)}, true
	}
	return Token{Kind: Integer, Value: string(sb)}, true
}

func (tk *Tokenizer) scanKeyword(c *scanCursor) Token {
	var out []byte
	b, ok := c.read()
	for ok && !isDelimiter(b) {
		out = append(out, b)
		b, ok = c.read()
	}
	if ok {
		c.unread()
	}
	return Token{Kind: Keyword, Value: string(out)}
}
