package token

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenizeAll(t *testing.T, data string) []Token {
	t.Helper()
	r := bytes.NewReader([]byte(data))
	tk := New(r, int64(len(data)), 0)
	var out []Token
	for {
		tok, err := tk.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			break
		}
		out = append(out, tok)
	}
	return out
}

func TestTokenizeStructural(t *testing.T) {
	toks := tokenizeAll(t, "[ << /Key true null >> ]")
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []Kind{
		StartArray, StartDict, Name, Keyword, Keyword, EndDict, EndArray,
	}, kinds)
}

func TestTokenizeIntegerAndReal(t *testing.T) {
	toks := tokenizeAll(t, "123 -45 +6 3.14 -.5 7. ")
	want := []struct {
		kind Kind
		val  string
	}{
		{Integer, "123"},
		{Integer, "-45"},
		{Integer, "+6"},
		{Real, "3.14"},
		{Real, "-.5"},
		{Real, "7."},
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w.kind, toks[i].Kind, "token %d", i)
		assert.Equal(t, w.val, toks[i].Value, "token %d", i)
	}
}

func TestTokenizeSolitaryPlusIsKeyword(t *testing.T) {
	toks := tokenizeAll(t, "+ ")
	require.Len(t, toks, 1)
	assert.Equal(t, Keyword, toks[0].Kind)
	assert.Equal(t, "+", toks[0].Value)
}

func TestTokenizeNameEscape(t *testing.T) {
	toks := tokenizeAll(t, "/A#20B")
	require.Len(t, toks, 1)
	assert.Equal(t, Name, toks[0].Kind)
	assert.Equal(t, "A B", toks[0].Value)
}

func TestTokenizeHexStringOddLengthPadded(t *testing.T) {
	toks := tokenizeAll(t, "<41 42 4>")
	require.Len(t, toks, 1)
	assert.Equal(t, StringHex, toks[0].Kind)
	assert.Equal(t, "AB@", toks[0].Value) // 0x4 padded to 0x40 = '@'
}

func TestTokenizeLiteralStringEscapes(t *testing.T) {
	toks := tokenizeAll(t, `(a\(b\)c\nd\r\te(nested))`)
	require.Len(t, toks, 1)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, "a(b)c\nd\n\te(nested)", toks[0].Value)
}

func TestTokenizeLiteralStringLineContinuation(t *testing.T) {
	toks := tokenizeAll(t, "(a\\\nb)")
	require.Len(t, toks, 1)
	assert.Equal(t, "ab", toks[0].Value)
}

func TestTokenizeCommentsIgnored(t *testing.T) {
	toks := tokenizeAll(t, "1 %a comment\n 2")
	require.Len(t, toks, 2)
	assert.Equal(t, "1", toks[0].Value)
	assert.Equal(t, "2", toks[1].Value)
}

func TestTokenizePeekDoesNotConsume(t *testing.T) {
	r := bytes.NewReader([]byte("1 2 R"))
	tk := New(r, 5, 0)
	p1, err := tk.Peek()
	require.NoError(t, err)
	assert.Equal(t, "1", p1.Value)
	p2, err := tk.PeekPeek()
	require.NoError(t, err)
	assert.Equal(t, "2", p2.Value)

	first, err := tk.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", first.Value)
	second, err := tk.Next()
	require.NoError(t, err)
	assert.Equal(t, "2", second.Value)
	third, err := tk.Next()
	require.NoError(t, err)
	assert.True(t, third.IsKeyword("R"))
}

func TestTokenizeAcrossLargeChunkBoundary(t *testing.T) {
	// Exceeds the ~8KiB internal window to exercise sliding.
	padding := bytes.Repeat([]byte("0"), 9000)
	data := append(append([]byte("123 "), padding...), []byte(" /Tail")...)
	r := bytes.NewReader(data)
	tk := New(r, int64(len(data)), 0)

	first, err := tk.Next()
	require.NoError(t, err)
	assert.Equal(t, Integer, first.Kind)
	assert.Equal(t, "123", first.Value)

	second, err := tk.Next()
	require.NoError(t, err)
	assert.Equal(t, Integer, second.Kind)

	third, err := tk.Next()
	require.NoError(t, err)
	assert.Equal(t, Name, third.Kind)
	assert.Equal(t, "Tail", third.Value)
}
