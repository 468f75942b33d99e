package filter

import (
	"bufio"
	"fmt"
	"io"
)

type asciiHexCodec struct{}

func (asciiHexCodec) Decoder(upstream io.Reader, _ Params) (io.Reader, error) {
	return &asciiHexDecoder{src: bufio.NewReader(upstream)}, nil
}

func (asciiHexCodec) Encoder(upstream io.Reader, _ Params) (io.Reader, error) {
	return &asciiHexEncoder{src: bufio.NewReader(upstream)}, nil
}

// asciiHexDecoder reads hex digit pairs until the '>' EOD marker,
// tolerating embedded whitespace. Grounded on parser/filters/
// asciiHexDecode.go's reacher-based Skip, rewritten as a pull-source
// that actually decodes instead of just locating the marker.
type asciiHexDecoder struct {
	src  *bufio.Reader
	done bool
}

func (d *asciiHexDecoder) Read(p []byte) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		hi, ok, eod := d.nextHexDigit()
		if eod {
			d.done = true
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		if !ok {
			return n, io.ErrUnexpectedEOF
		}
		lo, ok, eod := d.nextHexDigit()
		if eod || !ok {
			// odd-length input: treat the missing low nibble as 0.
			p[n] = hi << 4
			n++
			d.done = true
			return n, nil
		}
		p[n] = hi<<4 | lo
		n++
	}
	return n, nil
}

func (d *asciiHexDecoder) nextHexDigit() (v byte, ok bool, eod bool) {
	for {
		b, err := d.src.ReadByte()
		if err != nil {
			return 0, false, false
		}
		switch {
		case b == '>':
			return 0, false, true
		case isHexWhitespace(b):
			continue
		default:
			hv, good := hexDigitValue(b)
			return hv, good, false
		}
	}
}

func isHexWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func hexDigitValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

type asciiHexEncoder struct {
	src  *bufio.Reader
	buf  []byte
	done bool
}

func (e *asciiHexEncoder) Read(p []byte) (int, error) {
	if e.done {
		return 0, io.EOF
	}
	for len(e.buf) < len(p) {
		b, err := e.src.ReadByte()
		if err == io.EOF {
			e.buf = append(e.buf, '>')
			e.done = true
			break
		}
		if err != nil {
			return 0, err
		}
		e.buf = append(e.buf, fmt.Sprintf("%02X", b)...)
	}
	n := copy(p, e.buf)
	e.buf = e.buf[n:]
	if n == 0 && e.done {
		return 0, io.EOF
	}
	return n, nil
}
