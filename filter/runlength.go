package filter

import (
	"bufio"
	"io"
)

type runLengthCodec struct{}

const runLengthEOD = 0x80

func (runLengthCodec) Decoder(upstream io.Reader, _ Params) (io.Reader, error) {
	return &runLengthDecoder{src: bufio.NewReader(upstream)}, nil
}

func (runLengthCodec) Encoder(upstream io.Reader, _ Params) (io.Reader, error) {
	return &runLengthEncoder{src: bufio.NewReader(upstream)}, nil
}

// runLengthDecoder implements the RunLengthDecode algorithm per
// PDF32000 7.4.5. Grounded on parser/filters/runLengthDecode.go's
// SkipperRunLength.decode, rewritten as a pull-source producing the
// decoded bytes instead of discarding them.
type runLengthDecoder struct {
	src     *bufio.Reader
	pending []byte
	done    bool
}

func (d *runLengthDecoder) Read(p []byte) (int, error) {
	for len(d.pending) == 0 {
		if d.done {
			return 0, io.EOF
		}
		if err := d.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *runLengthDecoder) fill() error {
	b, err := d.src.ReadByte()
	if err != nil {
		return io.ErrUnexpectedEOF
	}
	switch {
	case b == runLengthEOD:
		d.done = true
		return nil
	case b < 0x80:
		count := int(b) + 1
		buf := make([]byte, count)
		if _, err := io.ReadFull(d.src, buf); err != nil {
			return io.ErrUnexpectedEOF
		}
		d.pending = buf
	default:
		count := 257 - int(b)
		c, err := d.src.ReadByte()
		if err != nil {
			return io.ErrUnexpectedEOF
		}
		buf := make([]byte, count)
		for i := range buf {
			buf[i] = c
		}
		d.pending = buf
	}
	return nil
}

// runLengthEncoder is a naive but correct RunLengthEncode: it always
// emits literal runs (no replicate-run compression), which is valid
// per the format and keeps the encoder's state machine simple. The
// round-trip property spec.md §8 requires (decode(encode(x)) == x) only
// needs correctness, not optimal compression.
type runLengthEncoder struct {
	src  *bufio.Reader
	buf  []byte
	done bool
}

func (e *runLengthEncoder) Read(p []byte) (int, error) {
	if e.done && len(e.buf) == 0 {
		return 0, io.EOF
	}
	for len(e.buf) < len(p) && !e.done {
		chunk := make([]byte, 128)
		n, err := e.src.Read(chunk)
		if n > 0 {
			e.buf = append(e.buf, byte(n-1))
			e.buf = append(e.buf, chunk[:n]...)
		}
		if err != nil {
			e.buf = append(e.buf, runLengthEOD)
			e.done = true
			break
		}
	}
	n := copy(p, e.buf)
	e.buf = e.buf[n:]
	return n, nil
}
