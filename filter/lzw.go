package filter

import (
	"io"

	"github.com/hhrutter/lzw"
)

// lzwCodec wraps github.com/hhrutter/lzw, which (unlike the standard
// library's compress/lzw) implements the PDF/TIFF EarlyChange variant
// PDF32000 7.4.4 requires. Grounded on parser/filters/lzwDecode.go's
// SkipperLZW.
type lzwCodec struct{}

func (lzwCodec) Decoder(upstream io.Reader, params Params) (io.Reader, error) {
	earlyChange := params.int("EarlyChange", 1) != 0
	r := io.Reader(lzw.NewReader(upstream, earlyChange))
	pp, err := parsePredictorParams(params)
	if err != nil {
		return nil, err
	}
	return pp.applyOnDecode(r)
}

func (lzwCodec) Encoder(upstream io.Reader, params Params) (io.Reader, error) {
	earlyChange := params.int("EarlyChange", 1) != 0
	pp, err := parsePredictorParams(params)
	if err != nil {
		return nil, err
	}
	pre, err := pp.applyOnEncode(upstream)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	w := lzw.NewWriter(pw, earlyChange)
	go func() {
		_, err := io.Copy(w, pre)
		if err == nil {
			err = w.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, nil
}
