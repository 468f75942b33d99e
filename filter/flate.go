package filter

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"io/ioutil"
)

type flateCodec struct{}

func (flateCodec) Decoder(upstream io.Reader, params Params) (io.Reader, error) {
	zr, err := zlib.NewReader(upstream)
	if err != nil {
		return nil, err
	}
	pp, err := parsePredictorParams(params)
	if err != nil {
		return nil, err
	}
	return pp.applyOnDecode(zr)
}

func (flateCodec) Encoder(upstream io.Reader, params Params) (io.Reader, error) {
	pp, err := parsePredictorParams(params)
	if err != nil {
		return nil, err
	}
	pre, err := pp.applyOnEncode(upstream)
	if err != nil {
		return nil, err
	}

	level := params.int("FlateCompression", zlib.DefaultCompression)

	pr, pw := io.Pipe()
	zw, err := zlib.NewWriterLevel(pw, level)
	if err != nil {
		return nil, err
	}
	go func() {
		_, err := io.Copy(zw, pre)
		if err == nil {
			err = zw.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// predictorParams mirrors /DecodeParms's Predictor/Colors/BitsPerComponent/
// Columns entries (PDF32000 Table 8). Grounded on reader/parser/filters/
// flateDecode.go's flateDecodeParams/processFlateParams, which this file
// keeps the algorithm of almost verbatim (including the cr/pr swap-buffer
// technique and the Paeth filter), adding the encode-side (prediction)
// half the teacher's read-only Skipper never implemented.
type predictorParams struct {
	predictor int
	colors    int
	bpc       int
	columns   int
}

func parsePredictorParams(params Params) (predictorParams, error) {
	predictor := params.int("Predictor", 1)
	switch predictor {
	case 0, 1, 2, 10, 11, 12, 13, 14, 15:
	default:
		return predictorParams{}, fmt.Errorf("unexpected Predictor: %d", predictor)
	}
	colors := params.int("Colors", 1)
	if colors == 0 {
		return predictorParams{}, fmt.Errorf("Colors must be > 0")
	}
	bpc := params.int("BitsPerComponent", 8)
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return predictorParams{}, fmt.Errorf("unexpected BitsPerComponent: %d", bpc)
	}
	columns := params.int("Columns", 1)
	return predictorParams{predictor: predictor, colors: colors, bpc: bpc, columns: columns}, nil
}

func (p predictorParams) rowSize() int {
	return p.bpc * p.colors * p.columns / 8
}

func (p predictorParams) bytesPerPixel() int {
	return (p.bpc*p.colors + 7) / 8
}

// applyOnDecode undoes the PNG (predictor >= 10) or TIFF (predictor==2)
// prediction applied at encode time.
func (p predictorParams) applyOnDecode(r io.Reader) (io.Reader, error) {
	if p.predictor == 0 || p.predictor == 1 {
		return r, nil
	}

	rowSize := p.rowSize()
	if p.predictor != 2 {
		rowSize++ // PNG rows are prefixed with a filter-type byte.
	}

	cr := make([]byte, rowSize)
	pr := make([]byte, rowSize)
	var out []byte

	for {
		_, err := io.ReadFull(r, cr)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		d, err := p.unfilterRow(pr, cr)
		if err != nil {
			return nil, err
		}
		out = append(out, d...)
		pr, cr = cr, pr
	}

	if p.rowSize() > 0 && len(out)%p.rowSize() != 0 {
		return nil, fmt.Errorf("predictor: postprocessing produced %d bytes, not a multiple of row size %d", len(out), p.rowSize())
	}
	return bytes.NewReader(out), nil
}

func (p predictorParams) unfilterRow(pr, cr []byte) ([]byte, error) {
	if p.predictor == 2 {
		return applyHorDiff(cr, p.colors)
	}

	cdat := cr[1:]
	pdat := pr[1:]
	bpp := p.bytesPerPixel()

	switch cr[0] {
	case 0:
	case 1:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case 2:
		for i, pv := range pdat {
			cdat[i] += pv
		}
	case 3:
		for i := 0; i < bpp; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case 4:
		filterPaeth(cdat, pdat, bpp)
	default:
		return nil, fmt.Errorf("predictor: unknown PNG filter type %d", cr[0])
	}
	return cdat, nil
}

// applyOnEncode applies PNG-Up (type 2) prediction before compressing,
// the simplest correct PNG predictor to produce on write; a decoder
// honoring any PNG predictor type (which this package's own decode side
// does) accepts it, since "the value of Predictor...need not match the
// value used when the data was encoded if they are both >= 10"
// (PDF32000 7.4.4.4, carried over verbatim in the teacher's comment).
func (p predictorParams) applyOnEncode(r io.Reader) (io.Reader, error) {
	if p.predictor == 0 || p.predictor == 1 {
		return r, nil
	}
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rowSize := p.rowSize()
	if rowSize <= 0 {
		return nil, fmt.Errorf("predictor: invalid row size %d", rowSize)
	}
	if p.predictor == 2 {
		// Row by row, so each row's first pixel stays raw as the decode
		// side expects.
		hd := make([]byte, 0, len(raw))
		for off := 0; off < len(raw); off += rowSize {
			end := off + rowSize
			if end > len(raw) {
				end = len(raw)
			}
			hd = append(hd, applyHorDiffEncode(raw[off:end], p.colors)...)
		}
		return bytes.NewReader(hd), nil
	}

	var out bytes.Buffer
	prev := make([]byte, rowSize)
	for off := 0; off < len(raw); off += rowSize {
		end := off + rowSize
		if end > len(raw) {
			end = len(raw)
		}
		row := raw[off:end]
		out.WriteByte(2) // Up
		for i, b := range row {
			out.WriteByte(b - prev[i])
		}
		full := make([]byte, rowSize)
		copy(full, row)
		prev = full
	}
	return &out, nil
}

func applyHorDiff(row []byte, colors int) ([]byte, error) {
	for i := 1; i < len(row)/colors; i++ {
		for j := 0; j < colors; j++ {
			row[i*colors+j] += row[(i-1)*colors+j]
		}
	}
	return row, nil
}

func applyHorDiffEncode(data []byte, colors int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	for i := len(out)/colors - 1; i >= 1; i-- {
		for j := 0; j < colors; j++ {
			out[i*colors+j] -= out[(i-1)*colors+j]
		}
	}
	return out
}

func abs32(x int32) int32 {
	m := x >> 31
	return (x ^ m) - m
}

func filterPaeth(cdat, pdat []byte, bytesPerPixel int) {
	var a, b, c, pa, pb, pc int32
	for i := 0; i < bytesPerPixel; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bytesPerPixel {
			b = int32(pdat[j])
			pa = b - c
			pb = a - c
			pc = abs32(pa + pb)
			pa = abs32(pa)
			pb = abs32(pb)
			switch {
			case pa <= pb && pa <= pc:
			case pb <= pc:
				a = b
			default:
				a = c
			}
			a += int32(cdat[j])
			a &= 0xff
			cdat[j] = uint8(a)
			c = b
		}
	}
}
