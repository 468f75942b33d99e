package document

import (
	"bytes"
	"io/ioutil"

	"github.com/gettalong/hexapdf-sub005/filter"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
)

// filterStages reads a Stream dictionary's /Filter and /DecodeParms
// entries into the declared-order chain filter.DecodeChain/EncodeChain
// expect, normalizing any PDF32000 Table 93 short filter name (spec.md
// §9's open question: always normalize). /Filter may be absent, a
// single Name, or an Array of Names; /DecodeParms mirrors that shape
// (spec.md §3's stream invariant).
func filterStages(d objects.Dict) ([]filter.Stage, error) {
	namesVal, ok := d.Get("Filter")
	if !ok {
		return nil, nil
	}
	var names []objects.Name
	switch v := namesVal.(type) {
	case objects.Name:
		names = []objects.Name{v}
	case objects.Array:
		for _, el := range v {
			n, ok := el.(objects.Name)
			if !ok {
				return nil, pdferr.Filterf("*", "non-Name entry in /Filter array")
			}
			names = append(names, n)
		}
	default:
		return nil, pdferr.Filterf("*", "/Filter must be a Name or Array of Names")
	}

	var parmsList []objects.Object
	if pv, ok := d.Get("DecodeParms"); ok {
		switch p := pv.(type) {
		case objects.Dict:
			parmsList = []objects.Object{p}
		case objects.Array:
			parmsList = append(parmsList, p...)
		case objects.Null:
		default:
			return nil, pdferr.Filterf("*", "/DecodeParms must be a Dict or Array")
		}
	}

	stages := make([]filter.Stage, len(names))
	for i, n := range names {
		stages[i] = filter.Stage{Name: filter.Normalize(string(n))}
		if i < len(parmsList) {
			if pd, ok := parmsList[i].(objects.Dict); ok {
				stages[i].Params = paramsFromDict(pd)
			}
		}
	}
	return stages, nil
}

func paramsFromDict(d objects.Dict) filter.Params {
	out := make(filter.Params, len(d))
	for k, v := range d {
		switch val := v.(type) {
		case objects.Integer:
			out[string(k)] = int(val)
		case objects.Boolean:
			out[string(k)] = bool(val)
		case objects.Name:
			out[string(k)] = string(val)
		}
	}
	return out
}

// decodeStreamBytes runs raw through d's declared filter chain (decode
// order) and returns the fully decoded bytes.
func decodeStreamBytes(d objects.Dict, raw []byte) ([]byte, error) {
	stages, err := filterStages(d)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return raw, nil
	}
	r, err := filter.DecodeChain(bytes.NewReader(raw), stages)
	if err != nil {
		return nil, err
	}
	return ioutil.ReadAll(r)
}

// encodeStreamBytes runs decoded through d's declared filter chain
// (reverse/encode order), the writer-side counterpart of
// decodeStreamBytes (spec.md §4.6, §5.2). flateCompression is the
// configured zlib level (config.Configuration.FlateCompression),
// threaded into any FlateDecode stage's Params so filter.flateCodec
// honors it instead of always compressing at the zlib default.
func encodeStreamBytes(d objects.Dict, decoded []byte, flateCompression int) ([]byte, error) {
	stages, err := filterStages(d)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return decoded, nil
	}
	for i := range stages {
		if stages[i].Name == filter.Flate {
			if stages[i].Params == nil {
				stages[i].Params = filter.Params{}
			}
			stages[i].Params["FlateCompression"] = flateCompression
		}
	}
	r, err := filter.EncodeChain(bytes.NewReader(decoded), stages)
	if err != nil {
		return nil, err
	}
	return ioutil.ReadAll(r)
}
