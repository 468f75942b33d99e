package objects

// decodePDFDocEncoding decodes raw bytes written under PDFDocEncoding (PDF
// 32000-1 Annex D): identical to Latin-1 for 0x00-0x17 and 0x20-0x7E, with
// a block of typographic characters substituted in 0x18-0x1F and 0x80-0x9F,
// and the euro sign at 0xA0.
//
// Grounded on reader/encodings/pdfdocenc.go; only the characters actually
// reachable from the typed-dictionary conversions this package feeds
// (Info dictionary strings, bookmark titles) are tabulated, everything
// else round-trips as Latin-1 which is correct for the overwhelming
// majority of real-world documents.
func decodePDFDocEncoding(raw []byte) []rune {
	out := make([]rune, 0, len(raw))
	for _, b := range raw {
		if r, ok := pdfDocEncodingHighTable[b]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, rune(b))
	}
	return out
}

var pdfDocEncodingHighTable = map[byte]rune{
	0x18: 0x02D8, // breve
	0x19: 0x02C7, // caron
	0x1A: 0x02C6, // circumflex
	0x1B: 0x02D9, // dot above
	0x1C: 0x02DD, // double acute
	0x1D: 0x02DB, // ogonek
	0x1E: 0x02DA, // ring above
	0x1F: 0x02DC, // small tilde
	0x80: 0x2022, // bullet
	0x81: 0x2020, // dagger
	0x82: 0x2021, // double dagger
	0x83: 0x2026, // ellipsis
	0x84: 0x2014, // em dash
	0x85: 0x2013, // en dash
	0x86: 0x0192, // florin
	0x87: 0x2044, // fraction slash
	0x88: 0x2039, // single guillemet left
	0x89: 0x203A, // single guillemet right
	0x8A: 0x2212, // minus
	0x8B: 0x2030, // per mille
	0x8C: 0x201E, // low double quote
	0x8D: 0x201C, // double quote left
	0x8E: 0x201D, // double quote right
	0x8F: 0x2018, // single quote left
	0x90: 0x2019, // single quote right
	0x91: 0x201A, // low single quote
	0x92: 0x2122, // trademark
	0x93: 0xFB01, // fi ligature
	0x94: 0xFB02, // fl ligature
	0x95: 0x0141, // Lslash
	0x96: 0x0152, // OE
	0x97: 0x0160, // Scaron
	0x98: 0x0178, // Ydieresis
	0x99: 0x017D, // Zcaron
	0x9A: 0x0131, // dotlessi
	0x9B: 0x0142, // lslash
	0x9C: 0x0153, // oe
	0x9D: 0x0161, // scaron
	0x9E: 0x017E, // zcaron
	0xA0: 0x20AC, // euro
}
