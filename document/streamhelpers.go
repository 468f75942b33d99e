package document

import "github.com/gettalong/hexapdf-sub005/objects"

// NewStream builds a Stream object from decoded bytes, running them
// forward through dict's declared /Filter chain so Data.Inline always
// holds the final encoded bytes a writer can emit as-is (spec.md §4.6:
// "constructing a stream from in-memory content re-encodes it
// immediately rather than deferring to write time").
func (d *Document) NewStream(dict objects.Dict, decoded []byte) (objects.Stream, error) {
	encoded, err := encodeStreamBytes(dict, decoded, d.Config.FlateCompression)
	if err != nil {
		return objects.Stream{}, err
	}
	return objects.Stream{Dict: dict, Data: objects.StreamData{Inline: encoded}}, nil
}

// DecodedStreamBytes returns strm's fully decoded content for indirect
// object (oid, gen): its raw bytes (read off the backing source or
// Data.Inline), transparently decrypted if the document is encrypted,
// then run through its declared /Filter chain in decode order (spec.md
// §4.6's public "decode" entry point, used by tools that need a stream's
// plain content rather than its on-disk encoding; §4.9: "Transparently
// decrypt every ByteString and stream on access").
func (d *Document) DecodedStreamBytes(oid uint32, gen uint16, strm objects.Stream) ([]byte, error) {
	raw, err := d.rawStreamBytes(oid, gen, strm)
	if err != nil {
		return nil, err
	}
	return decodeStreamBytes(strm.Dict, raw)
}

// FinalStreamBytes returns strm's final on-disk bytes for object
// (oid, gen): its filter-encoded payload (decrypted from its prior
// on-disk encryption by rawStreamBytes, if any), re-encrypted for the
// current crypt.Handler (spec.md §4.9: "a stream's bytes are filtered,
// then encrypted; decoding on read reverses that in the opposite
// order").
func (d *Document) FinalStreamBytes(oid uint32, gen uint16, strm objects.Stream) ([]byte, error) {
	raw, err := d.rawStreamBytes(oid, gen, strm)
	if err != nil {
		return nil, err
	}
	if d.crypt == nil {
		return raw, nil
	}
	return d.crypt.Encrypt(oid, gen, raw)
}

// EncryptForWrite mirrors decryptIfNeeded for the write path: encrypts
// every ByteString reachable under value (but not a Stream's raw body,
// handled separately by FinalStreamBytes) with the per-object key for
// (oid, gen).
func (d *Document) EncryptForWrite(oid uint32, gen uint16, value objects.Object) objects.Object {
	if d.crypt == nil {
		return value
	}
	return encryptValue(d.crypt, oid, gen, value)
}
