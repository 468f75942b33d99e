package document

import (
	"github.com/gettalong/hexapdf-sub005/crypt"
	"github.com/gettalong/hexapdf-sub005/objects"
	"github.com/gettalong/hexapdf-sub005/pdferr"
)

// setupEncryption builds d.crypt from the current revision's /Encrypt
// dictionary and /ID[0], authenticating password against both the user
// and owner password hashes (spec.md §4.9: "opening an encrypted
// document... tries the supplied password as both").
func (d *Document) setupEncryption(password string) error {
	cur := d.revisions.Current()
	encVal, ok := cur.Trailer.Get("Encrypt")
	if !ok {
		return nil
	}
	enc, ok := encVal.(objects.Dict)
	if !ok {
		return pdferr.Encryptionf("/Encrypt is not a dictionary")
	}

	r := intField(enc, "R", 0)
	v := intField(enc, "V", 0)
	length := intField(enc, "Length", 40) / 8
	perm := int32(intField(enc, "P", 0))

	fileID := firstID(cur.Trailer)

	if r >= 5 {
		o48, err := hash48Field(enc, "O")
		if err != nil {
			return err
		}
		u48, err := hash48Field(enc, "U")
		if err != nil {
			return err
		}
		oe, err := bytes32Field(enc, "OE")
		if err != nil {
			return err
		}
		ue, err := bytes32Field(enc, "UE")
		if err != nil {
			return err
		}
		perms, err := bytes16Field(enc, "Perms")
		if err != nil {
			return err
		}
		h, ok := crypt.AuthenticateAES256(password, password, r, o48, u48, oe, ue, perms, perm)
		if !ok {
			return pdferr.Encryptionf("password does not authenticate against /Encrypt dictionary")
		}
		d.crypt = h
		return nil
	}

	o32, err := bytes32Field(enc, "O")
	if err != nil {
		return err
	}
	u32, err := bytes32Field(enc, "U")
	if err != nil {
		return err
	}
	encryptMetadata := true
	if bv, ok := enc.Get("EncryptMetadata"); ok {
		if b, ok := bv.(objects.Boolean); ok {
			encryptMetadata = bool(b)
		}
	}
	h, ok := crypt.AuthenticateRC4(password, password, r, length, o32, u32, perm, encryptMetadata, fileID)
	if !ok {
		return pdferr.Encryptionf("password does not authenticate against /Encrypt dictionary")
	}
	d.crypt = h
	return nil
}

func intField(d objects.Dict, name string, def int) int {
	v, ok := d.Get(objects.Name(name))
	if !ok {
		return def
	}
	i, ok := v.(objects.Integer)
	if !ok {
		return def
	}
	return int(i)
}

func firstID(trailer objects.Dict) []byte {
	v, ok := trailer.Get("ID")
	if !ok {
		return nil
	}
	arr, ok := v.(objects.Array)
	if !ok || len(arr) == 0 {
		return nil
	}
	bs, ok := arr[0].(objects.ByteString)
	if !ok {
		return nil
	}
	return []byte(bs)
}

func bytes32Field(d objects.Dict, name string) (out [32]byte, err error) {
	v, ok := d.Get(objects.Name(name))
	if !ok {
		return out, pdferr.Encryptionf("/Encrypt missing /%s", name)
	}
	bs, ok := v.(objects.ByteString)
	if !ok {
		return out, pdferr.Encryptionf("/Encrypt /%s is not a string", name)
	}
	n := copy(out[:], []byte(bs))
	_ = n
	return out, nil
}

func bytes16Field(d objects.Dict, name string) (out [16]byte, err error) {
	v, ok := d.Get(objects.Name(name))
	if !ok {
		return out, pdferr.Encryptionf("/Encrypt missing /%s", name)
	}
	bs, ok := v.(objects.ByteString)
	if !ok {
		return out, pdferr.Encryptionf("/Encrypt /%s is not a string", name)
	}
	copy(out[:], []byte(bs))
	return out, nil
}

func hash48Field(d objects.Dict, name string) (out [48]byte, err error) {
	v, ok := d.Get(objects.Name(name))
	if !ok {
		return out, pdferr.Encryptionf("/Encrypt missing /%s", name)
	}
	bs, ok := v.(objects.ByteString)
	if !ok {
		return out, pdferr.Encryptionf("/Encrypt /%s is not a string", name)
	}
	copy(out[:], []byte(bs))
	return out, nil
}
