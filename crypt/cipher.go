package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rc4"

	"github.com/gettalong/hexapdf-sub005/pdferr"
)

// Decrypt transparently decrypts a ByteString or stream body belonging to
// indirect object (oid, gen). Strings inside the /Encrypt dictionary itself
// must never be passed here (PDF32000 7.6.2).
func (h *Handler) Decrypt(oid uint32, gen uint16, data []byte) ([]byte, error) {
	if h == nil || h.Cipher == Identity {
		return data, nil
	}
	key := h.ObjectKey(oid, gen)
	switch h.Cipher {
	case RC4:
		return rc4Crypt(key, data)
	case AES128, AES256:
		return aesCBCDecryptWithIVPrefix(key, data)
	default:
		return nil, pdferr.Encryptionf("unknown cipher %d", h.Cipher)
	}
}

// Encrypt is Decrypt's inverse, used when writing a revision back out.
func (h *Handler) Encrypt(oid uint32, gen uint16, data []byte) ([]byte, error) {
	if h == nil || h.Cipher == Identity {
		return data, nil
	}
	key := h.ObjectKey(oid, gen)
	switch h.Cipher {
	case RC4:
		return rc4Crypt(key, data) // RC4 is its own inverse
	case AES128, AES256:
		return aesCBCEncryptWithIVPrefix(key, data)
	default:
		return nil, pdferr.Encryptionf("unknown cipher %d", h.Cipher)
	}
}

func rc4Crypt(key, data []byte) ([]byte, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}

// aesCBCEncryptWithIVPrefix implements PDF32000 7.6.2's "for the AES
// algorithm... a 16-byte IV shall be generated at random and placed as the
// first 16 bytes of the encrypted stream or string". PKCS#7 padding is
// applied since CBC requires whole blocks.
func aesCBCEncryptWithIVPrefix(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := cryptoRandRead(iv); err != nil {
		return nil, err
	}
	padded := pkcs7Pad(data, aes.BlockSize)
	out := make([]byte, len(iv)+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(iv):], padded)
	return out, nil
}

func aesCBCDecryptWithIVPrefix(key, data []byte) ([]byte, error) {
	if len(data) < aes.BlockSize {
		return nil, pdferr.Encryptionf("AES-encrypted data shorter than one block (%d bytes)", len(data))
	}
	iv := data[:aes.BlockSize]
	body := data[aes.BlockSize:]
	if len(body)%aes.BlockSize != 0 {
		return nil, pdferr.Encryptionf("AES-encrypted data not a multiple of the block size")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(body))
	if len(body) > 0 {
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)
	}
	return pkcs7Unpad(out)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > 16 {
		return nil, pdferr.Encryptionf("invalid PKCS#7 padding byte %d", padLen)
	}
	return data[:len(data)-padLen], nil
}
