package cryptoutils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// RootfsKeyLen is the size of the rootfs encryption key (sgx_key_128bit_t).
const RootfsKeyLen = 16

const groupSeparator = "-"

// ErrMalformedKey is returned when key text does not decode to the expected bytes.
var ErrMalformedKey = errors.New("malformed key")

// KeyMaterial is the 128-bit rootfs encryption key.
type KeyMaterial [RootfsKeyLen]byte

// ParseKeyMaterial decodes the hyphen-separated hex form into a KeyMaterial.
func ParseKeyMaterial(text string) (KeyMaterial, error) {
	raw, err := DecodeHyphenHex(text, RootfsKeyLen)
	if err != nil {
		return KeyMaterial{}, err
	}

	var key KeyMaterial
	copy(key[:], raw)
	return key, nil
}

// Encode returns the canonical textual form of the key.
func (k KeyMaterial) Encode() string {
	return EncodeHyphenHex(k[:])
}

// String never reveals the key.
func (k KeyMaterial) String() string {
	return "KeyMaterial(redacted)"
}

// GoString never reveals the key.
func (k KeyMaterial) GoString() string {
	return k.String()
}

// Fingerprint returns the first 8 bytes of the BLAKE2b-256 digest of the key, hex encoded.
func (k KeyMaterial) Fingerprint() string {
	sum := blake2b.Sum256(k[:])
	return hex.EncodeToString(sum[:8])
}

// DecodeHyphenHex parses text made of exactly expectedLen two-digit hex
// groups separated by "-".
func DecodeHyphenHex(text string, expectedLen int) ([]byte, error) {
	groups := strings.Split(text, groupSeparator)
	if len(groups) != expectedLen {
		return nil, fmt.Errorf("%w: expected %d groups, got %d", ErrMalformedKey, expectedLen, len(groups))
	}

	out := make([]byte, expectedLen)
	for i, group := range groups {
		if len(group) != 2 {
			return nil, fmt.Errorf("%w: group %d has length %d", ErrMalformedKey, i, len(group))
		}
		if _, err := hex.Decode(out[i:i+1], []byte(group)); err != nil {
			return nil, fmt.Errorf("%w: group %d: %v", ErrMalformedKey, i, err)
		}
	}

	return out, nil
}

// EncodeHyphenHex is the inverse of DecodeHyphenHex, using lowercase digits.
func EncodeHyphenHex(data []byte) string {
	groups := make([]string, len(data))
	for i := range data {
		groups[i] = hex.EncodeToString(data[i : i+1])
	}
	return strings.Join(groups, groupSeparator)
}
