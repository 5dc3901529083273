// Package cryptoutils handles the rootfs key material used during boot.
//
// The host hands the key over the transport filesystem in a textual form of
// hyphen-separated two-digit hexadecimal groups:
//
//	c7-32-b3-ed-44-df-ec-7b-25-2d-9a-32-38-8d-58-61
//
// DecodeHyphenHex turns such text into bytes, rejecting any input whose
// group count differs from the expected length or whose groups are not
// exactly two hex digits. Decoding is case-insensitive; EncodeHyphenHex
// always produces the canonical lowercase form, so
//
//	EncodeHyphenHex(DecodeHyphenHex(s)) == strings.ToLower(s)
//
// for every valid s.
//
// # Key Material
//
// KeyMaterial is the fixed 16-byte secret consumed by the privileged mount.
// It never formats its bytes through fmt verbs; use Encode to obtain the
// textual form and Fingerprint for a value that is safe to log.
//
// No authenticity check is performed on the key. Whoever controls the
// transport filesystem controls the key.
package cryptoutils
