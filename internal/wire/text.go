package wire

import (
	"encoding/base64"
	"errors"
)

// ErrNonASCII is returned by the text helpers when a byte outside the
// 7-bit US-ASCII range is encountered. Protocol text is strict
// US-ASCII; there is no fallback encoding.
var ErrNonASCII = errors.New("wire: non-ASCII byte in protocol text")

// EncodeASCII validates that s contains only 7-bit bytes and returns it
// as a byte slice suitable for writing to the wire.
func EncodeASCII(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, ErrNonASCII
		}
	}
	return []byte(s), nil
}

// DecodeASCII validates that b contains only 7-bit bytes and returns it
// as a string.
func DecodeASCII(b []byte) (string, error) {
	for _, c := range b {
		if c > 0x7f {
			return "", ErrNonASCII
		}
	}
	return string(b), nil
}

// B64Encode base64-encodes s using the standard alphabet with padding,
// matching the wire representation AUTH PLAIN/LOGIN challenges and
// responses use.
func B64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// B64Decode reverses B64Encode.
func B64Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
