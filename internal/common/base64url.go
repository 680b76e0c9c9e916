package common

import (
	"encoding/base64"
	"strings"
)

// Encode takes a byte slice and returns a base64 URL-encoded string without
// padding. This encoding is URL and filename safe as specified in RFC 4648
// and is the form entity identifiers take as URL path segments.
func Encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode takes a base64 URL-encoded string and returns the decoded bytes.
// Padded and unpadded input is accepted.
// Returns an error if the input is not properly encoded
func Decode(encoded string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
}

// EncodeString is a convenience function that takes a string,
// converts it to bytes, and returns a base64 URL-encoded string
func EncodeString(data string) string {
	return Encode([]byte(data))
}

// DecodeString is a convenience function that decodes a base64 URL-encoded
// string and returns the decoded string
// Returns an error if the input is not properly encoded
func DecodeString(encoded string) (string, error) {
	decoded, err := Decode(encoded)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
