// Package decode turns uploaded bytes into text. Decoding never fails: content
// that is not valid UTF-8 is decoded lossily and flagged.
package decode

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Decode returns the text of b and whether the lossy fallback was used.
// A leading UTF-8 byte order mark is dropped. Invalid sequences are replaced
// with U+FFFD.
func Decode(b []byte) (string, bool) {
	b = bytes.TrimPrefix(b, bom)
	if utf8.Valid(b) {
		return string(b), false
	}

	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		// The UTF-8 decoder replaces rather than rejects; keep a safe fallback anyway
		return string(bytes.ToValidUTF8(b, []byte("�"))), true
	}
	return string(out), true
}
