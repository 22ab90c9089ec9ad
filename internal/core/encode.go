package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Encode serializes instructions in the canonical on-disk form: sorted keys,
// two space indent, "," and ": " separators, no trailing newline, and every
// non-ASCII character escaped as \uXXXX. Equal input always encodes to the
// same bytes.
func Encode(ins *Instructions) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ins); err != nil {
		return nil, err
	}
	return escapeNonASCII(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// escapeNonASCII rewrites DEL and multi-byte characters as JSON \u escapes.
// It is only applied to encoder output, where such characters can only occur
// inside string literals.
func escapeNonASCII(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))
	for len(b) > 0 {
		if b[0] == 0x7f {
			out.WriteString(`\u007f`)
			b = b[1:]
			continue
		}
		if b[0] < utf8.RuneSelf {
			out.WriteByte(b[0])
			b = b[1:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r > 0xFFFF {
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&out, `\u%04x`, r)
	}
	return out.Bytes()
}
