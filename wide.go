package odbc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeWide converts a Go string into UTF-16LE code units. Invalid UTF-8
// is replaced with U+FFFD.
func encodeWide(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: utf-16 encoding: %v", ErrMalformed, err)
	}
	return b, nil
}

// wideUnits reinterprets UTF-16LE bytes as code units; a trailing odd
// byte is dropped.
func wideUnits(b []byte) []uint16 {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = le.Uint16(b[2*i:])
	}
	return u
}

// DecodeWide converts UTF-16LE bytes, as written into a SQL_C_WCHAR
// buffer, back to a Go string. Decoding stops at the first NUL unit and
// unpaired surrogates decode to U+FFFD.
func DecodeWide(b []byte) string {
	for i, c := range wideUnits(b) {
		if c == 0 {
			b = b[:2*i]
			break
		}
	}
	b = b[:len(b)&^1]
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// EscapeWide renders wide-text bytes for display: each code unit that is
// a printable character in the 0..255 range appears as itself and every
// other unit as \XXXX (upper-case hex). Decoding stops at the first NUL.
func EscapeWide(b []byte) string {
	var sb strings.Builder
	for _, c := range wideUnits(b) {
		if c == 0 {
			break
		}
		if c <= 0xFF && printable(rune(c)) {
			sb.WriteRune(rune(c))
			continue
		}
		fmt.Fprintf(&sb, "\\%04X", c)
	}
	return sb.String()
}

func printable(r rune) bool {
	return (r >= 0x20 && r < 0x7F) || r >= 0xA0
}

// isHighSurrogate reports whether the unit opens a surrogate pair
func isHighSurrogate(c uint16) bool {
	return c >= 0xD800 && c <= 0xDBFF
}
