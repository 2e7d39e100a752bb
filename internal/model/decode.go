package model

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DecodeName repairs team names that arrive byte-encoded from a platform.
// Yahoo in particular serializes names as Python-style byte literals
// (`b'Team \xe2\x80\x99s'`). The returned string is always valid UTF-8;
// undecodable bytes are interpreted as Latin-1.
func DecodeName(raw string) string {
	s := raw

	// Unwrap b'...' / b"..." literals.
	if len(s) >= 3 && (s[0] == 'b' || s[0] == 'B') && (s[1] == '\'' || s[1] == '"') && s[len(s)-1] == s[1] {
		s = unescapeByteLiteral(s[2 : len(s)-1])
	}

	if utf8.ValidString(s) {
		return s
	}

	// Not valid UTF-8: treat each byte as a Latin-1 code point.
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

// unescapeByteLiteral expands \xNN, \\, \' and \" escapes into raw bytes.
func unescapeByteLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'x':
			if i+3 < len(s) {
				if n, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					b.WriteByte(byte(n))
					i += 3
					continue
				}
			}
			b.WriteByte(s[i])
		case '\\', '\'', '"':
			b.WriteByte(s[i+1])
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
