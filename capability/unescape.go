package capability

import (
	"strings"
)

// Unescape decodes terminfo string notation: \E and \e for escape, ^X for
// control characters, \NNN octal, and the usual backslash escapes.
func Unescape(s string) string {
	if !strings.ContainsAny(s, `\^`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '^' && i+1 < len(s):
			i++
			if s[i] == '?' {
				sb.WriteByte(0x7f)
			} else {
				sb.WriteByte(s[i] & 0x1f)
			}
		case ch == '\\' && i+1 < len(s):
			i++
			switch c := s[i]; c {
			case 'E', 'e':
				sb.WriteByte(0x1b)
			case 'n', 'l':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'a':
				sb.WriteByte(0x07)
			case 's':
				sb.WriteByte(' ')
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v, n := 0, 0
				for n < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7' {
					v = v*8 + int(s[i]-'0')
					i++
					n++
				}
				i--
				sb.WriteByte(byte(v))
			default:
				// \\ \^ \, \: and anything unknown stand for themselves.
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// Escape is the inverse of Unescape, used when printing capabilities.
func Escape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == 0x1b:
			sb.WriteString(`\E`)
		case ch == '\\':
			sb.WriteString(`\\`)
		case ch == '^':
			sb.WriteString(`\^`)
		case ch == ',':
			sb.WriteString(`\,`)
		case ch == ':':
			sb.WriteString(`\:`)
		case ch == 0x7f:
			sb.WriteString("^?")
		case ch < 0x20:
			sb.WriteByte('^')
			sb.WriteByte(ch | 0x40)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}
