package table

import (
	"regexp"
	"strings"
)

// markerPattern matches a formatting marker: the section sign followed by a
// lowercase hex digit or another section sign.
var markerPattern = regexp.MustCompile(`§[0-9a-f§]`)

// bracketedMarkerPattern matches a marker protected by Escape.
var bracketedMarkerPattern = regexp.MustCompile(`\[(§[0-9a-f§])\]`)

var escaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

// Escape prepares a document value for the table: backslashes, newlines and
// carriage returns become two-character sequences and every formatting
// marker is wrapped in square brackets.
func Escape(s string) string {
	s = escaper.Replace(s)
	return markerPattern.ReplaceAllString(s, "[$0]")
}

// Unescape reverses Escape. Unknown backslash sequences are kept verbatim, so
// tables that only escaped newlines decode unchanged.
func Unescape(s string) string {
	s = bracketedMarkerPattern.ReplaceAllString(s, "$1")
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
