package render

import (
	"regexp"
	"strings"
)

var (
	bareID    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numeralID = regexp.MustCompile(`^-?(\.[0-9]+|[0-9]+(\.[0-9]*)?)$`)
)

// keywords are reserved in DOT regardless of case and must be quoted to be
// used as node names.
var keywords = map[string]bool{
	"node":     true,
	"edge":     true,
	"graph":    true,
	"digraph":  true,
	"subgraph": true,
	"strict":   true,
}

// dotID formats s as a DOT identifier. Plain names are written bare so
// existing graphs stay byte-for-byte stable; anything else is quoted.
func dotID(s string) string {
	if keywords[strings.ToLower(s)] {
		return quote(s)
	}
	if bareID.MatchString(s) || numeralID.MatchString(s) {
		return s
	}
	return quote(s)
}

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
