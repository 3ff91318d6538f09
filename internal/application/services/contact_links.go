package services

import (
	"net/url"
	"strings"
	"unicode"
)

// DialURL returns a tel: link for phone with every non-digit removed,
// e.g. "(212) 562-4141" becomes "tel:2125624141".
func DialURL(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "tel:" + digits
}

// MapsURL returns a maps: directions link for address
func MapsURL(address string) string {
	return "maps://?daddr=" + queryEscape(address)
}

// queryEscape percent-encodes s for use in a query component, leaving
// spaces as %20 rather than '+'.
func queryEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && isQueryAllowed(byte(r)) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(url.PathEscape(string(r)))
	}
	return b.String()
}

// isQueryAllowed reports whether c may appear unescaped in a URL query
func isQueryAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,;=:@/?", c) >= 0
}
