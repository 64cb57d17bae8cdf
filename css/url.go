package css

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)url\(\s*(?:"([^"]*)"|'([^']*)'|([^)"'\s]*))\s*\)`)

// ExtractURL finds first url(...) in a declaration value. Returned offsets
// delimit the whole url(...) token.
func ExtractURL(value string) (url string, start, end int, ok bool) {
	m := urlPattern.FindStringSubmatchIndex(value)
	if m == nil {
		return "", 0, 0, false
	}
	for g := 1; g <= 3; g++ {
		if m[2*g] >= 0 {
			url = value[m[2*g]:m[2*g+1]]
			break
		}
	}
	return strings.TrimSpace(url), m[0], m[1], true
}
