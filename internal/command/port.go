package command

import "regexp"

// portPattern matches a numeric port delimiter: ":<digits>" followed by a path
// separator or the end of the string. Scheme colons never match.
var portPattern = regexp.MustCompile(`:(\d+)(?:/|$)`)

// ExtractPort returns the first port found in url.
func ExtractPort(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	m := portPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
