package document

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

var scriptCloser = regexp.MustCompile(`(?i)</(script)`)

// EscapeScript rewrites a script fragment so it cannot leave the script block
// it is embedded in. "</script" becomes "<\/script" (case preserved) and
// "<!--" becomes "<\!--"; both rewrites are no-ops for the JavaScript parser
// inside string, template and regular expression literals.
func EscapeScript(s string) string {
	s = scriptCloser.ReplaceAllString(s, `<\/$1`)
	return strings.ReplaceAll(s, "<!--", `<\!--`)
}

// jsString renders s as a JavaScript string literal safe to place in a script block
func jsString(s string) string {
	out, err := sonic.ConfigStd.MarshalToString(s)
	if err != nil {
		// strings always marshal
		return `""`
	}
	return out
}

// cssValue keeps a CSS value from escaping its declaration
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'':
			return -1
		}
		return r
	}, v)
}

// attrValue escapes a double-quoted attribute value
func attrValue(v string) string {
	return strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;").Replace(v)
}
