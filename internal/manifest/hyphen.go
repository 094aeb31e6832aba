package manifest

import (
	"regexp"
	"strings"
	"unicode"
)

var moduleIDPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// ValidModuleID reports whether id is a CamelCase module identifier.
func ValidModuleID(id string) bool {
	return moduleIDPattern.MatchString(id)
}

// Hyphenate converts a CamelCase identifier to its hyphenated lower-case
// form: "MyModule" → "my-module", "CRMTools" → "crm-tools".
func Hyphenate(id string) string {
	runes := []rune(id)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
