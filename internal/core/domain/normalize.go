package domain

import "strings"

// Normalize приводит строку к нижнему регистру и оставляет только [a-z0-9].
// Буквы с диакритикой и прочие символы отбрасываются.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContainsNormalized проверяет вхождение needle в haystack после нормализации обеих строк
func ContainsNormalized(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
