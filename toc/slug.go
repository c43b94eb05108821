package toc

import "strings"

// Full case mapping of U+0130: unicode.ToLower yields a bare "i", the full
// mapping keeps the dot as a combining mark.
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

// Slugify lowercases text and replaces every run of characters outside a-z
// with a single hyphen. Digits and punctuation are treated alike, so
// "Hello World!" becomes "hello-world-". Lowercasing uses the full Unicode
// mapping, so "İx" becomes "i-x".
func Slugify(text string) string {
	lowered := strings.ToLower(dottedCapitalI.Replace(text))
	var sb strings.Builder
	sb.Grow(len(lowered))
	inRun := false
	for _, r := range lowered {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
			inRun = false
			continue
		}
		if inRun {
			continue
		}
		sb.WriteByte('-')
		inRun = true
	}
	return sb.String()
}
