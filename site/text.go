package site

import (
	"fmt"
	"strings"
)

func summarize(plain string) string {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return ""
	}
	runes := []rune(plain)
	if len(runes) <= 200 {
		return plain
	}
	return string(runes[:200]) + "..."
}

func metaDescription(summary, fallback string) string {
	const limit = 160
	text := strings.TrimSpace(summary)
	if text == "" {
		text = strings.TrimSpace(fallback)
	}
	if text == "" {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "..."
}

func pageTitle(title, site string) string {
	title = strings.TrimSpace(title)
	site = strings.TrimSpace(site)
	switch {
	case title == "":
		return site
	case site == "":
		return title
	default:
		return fmt.Sprintf("%s - %s", title, site)
	}
}
