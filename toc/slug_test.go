package toc

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"Hello World!":    "hello-world-",
		"Getting Started": "getting-started",
		"  Quick  Start ": "-quick-start-",
		"ARMv7 MMU":       "armv-mmu",
		"C++ & Go":        "c-go",
		"already-slug":    "already-slug",
		"123":             "-",
		"Über":            "-ber",
		"İx":              "i-x",
		"DİSK":            "di-sk",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestSlugifyAlphabetAndFixedPoint(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z-]*$`)
	inputs := []string{
		"Memory Manager", "guest/exceptions", "a--b", "Page Table (v2)", "!!!", "x", "\tTabs\tand spaces ",
	}
	for _, input := range inputs {
		slug := Slugify(input)
		assert.Regexp(t, valid, slug)
		assert.NotContains(t, slug, "--")
		assert.Equal(t, slug, Slugify(slug))
	}
}
