package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHeadingsAndTitle(t *testing.T) {
	src := []byte("---\ntitle: Page Tables\n---\n# Overview\n\nShadow maps.\n\n## Overview\n\n## Level 2 Tables\n")

	result, err := New(false).Render(src)
	require.NoError(t, err)

	assert.Equal(t, "Page Tables", result.Title)
	require.Len(t, result.Headings, 3)
	assert.Equal(t, Heading{ID: "overview", Text: "Overview", Level: 1}, result.Headings[0])
	assert.Equal(t, "overview-1", result.Headings[1].ID)
	assert.Equal(t, "level-2-tables", result.Headings[2].ID)
	assert.Contains(t, string(result.HTML), `<h1 id="overview">Overview</h1>`)
	assert.Contains(t, result.PlainText, "Shadow maps.")
	assert.NotContains(t, string(result.HTML), "title:")
}

func TestRenderWithoutFrontMatter(t *testing.T) {
	result, err := New(false).Render([]byte("plain text"))
	require.NoError(t, err)
	assert.Empty(t, result.Title)
	assert.Equal(t, "plain text", result.PlainText)
}

func TestRenderCodeBlockWrapper(t *testing.T) {
	result, err := New(false).Render([]byte("```c\nint x = 1;\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, string(result.HTML), `data-lang="c"`)
	assert.Contains(t, string(result.HTML), "</code></pre>")
}

func TestMinifyHTMLDisabled(t *testing.T) {
	raw := []byte("<p>  spaced   out  </p>")
	out, err := New(false).MinifyHTML(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestMinifyHTMLKeepsPreformatted(t *testing.T) {
	raw := []byte("<!DOCTYPE html>\n<html>\n  <head><title>x</title></head>\n  <body>\n    <pre id=\"tocText\">\nIntro\n* Why\n</pre>\n    <p>  a   b  </p>\n  </body>\n</html>\n")

	out, err := New(true).MinifyHTML(raw)
	require.NoError(t, err)

	assert.Less(t, len(out), len(raw))
	assert.Contains(t, string(out), "Intro\n* Why\n")
	assert.Contains(t, string(out), "</body>")
	assert.Contains(t, string(out), `id="tocText"`)
}

func TestAnchorSlug(t *testing.T) {
	assert.Equal(t, "section", anchorSlug("!!!"))
	assert.Equal(t, "arm-v7-notes", anchorSlug(" ARM v7 notes "))
}
