package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutline = `Getting Started
* Install
* Quick Start
Advanced Topics
* Plugins
`

func TestParseTwoLevels(t *testing.T) {
	outline := Parse(sampleOutline)

	require.Len(t, outline.Sections, 2)
	first, second := outline.Sections[0], outline.Sections[1]

	assert.Equal(t, "Getting Started", first.Title)
	assert.Equal(t, "getting-started/", first.Prefix)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "getting-started/install.html", first.Entries[0].Href)
	assert.Equal(t, "getting-started/quick-start.html", first.Entries[1].Href)
	assert.Equal(t, "Quick Start", first.Entries[1].Title)
	assert.Equal(t, "quick-start.html", first.Entries[1].Filename)
	assert.Equal(t, "Getting Started", first.Entries[1].Section)

	assert.Equal(t, "Advanced Topics", second.Title)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, "advanced-topics/plugins.html", second.Entries[0].Href)
}

func TestParseDropsOrphanBullets(t *testing.T) {
	outline := Parse("* Orphan\nReal Section\n* Child")

	require.Len(t, outline.Sections, 1)
	assert.Equal(t, "Real Section", outline.Sections[0].Title)
	require.Len(t, outline.Sections[0].Entries, 1)
	assert.Equal(t, "Child", outline.Sections[0].Entries[0].Title)
	for _, entry := range outline.Entries() {
		assert.NotEqual(t, "Orphan", entry.Title)
	}
}

func TestParseIgnoresBlankLines(t *testing.T) {
	spaced := "\n\n   \nGetting Started\n\n* Install\n \t \n* Quick Start\n\nAdvanced Topics\n* Plugins\n\n\n"
	assert.Equal(t, Parse(sampleOutline), Parse(spaced))
}

func TestParseCleansWhitespace(t *testing.T) {
	outline := Parse("  Memory   Manager \r\n   *   Page  Tables\r\n")

	require.Len(t, outline.Sections, 1)
	assert.Equal(t, "Memory Manager", outline.Sections[0].Title)
	require.Len(t, outline.Sections[0].Entries, 1)
	assert.Equal(t, "Page Tables", outline.Sections[0].Entries[0].Title)
	assert.Equal(t, "memory-manager/page-tables.html", outline.Sections[0].Entries[0].Href)
}

func TestParseBareAsteriskIsSection(t *testing.T) {
	outline := Parse("*\n* Child")

	require.Len(t, outline.Sections, 1)
	assert.Equal(t, "*", outline.Sections[0].Title)
	assert.Equal(t, "-/child.html", outline.Sections[0].Entries[0].Href)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse("").Sections)
	assert.Empty(t, Parse("\n\n").Entries())
}

func TestStepDoesNotMutateInput(t *testing.T) {
	st := step(scanState{}, "Section")
	before := step(st, "* One")

	after := step(before, "* Two")
	require.Len(t, before.sections[0].Entries, 1)
	require.Len(t, after.sections[0].Entries, 2)

	branch := step(before, "* Other")
	assert.Equal(t, "Two", after.sections[0].Entries[1].Title)
	assert.Equal(t, "Other", branch.sections[0].Entries[1].Title)
}

func TestStepSectionUpdatesPrefix(t *testing.T) {
	st := step(scanState{}, "First Part")
	assert.Equal(t, "first-part/", st.prefix)

	st = step(st, "Second Part")
	assert.Equal(t, "second-part/", st.prefix)
	assert.Len(t, st.sections, 2)
}

func TestStepOrphanIsNoop(t *testing.T) {
	assert.Equal(t, scanState{}, step(scanState{}, "* Orphan"))
}
