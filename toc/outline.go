package toc

import (
	"slices"
	"strings"
)

// BulletPrefix marks a second-level outline line.
const BulletPrefix = "* "

// Entry is a second-level outline line rendered as a link into the content pane.
type Entry struct {
	Title    string `json:"title"`
	Section  string `json:"section"`
	Filename string `json:"filename"`
	Href     string `json:"href"`
}

// Section is a top-level outline line together with the entries listed under it.
type Section struct {
	Title   string  `json:"title"`
	Prefix  string  `json:"prefix"`
	Entries []Entry `json:"entries"`
}

// Outline is the parsed two-level table of contents.
type Outline struct {
	Sections []Section `json:"sections"`
}

// Entries returns every entry of the outline in document order.
func (o Outline) Entries() []Entry {
	var out []Entry
	for _, sec := range o.Sections {
		out = append(out, sec.Entries...)
	}
	return out
}

// scanState is the value carried between lines. step never mutates the state
// it receives.
type scanState struct {
	sections []Section
	prefix   string
}

// Parse folds the outline text into sections and entries. Bullet lines seen
// before the first section are dropped.
func Parse(text string) Outline {
	st := scanState{}
	for _, line := range strings.Split(text, "\n") {
		st = step(st, line)
	}
	return Outline{Sections: st.sections}
}

func step(st scanState, raw string) scanState {
	line := cleanLine(raw)
	if line == "" {
		return st
	}

	if title, ok := strings.CutPrefix(line, BulletPrefix); ok {
		if len(st.sections) == 0 {
			return st
		}
		sections := slices.Clone(st.sections)
		last := len(sections) - 1
		current := sections[last]
		filename := Slugify(title) + ".html"
		current.Entries = append(slices.Clip(current.Entries), Entry{
			Title:    title,
			Section:  current.Title,
			Filename: filename,
			Href:     st.prefix + filename,
		})
		sections[last] = current
		return scanState{sections: sections, prefix: st.prefix}
	}

	prefix := Slugify(line) + "/"
	return scanState{
		sections: append(slices.Clip(st.sections), Section{Title: line, Prefix: prefix}),
		prefix:   prefix,
	}
}

// cleanLine trims the line and collapses inner whitespace runs to one space.
func cleanLine(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
