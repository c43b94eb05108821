package site

import (
	"time"

	"github.com/iedon/docnav-go/toc"
)

// Report summarizes a finished build.
type Report struct {
	Sections int `json:"sections"`
	Entries  int `json:"entries"`
	// Rendered counts entries produced from Markdown sources.
	Rendered int `json:"rendered"`
	// Static counts entries backed by a ready-made HTML file.
	Static  int         `json:"static"`
	Copied  int         `json:"copied"`
	Missing []string    `json:"missing"`
	BuiltAt time.Time   `json:"builtAt"`
	Outline toc.Outline `json:"outline"`
}

func newReport(outline toc.Outline) *Report {
	return &Report{
		Sections: len(outline.Sections),
		Entries:  len(outline.Entries()),
		Missing:  []string{},
		BuiltAt:  time.Now().UTC(),
		Outline:  outline,
	}
}
