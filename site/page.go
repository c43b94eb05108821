package site

import (
	"html/template"

	"github.com/iedon/docnav-go/templatex"
)

// page is a rendered content-pane document.
type page struct {
	Source    string
	Route     string
	Section   string
	Title     string
	HTML      template.HTML
	Headings  []templatex.Heading
	Summary   string
	PlainText string
}
