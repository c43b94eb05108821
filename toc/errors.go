package toc

import "errors"

var (
	// ErrSourceMissing is returned when the page has no element carrying the outline text.
	ErrSourceMissing = errors.New("toc source element not found")
	// ErrBodyMissing is returned when the page has no body to attach the tree to.
	ErrBodyMissing = errors.New("page has no body element")
)
