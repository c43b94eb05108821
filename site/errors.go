package site

import "errors"

var (
	// ErrBuildInProgress is returned when a build is requested while another one runs.
	ErrBuildInProgress = errors.New("build already in progress")
	// ErrInvalidPath is returned when a request path fails validation.
	ErrInvalidPath = errors.New("invalid path")
)
