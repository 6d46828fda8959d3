package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnsupportedPage is returned for pages that post nothing, such as
	// error.ftl or info.ftl.
	ErrUnsupportedPage = errors.New("tui: page has no form to fill")
)
