package hn

import "errors"

var (
	// ErrInvalidThreadURL indicates the URL does not point at the HN frontend.
	ErrInvalidThreadURL = errors.New("not a hacker news url")

	// ErrFetchFailed indicates a transport failure or non-success response.
	ErrFetchFailed = errors.New("failed to fetch page")

	// ErrMalformedPage indicates the page could not be parsed as HTML.
	ErrMalformedPage = errors.New("malformed page")
)
