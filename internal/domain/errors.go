// Package domain provides domain models used across the application.
package domain

import "fmt"

// FetchError reports a failed HTTP fetch of the list feed or a detail
// page, either a transport failure or an unexpected status code.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports input that does not match the feed contract, either
// a payload that is not a JSON array or a malformed timestamp.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ScrapeError reports a detail page missing every marker extraction looks
// for. It is advisory; callers keep the event unenriched.
type ScrapeError struct {
	URL string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: no extractable fields", e.URL)
}
