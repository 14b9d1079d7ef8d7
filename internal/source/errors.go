package source

import (
	"errors"
	"fmt"
)

// HelpError attaches a help reference, such as rate-limit guidance, to a
// collaborator failure.
type HelpError struct {
	Err error
	URL string
}

func (e *HelpError) Error() string {
	if e.URL == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (see %s)", e.Err, e.URL)
}

func (e *HelpError) Unwrap() error { return e.Err }

// HelpURL returns the help reference.
func (e *HelpError) HelpURL() string { return e.URL }

// WithHelp wraps err with a help reference. An empty url returns err.
func WithHelp(err error, url string) error {
	if err == nil || url == "" {
		return err
	}
	return &HelpError{Err: err, URL: url}
}

// HelpURL returns the help reference carried anywhere in err's chain.
func HelpURL(err error) string {
	var h interface{ HelpURL() string }
	if errors.As(err, &h) {
		return h.HelpURL()
	}
	return ""
}

// StatusError is a non-2xx HTTP response from a source.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// RateLimited reports whether the response signals throttling.
func (e *StatusError) RateLimited() bool { return e.Code == 429 }
