package reconcile

import (
	"errors"
	"fmt"

	"github.com/baby636/removeddit/internal/source"
)

// Kind classifies reconciliation failures.
type Kind int

const (
	// KindConfiguration is an invalid option or request, reported before
	// any fetch happens.
	KindConfiguration Kind = iota + 1
	// KindArchiveFetch is a failed archive page request. No further pages
	// are requested.
	KindArchiveFetch
	// KindLiveBatchFetch is a failed live batch lookup. Ingestion carries
	// on but the run resolves as errored.
	KindLiveBatchFetch
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindArchiveFetch:
		return "archive fetch"
	case KindLiveBatchFetch:
		return "live batch fetch"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a reconciliation failure with an optional help reference for
// the user.
type Error struct {
	Kind    Kind
	Err     error
	HelpRef string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HelpURL returns the help reference, if any.
func (e *Error) HelpURL() string { return e.HelpRef }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err, HelpRef: source.HelpURL(err)}
}

func configError(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Err: fmt.Errorf(format, args...)}
}

func isKind(err error, kind Kind) bool {
	// errors.As stops at the first *Error; joined errors need a walk.
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Kind == kind {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if isKind(inner, kind) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return isKind(x.Unwrap(), kind)
	}
	return false
}

// IsConfiguration reports whether err is an invalid-configuration error.
func IsConfiguration(err error) bool { return isKind(err, KindConfiguration) }

// IsArchiveFetch reports whether err includes an archive page failure.
func IsArchiveFetch(err error) bool { return isKind(err, KindArchiveFetch) }

// IsLiveBatchFetch reports whether err includes a live batch failure.
func IsLiveBatchFetch(err error) bool { return isKind(err, KindLiveBatchFetch) }

var errNoSource = errors.New("source is required")
