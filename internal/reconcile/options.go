package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/baby636/removeddit/internal/chunker"
)

const (
	DefaultPageSize    = 100
	DefaultMaxInFlight = 4
	DefaultPageBuffer  = 4
)

// Options tunes a Coordinator. Zero fields take the defaults.
type Options struct {
	// Threshold is the fill ratio at which a pending chunk of ids is
	// dispatched before the archive is exhausted.
	Threshold float64
	// PageSize caps the comments asked for in one archive page.
	PageSize int
	// MaxInFlight bounds concurrent live batch lookups.
	MaxInFlight int
	// PageBuffer is how many fetched archive pages may wait to be merged
	// while the next page is requested.
	PageBuffer int
	Logger     zerolog.Logger
}

// DefaultOptions returns the default tuning with logging disabled.
func DefaultOptions() Options {
	return Options{
		Threshold:   chunker.DefaultThreshold,
		PageSize:    DefaultPageSize,
		MaxInFlight: DefaultMaxInFlight,
		PageBuffer:  DefaultPageBuffer,
		Logger:      zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold == 0 {
		o.Threshold = d.Threshold
	}
	if o.PageSize == 0 {
		o.PageSize = d.PageSize
	}
	if o.MaxInFlight == 0 {
		o.MaxInFlight = d.MaxInFlight
	}
	if o.PageBuffer == 0 {
		o.PageBuffer = d.PageBuffer
	}
	return o
}

func (o Options) validate() error {
	if o.Threshold <= 0 || o.Threshold > 1 {
		return configError("dispatch threshold must be in (0, 1], got %g", o.Threshold)
	}
	if o.PageSize < 0 {
		return configError("page size must be > 0, got %d", o.PageSize)
	}
	if o.MaxInFlight < 0 {
		return configError("max in-flight must be > 0, got %d", o.MaxInFlight)
	}
	if o.PageBuffer < 0 {
		return configError("page buffer must be >= 0, got %d", o.PageBuffer)
	}
	return nil
}
