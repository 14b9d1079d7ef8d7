// Package store persists reconciled threads so a later process can show
// them or continue loading older comments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
)

// ErrNotFound is returned when a thread or post has not been saved.
var ErrNotFound = errors.New("not found")

// SaveParams holds the outcome of one reconciliation run.
type SaveParams struct {
	ThreadID string
	// Kind names the command that produced the run, e.g. "fetch".
	Kind       string
	Snapshot   ledger.Snapshot
	After      int64
	LastCursor int64
	// NextCursor is where the following "load more" run starts.
	NextCursor int64
	Exhausted  bool
	Batches    int
	Tally      ledger.Tally
	State      string
	Err        error
}

// Thread is the saved cursor state of a thread.
type Thread struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	NextCursor int64     `json:"next_cursor"`
	Exhausted  bool      `json:"exhausted"`
	Comments   int       `json:"comments"`
	Runs       int       `json:"runs"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Run is one saved reconciliation run.
type Run struct {
	ID         string       `json:"id"`
	ThreadID   string       `json:"thread_id"`
	Kind       string       `json:"kind"`
	After      int64        `json:"after"`
	LastCursor int64        `json:"last_cursor"`
	Exhausted  bool         `json:"exhausted"`
	Batches    int          `json:"batches"`
	Tally      ledger.Tally `json:"tally"`
	State      string       `json:"state"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Store defines thread persistence.
type Store interface {
	// SaveSnapshot upserts every entry of the snapshot and records the run.
	// Entries already saved but absent from the snapshot are kept.
	SaveSnapshot(ctx context.Context, p SaveParams) (*Run, error)

	// LoadLedger rebuilds the thread's ledger in saved order.
	LoadLedger(ctx context.Context, threadID string) (*ledger.Ledger, *Thread, error)

	// GetThread returns the saved cursor state.
	GetThread(ctx context.Context, threadID string) (*Thread, error)

	// ListThreads returns saved threads, most recently updated first.
	ListThreads(ctx context.Context, limit int) ([]Thread, error)

	// SavePost stores the reconciled post, replacing any earlier copy.
	SavePost(ctx context.Context, p *model.Post) error

	// GetPost returns the saved post.
	GetPost(ctx context.Context, id string) (*model.Post, error)

	// Close closes the store.
	Close() error
}
