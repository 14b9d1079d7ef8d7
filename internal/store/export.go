package store

import (
	"context"
	"errors"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
)

// Export is everything saved for one thread.
type Export struct {
	Thread   Thread         `json:"thread"`
	Post     *model.Post    `json:"post,omitempty"`
	Comments []ledger.Entry `json:"comments"`
	Runs     []Run          `json:"runs"`
}

// ExportThread returns the thread with its post, comments in saved order,
// and run history.
func (s *SQLiteStore) ExportThread(ctx context.Context, threadID string) (*Export, error) {
	th, err := s.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	out := &Export{Thread: *th}

	post, err := s.GetPost(ctx, threadID)
	switch {
	case err == nil:
		out.Post = post
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if out.Comments, err = s.entries(ctx, threadID); err != nil {
		return nil, err
	}
	if out.Runs, err = s.Runs(ctx, threadID); err != nil {
		return nil, err
	}
	return out, nil
}
