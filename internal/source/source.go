// Package source defines the archive and live collaborators the
// reconciliation engine consumes.
package source

import (
	"context"

	"github.com/baby636/removeddit/internal/model"
)

// PageRequest asks the archive for up to Limit comments of a thread.
// Before bounds the page to comments created at or before that Unix time;
// zero means unbounded (newest first).
type PageRequest struct {
	ThreadID string
	Limit    int
	Before   int64
}

// Page is one archive page in reverse-chronological order.
type Page struct {
	Comments []model.Comment
	// Next is the Before value for the following page. It may repeat the
	// oldest second of this page; callers drop comments they already have.
	Next int64
	// Exhausted is set when the archive holds nothing older.
	Exhausted bool
}

// Archive streams historical comments, possibly including ones the live
// site has since removed or deleted.
type Archive interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

// Live returns current-state comments by id. BatchSize is the hard upper
// bound on len(ids) for one FetchBatch call. Ids the live source does not
// know are simply absent from the result.
type Live interface {
	FetchBatch(ctx context.Context, ids []string) ([]model.Comment, error)
	BatchSize() int
}

// PostFetcher looks up a thread's post. Implementations return (nil, nil)
// when the post is unknown to them.
type PostFetcher interface {
	FetchPost(ctx context.Context, id string) (*model.Post, error)
}

// Oldest returns the creation time of the oldest comment, or zero when
// there are none. As a Page.Next it repeats that second, so comments that
// share it with the page's last one are not skipped.
func Oldest(comments []model.Comment) int64 {
	var oldest int64
	for _, c := range comments {
		if oldest == 0 || (c.CreatedUTC > 0 && c.CreatedUTC < oldest) {
			oldest = c.CreatedUTC
		}
	}
	return oldest
}
