package reconcile

import (
	"context"

	"github.com/baby636/removeddit/internal/source"
)

// produce requests archive pages until the requested count is read or the
// archive runs dry. It runs on its own goroutine so the next page is
// fetched while earlier pages are still being merged.
//
// Page cursors include the oldest second already read, so a limit that cuts
// through comments sharing one second does not lose the rest of them. Only
// ids this run has not read yet count toward the target. A page that brings
// nothing new moves the cursor past its oldest second.
func (r *run) produce(ctx context.Context) error {
	defer close(r.pages)

	pageSize := r.c.opts.PageSize
	before := r.req.After
	read := 0
	seen := make(map[string]struct{})
	exhausted := false
	for read < r.req.Count {
		limit := min(pageSize, r.req.Count-read)
		page, err := r.c.archive.FetchPage(ctx, source.PageRequest{
			ThreadID: r.req.ThreadID,
			Limit:    limit,
			Before:   before,
		})
		if err != nil {
			r.archiveDone <- archiveOutcome{err: err, cancelled: ctx.Err() != nil}
			return err
		}

		fresh := 0
		for _, c := range page.Comments {
			if _, ok := seen[c.ID]; !ok {
				seen[c.ID] = struct{}{}
				fresh++
			}
		}
		read += fresh

		if fresh > 0 {
			select {
			case r.pages <- page:
			case <-ctx.Done():
				r.archiveDone <- archiveOutcome{err: ctx.Err(), cancelled: true}
				return ctx.Err()
			}
		}

		// An empty page or a missing cursor would repeat the same request.
		if page.Exhausted || len(page.Comments) == 0 || page.Next <= 0 {
			exhausted = true
			break
		}
		next := page.Next
		if fresh == 0 {
			next--
		}
		if before > 0 && next > before {
			next = before
		}
		// Stop rather than repeat a request that already brought nothing.
		if next <= 0 || (fresh == 0 && next == before) {
			exhausted = true
			break
		}
		before = next
	}

	r.archiveDone <- archiveOutcome{exhausted: exhausted}
	return nil
}

// mergePage folds one archive page into the ledger in delivered order,
// queues new ids and unseen parents for live lookup, then dispatches every
// chunk that has filled up.
func (r *run) mergePage(ctx context.Context, page source.Page) {
	added := 0
	for _, c := range page.Comments {
		if c.CreatedUTC > 0 && (r.oldest == 0 || c.CreatedUTC < r.oldest) {
			r.oldest = c.CreatedUTC
		}
		if r.led.MergeArchive(c) {
			r.queue.Push(c.ID)
			added++
		}
		if c.IsReply(r.req.ThreadID) && r.led.SetPlaceholder(c.ParentID) {
			r.queue.Push(c.ParentID)
		}
	}
	r.tally.Archived += added
	r.log.Debug().
		Int("page", len(page.Comments)).
		Int("new", added).
		Int("pending", r.queue.Pending()).
		Msg("archive page merged")

	r.dispatchReady(ctx)
}
