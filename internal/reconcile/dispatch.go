package reconcile

import (
	"context"

	"github.com/baby636/removeddit/internal/model"
)

type batchOutcome struct {
	ids       []string
	comments  []model.Comment
	err       error
	cancelled bool
}

// dispatchReady sends every near-full chunk to the live source. Once any
// fetch has failed it stops dispatching; ids stay queued and the ledger
// keeps their archive state.
func (r *run) dispatchReady(ctx context.Context) {
	for r.queue.HasNearFullChunk() && !r.failed() {
		r.dispatch(ctx, r.queue.DrainChunk())
	}
}

// dispatch starts one live lookup. The result comes back on r.results.
func (r *run) dispatch(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	r.inFlight++
	r.batches++
	r.g.Go(func() error {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			r.results <- batchOutcome{ids: ids, err: err, cancelled: true}
			return nil
		}
		comments, err := r.c.live.FetchBatch(ctx, ids)
		r.sem.Release(1)
		if err != nil && ctx.Err() != nil {
			r.results <- batchOutcome{ids: ids, err: ctx.Err(), cancelled: true}
			return nil
		}
		r.results <- batchOutcome{ids: ids, comments: comments, err: err}
		return nil
	})
}

// mergeBatch folds one live batch into the ledger. Ids the live source did
// not return keep whatever the archive contributed.
func (r *run) mergeBatch(out batchOutcome) {
	r.inFlight--
	if out.cancelled {
		r.cancel(out.err)
		return
	}
	if out.err != nil {
		r.log.Error().Err(out.err).Int("batch_size", len(out.ids)).Msg("live batch failed")
		if r.liveErr == nil {
			r.liveErr = out.err
		}
		return
	}

	for _, c := range out.comments {
		t, parents := r.led.MergeLive(r.req.ThreadID, c)
		r.tally = r.tally.Add(t)
		for _, p := range parents {
			r.queue.Push(p)
		}
	}
	r.log.Debug().
		Int("requested", len(out.ids)).
		Int("returned", len(out.comments)).
		Msg("live batch merged")
}
