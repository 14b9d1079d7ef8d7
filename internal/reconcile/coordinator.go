// Package reconcile rebuilds a thread's comment set from an archive that
// knows which comments existed and a live source that knows their current
// state.
//
// A run streams archive pages into a ledger, queues every new id (and any
// unseen parent id) for live lookup in near-full chunks, merges each live
// batch as it returns, and finally flushes whatever is left. All ledger and
// queue mutation happens on the goroutine calling Run; fetches run on their
// own goroutines and hand results back over channels.
package reconcile

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/baby636/removeddit/internal/chunker"
	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/source"
)

// Coordinator runs reconciliations against one archive and one live source.
type Coordinator struct {
	archive source.Archive
	live    source.Live
	opts    Options
}

// New validates opts against the live source's batch contract.
func New(archive source.Archive, live source.Live, opts Options) (*Coordinator, error) {
	if archive == nil || live == nil {
		return nil, &Error{Kind: KindConfiguration, Err: errNoSource}
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if n := live.BatchSize(); n <= 0 {
		return nil, configError("live batch size must be > 0, got %d", n)
	}
	return &Coordinator{archive: archive, live: live, opts: opts}, nil
}

// Request selects what one run reads from the archive.
type Request struct {
	ThreadID string
	// Count is the number of archive comments to read in this run.
	Count int
	// After bounds the run to comments created at or before this Unix
	// time. Zero starts from the newest comment.
	After int64
}

// Result is the outcome of a run. Snapshot is never mutated afterwards,
// even when the same ledger is extended by a later run.
type Result struct {
	ThreadID string
	Snapshot ledger.Snapshot
	After    int64
	// LastCursor is the creation time of the oldest archive comment seen,
	// zero when the archive returned nothing.
	LastCursor int64
	Exhausted  bool
	Tally      ledger.Tally
	State      State
	Batches    int
}

// NextCursor is the After value for a "load more" continuation. It
// includes the oldest second already seen, so comments sharing that second
// are still read; the ledger drops the repeats.
func (r *Result) NextCursor() int64 {
	if r.LastCursor == 0 {
		return r.After
	}
	return r.LastCursor
}

// Run reconciles one window of the thread into led.
//
// A run that hits an archive or live failure still waits for every
// outstanding fetch, then returns the partial result together with an
// error; callers may display the partial ledger. A run ended by ctx
// reports ctx's own error rather than a fetch failure. led may be reused by a
// later Run with an older After, which only adds entries. Concurrent runs
// on the same ledger are not supported.
func (c *Coordinator) Run(ctx context.Context, led *ledger.Ledger, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if led == nil {
		return nil, configError("ledger is required")
	}
	queue, err := chunker.New[string](c.live.BatchSize(), c.opts.Threshold)
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Err: err}
	}

	r := &run{
		c:           c,
		req:         req,
		led:         led,
		queue:       queue,
		log:         c.opts.Logger.With().Str("thread", req.ThreadID).Logger(),
		sem:         semaphore.NewWeighted(int64(c.opts.MaxInFlight)),
		pages:       make(chan source.Page, c.opts.PageBuffer),
		archiveDone: make(chan archiveOutcome, 1),
		results:     make(chan batchOutcome),
	}
	return r.execute(ctx)
}

func validateRequest(req Request) error {
	if req.ThreadID == "" {
		return configError("thread id is required")
	}
	if req.Count <= 0 {
		return configError("comment count must be > 0, got %d", req.Count)
	}
	if req.After < 0 {
		return configError("after cursor must be >= 0, got %d", req.After)
	}
	return nil
}

type archiveOutcome struct {
	exhausted bool
	err       error
	// cancelled is set when err comes from the caller's context.
	cancelled bool
}

// run is the state of one Coordinator.Run call. Only the goroutine in
// execute touches led, queue and the counters.
type run struct {
	c     *Coordinator
	req   Request
	led   *ledger.Ledger
	queue *chunker.Queue[string]
	log   zerolog.Logger
	sem   *semaphore.Weighted
	g     errgroup.Group

	pages       chan source.Page
	pagesClosed bool
	archiveDone chan archiveOutcome
	results     chan batchOutcome

	state      State
	inFlight   int
	batches    int
	tally      ledger.Tally
	oldest     int64
	exhausted  bool
	archiveErr error
	liveErr    error
	cancelErr  error
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	r.g.Go(func() error { return r.produce(ctx) })

	r.state = StateIngesting
	for !r.state.Terminal() {
		r.log.Debug().Str("state", r.state.String()).Msg("reconcile state")
		switch r.state {
		case StateIngesting:
			r.ingest(ctx)
			r.state = StateFlushingArchiveUnits
		case StateFlushingArchiveUnits:
			r.flush(ctx)
			r.log.Info().Int("count", r.tally.Archived).Msg("archive comments processed")
			r.state = StateDrainingFinalBatches
		case StateDrainingFinalBatches:
			r.drainAll(ctx)
			r.state = StateAwaitingLiveUnits
		case StateAwaitingLiveUnits:
			r.await()
			switch {
			case r.failed():
				r.state = StateErrored
			case !r.queue.IsEmpty():
				// Live-only records queued parents of their own.
				r.state = StateDrainingFinalBatches
			default:
				r.state = StateDone
			}
		}
	}

	// Every goroutine has delivered its outcome by now; Wait only reaps them.
	_ = r.g.Wait()
	r.log.Info().
		Int("count", r.tally.Live).
		Int("batches", r.batches).
		Str("state", r.state.String()).
		Msg("live comments processed")

	res := &Result{
		ThreadID:   r.req.ThreadID,
		Snapshot:   r.led.Snapshot(),
		After:      r.req.After,
		LastCursor: r.oldest,
		Exhausted:  r.exhausted,
		Tally:      r.tally,
		State:      r.state,
		Batches:    r.batches,
	}
	if r.state == StateErrored {
		return res, r.err()
	}
	return res, nil
}

func (r *run) failed() bool {
	return r.archiveErr != nil || r.liveErr != nil || r.cancelErr != nil
}

// cancel records that the caller's context ended the run. The context
// error is reported as is, not as a source failure.
func (r *run) cancel(err error) {
	if r.cancelErr == nil {
		r.cancelErr = err
		r.log.Debug().Err(err).Msg("reconcile cancelled")
	}
}

func (r *run) err() error {
	var errs []error
	if r.cancelErr != nil {
		errs = append(errs, r.cancelErr)
	}
	if r.archiveErr != nil {
		errs = append(errs, newError(KindArchiveFetch, r.archiveErr))
	}
	if r.liveErr != nil {
		errs = append(errs, newError(KindLiveBatchFetch, r.liveErr))
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// ingest merges pages and batch results until the archive producer reports
// it has stopped.
func (r *run) ingest(ctx context.Context) {
	for {
		select {
		case page, ok := <-r.pages:
			if !ok {
				r.pagesClosed = true
				r.pages = nil
				continue
			}
			r.mergePage(ctx, page)
		case out := <-r.results:
			r.mergeBatch(out)
		case out := <-r.archiveDone:
			r.exhausted = out.exhausted
			switch {
			case out.cancelled:
				r.cancel(out.err)
			case out.err != nil:
				r.archiveErr = out.err
				r.log.Error().Err(out.err).Msg("archive fetch failed")
			}
			return
		}
	}
}

// flush merges pages that were fetched before the producer stopped.
func (r *run) flush(ctx context.Context) {
	for !r.pagesClosed {
		select {
		case page, ok := <-r.pages:
			if !ok {
				r.pagesClosed = true
				continue
			}
			r.mergePage(ctx, page)
		case out := <-r.results:
			r.mergeBatch(out)
		}
	}
}

// drainAll dispatches every pending chunk, including a final partial one.
// After a failure the ids stay queued: the ledger already holds them and
// another lookup would not change the outcome.
func (r *run) drainAll(ctx context.Context) {
	for !r.queue.IsEmpty() && !r.failed() {
		r.dispatch(ctx, r.queue.DrainChunk())
	}
}

func (r *run) await() {
	for r.inFlight > 0 {
		r.mergeBatch(<-r.results)
	}
}
