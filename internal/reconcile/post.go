package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
)

// ErrPostNotFound is returned when neither source knows the post.
var ErrPostNotFound = errors.New("post not found")

// PostReconciler merges the archived and live copies of a thread's post.
type PostReconciler struct {
	archive source.PostFetcher
	live    source.PostFetcher
	log     zerolog.Logger
}

// NewPostReconciler returns a reconciler over the two post sources.
func NewPostReconciler(archive, live source.PostFetcher, log zerolog.Logger) *PostReconciler {
	return &PostReconciler{archive: archive, live: live, log: log}
}

// Reconcile returns the best view of the post. The live copy is preferred;
// the archive supplies the body when the live one was removed, deleted or
// edited. A non-nil post may come back together with an error, in which
// case the post is the best that could be assembled.
func (p *PostReconciler) Reconcile(ctx context.Context, threadID string) (*model.Post, error) {
	if threadID == "" {
		return nil, configError("thread id is required")
	}

	live, liveErr := p.live.FetchPost(ctx, threadID)
	if liveErr == nil && live == nil {
		liveErr = ErrPostNotFound
	}
	if liveErr != nil {
		return p.archiveOnly(ctx, threadID, liveErr)
	}

	removed := live.RemovedByCategory != "" || model.IsRemoved(live.Selftext)
	deleted := model.IsDeleted(live.Selftext)
	edited := live.Edited != 0
	switch {
	case deleted:
		live.Deleted = true
	case removed:
		live.Removed = true
	case !edited:
		return live, nil
	}

	archived, err := p.archive.FetchPost(ctx, threadID)
	if err != nil {
		p.log.Warn().Err(err).Str("thread", threadID).Msg("archive post fetch failed")
		return live, newError(KindArchiveFetch, err)
	}
	if archived == nil {
		return live, nil
	}

	if deleted || removed {
		out := *archived
		out.Score = live.Score
		out.NumComments = live.NumComments
		out.Edited = live.Edited
		out.RemovedByCategory = live.RemovedByCategory
		out.Deleted = live.Deleted
		out.Removed = live.Removed
		return &out, nil
	}

	if live.Selftext != archived.Selftext && !model.IsRemoved(archived.Selftext) {
		live.EditedSelftext = live.Selftext
		live.Selftext = archived.Selftext
	}
	return live, nil
}

// archiveOnly serves the post from the archive after the live lookup
// failed. Whatever the archive holds is treated as removed from the site.
// A live failure other than an unknown post is still returned with the
// archived copy so callers can report it.
func (p *PostReconciler) archiveOnly(ctx context.Context, threadID string, liveErr error) (*model.Post, error) {
	p.log.Warn().Err(liveErr).Str("thread", threadID).Msg("live post unavailable")

	archived, err := p.archive.FetchPost(ctx, threadID)
	if err == nil && archived == nil {
		err = ErrPostNotFound
	}
	liveFailure := newError(KindLiveBatchFetch, fmt.Errorf("post %s: %w", threadID, liveErr))
	if err != nil {
		joined := errors.Join(
			liveFailure,
			newError(KindArchiveFetch, fmt.Errorf("post %s: %w", threadID, err)),
		)
		return &model.Post{ID: threadID}, joined
	}

	archived.Removed = true
	if errors.Is(liveErr, ErrPostNotFound) {
		return archived, nil
	}
	return archived, liveFailure
}
