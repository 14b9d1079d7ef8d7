// Package fixture serves archive and live data from memory or from JSON
// files, for offline runs and tests.
//
// A fixture directory holds:
//
//	archive.json       []model.Comment, the archive's copy of a thread
//	live.json          []model.Comment, current-state copies
//	archive_post.json  model.Post (optional)
//	live_post.json     model.Post (optional)
package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
)

// DefaultBatchSize mirrors the live API's id lookup limit.
const DefaultBatchSize = 100

// Archive serves pages newest first from a fixed comment set.
type Archive struct {
	comments []model.Comment
	post     *model.Post

	mu       sync.Mutex
	requests []source.PageRequest
}

// NewArchive returns an archive over comments. post may be nil.
func NewArchive(comments []model.Comment, post *model.Post) *Archive {
	sorted := make([]model.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedUTC > sorted[j].CreatedUTC
	})
	return &Archive{comments: sorted, post: post}
}

// FetchPage returns up to req.Limit comments of req.ThreadID created at or
// before req.Before.
func (a *Archive) FetchPage(ctx context.Context, req source.PageRequest) (source.Page, error) {
	if err := ctx.Err(); err != nil {
		return source.Page{}, err
	}
	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.mu.Unlock()

	var page source.Page
	more := false
	for _, c := range a.comments {
		if c.ThreadID != "" && c.ThreadID != req.ThreadID {
			continue
		}
		if req.Before > 0 && c.CreatedUTC > req.Before {
			continue
		}
		if len(page.Comments) == req.Limit {
			more = true
			break
		}
		page.Comments = append(page.Comments, c)
	}
	page.Next = source.Oldest(page.Comments)
	page.Exhausted = !more || page.Next == 0
	return page, nil
}

// Requests returns every page request served so far.
func (a *Archive) Requests() []source.PageRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]source.PageRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

// FetchPost returns the archived post, or nil when there is none.
func (a *Archive) FetchPost(ctx context.Context, id string) (*model.Post, error) {
	if a.post == nil || a.post.ID != id {
		return nil, nil
	}
	p := *a.post
	return &p, nil
}

// Live answers batch lookups from a fixed comment set.
type Live struct {
	byID map[string]model.Comment
	post *model.Post
	size int

	mu      sync.Mutex
	batches [][]string
}

// NewLive returns a live source over comments with the given batch limit.
// A non-positive size uses DefaultBatchSize.
func NewLive(comments []model.Comment, post *model.Post, size int) *Live {
	if size <= 0 {
		size = DefaultBatchSize
	}
	byID := make(map[string]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	return &Live{byID: byID, post: post, size: size}
}

// BatchSize returns the lookup limit.
func (l *Live) BatchSize() int { return l.size }

// FetchBatch returns the known comments among ids, in request order.
func (l *Live) FetchBatch(ctx context.Context, ids []string) ([]model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) > l.size {
		return nil, fmt.Errorf("batch of %d ids exceeds limit %d", len(ids), l.size)
	}
	l.mu.Lock()
	l.batches = append(l.batches, append([]string(nil), ids...))
	l.mu.Unlock()

	var out []model.Comment
	for _, id := range ids {
		if c, ok := l.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Batches returns every id batch requested so far.
func (l *Live) Batches() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.batches))
	copy(out, l.batches)
	return out
}

// FetchPost returns the live post, or nil when there is none.
func (l *Live) FetchPost(ctx context.Context, id string) (*model.Post, error) {
	if l.post == nil || l.post.ID != id {
		return nil, nil
	}
	p := *l.post
	return &p, nil
}

// Load reads a fixture directory. Missing post files are allowed;
// missing comment files are not.
func Load(dir string, batchSize int) (*Archive, *Live, error) {
	var archived, live []model.Comment
	if err := readJSON(filepath.Join(dir, "archive.json"), &archived); err != nil {
		return nil, nil, err
	}
	if err := readJSON(filepath.Join(dir, "live.json"), &live); err != nil {
		return nil, nil, err
	}

	archivePost, err := readPost(filepath.Join(dir, "archive_post.json"))
	if err != nil {
		return nil, nil, err
	}
	livePost, err := readPost(filepath.Join(dir, "live_post.json"))
	if err != nil {
		return nil, nil, err
	}
	return NewArchive(archived, archivePost), NewLive(live, livePost, batchSize), nil
}

func readPost(path string) (*model.Post, error) {
	var p model.Post
	if err := readJSON(path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse fixture %s: %w", filepath.Base(path), err)
	}
	return nil
}
