package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
)

// SearchParams holds parameters for searching saved comments.
type SearchParams struct {
	// ThreadID restricts the search to one thread when set.
	ThreadID string
	Query    string
	Limit    int
}

// SearchResult is a saved comment matching a query.
type SearchResult struct {
	ledger.Entry
	// Rank is the bm25 score; lower is a better match.
	Rank float64 `json:"rank"`
}

// Search runs a full-text match over original and edited bodies, best
// matches first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(p.Query)
	if match == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	where := []string{"comments_fts MATCH ?"}
	args := []any{match}
	if p.ThreadID != "" {
		where = append(where, "c.thread_id = ?")
		args = append(args, p.ThreadID)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT c.thread_id, c.id, c.parent_id, c.author, c.body, c.edited_body, c.score, c.created_utc,
		       c.edited, c.origin, c.placeholder, c.removed, c.deleted, bm25(comments_fts)
		FROM comments_fts
		JOIN comments c ON c.rowid = comments_fts.rowid
		WHERE %s
		ORDER BY bm25(comments_fts), c.seq
		LIMIT ?`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search comments: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var origin string
		err := rows.Scan(&r.ThreadID, &r.ID, &r.ParentID, &r.Author, &r.Body, &r.EditedBody, &r.Score,
			&r.CreatedUTC, &r.Edited, &origin, &r.Placeholder, &r.Removed, &r.Deleted, &r.Rank)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Origin = model.Origin(origin)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes each word so user input is matched literally rather
// than parsed as FTS5 syntax.
func ftsQuery(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}
