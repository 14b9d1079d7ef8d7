package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string `json:"db_path"`
	DBSizeBytes  int64  `json:"db_size_bytes"`
	Threads      int    `json:"threads"`
	Runs         int    `json:"runs"`
	Comments     int    `json:"comments"`
	Placeholders int    `json:"placeholders"`
	Removed      int    `json:"removed"`
	Deleted      int    `json:"deleted"`
	Edited       int    `json:"edited"`
	Restored     int    `json:"restored"`
	Posts        int    `json:"posts"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		dst   *int
		query string
	}{
		{&st.Threads, `SELECT COUNT(*) FROM threads`},
		{&st.Runs, `SELECT COUNT(*) FROM runs`},
		{&st.Comments, `SELECT COUNT(*) FROM comments`},
		{&st.Placeholders, `SELECT COUNT(*) FROM comments WHERE placeholder = 1`},
		{&st.Removed, `SELECT COUNT(*) FROM comments WHERE removed = 1`},
		{&st.Deleted, `SELECT COUNT(*) FROM comments WHERE deleted = 1`},
		{&st.Edited, `SELECT COUNT(*) FROM comments WHERE edited_body != ''`},
		{&st.Restored, `SELECT COUNT(*) FROM comments WHERE origin = 'live-restored'`},
		{&st.Posts, `SELECT COUNT(*) FROM posts`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return st, err
		}
	}
	return st, nil
}
