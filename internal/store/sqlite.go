package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS threads (
		id          TEXT PRIMARY KEY,
		next_cursor INTEGER NOT NULL DEFAULT 0,
		exhausted   INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_threads_updated ON threads(updated_at DESC);

	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		thread_id   TEXT NOT NULL REFERENCES threads(id),
		kind        TEXT NOT NULL,
		after_cursor INTEGER NOT NULL,
		last_cursor INTEGER NOT NULL,
		exhausted   INTEGER NOT NULL,
		batches     INTEGER NOT NULL,
		tally       TEXT NOT NULL,
		state       TEXT NOT NULL,
		error       TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_thread ON runs(thread_id, id);

	CREATE TABLE IF NOT EXISTS comments (
		thread_id   TEXT NOT NULL REFERENCES threads(id),
		id          TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		parent_id   TEXT NOT NULL DEFAULT '',
		author      TEXT NOT NULL DEFAULT '',
		body        TEXT NOT NULL DEFAULT '',
		edited_body TEXT NOT NULL DEFAULT '',
		score       INTEGER NOT NULL DEFAULT 0,
		created_utc INTEGER NOT NULL DEFAULT 0,
		edited      INTEGER NOT NULL DEFAULT 0,
		origin      TEXT NOT NULL DEFAULT '',
		placeholder INTEGER NOT NULL DEFAULT 0,
		removed     INTEGER NOT NULL DEFAULT 0,
		deleted     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (thread_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_comments_seq ON comments(thread_id, seq);

	CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS comments_fts USING fts5(
		body,
		edited_body,
		content=comments,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers keep the index in sync with upserts.
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS comments_ai AFTER INSERT ON comments BEGIN
			INSERT INTO comments_fts(rowid, body, edited_body) VALUES (new.rowid, new.body, new.edited_body);
		END`,
		`CREATE TRIGGER IF NOT EXISTS comments_ad AFTER DELETE ON comments BEGIN
			INSERT INTO comments_fts(comments_fts, rowid, body, edited_body) VALUES('delete', old.rowid, old.body, old.edited_body);
		END`,
		`CREATE TRIGGER IF NOT EXISTS comments_au AFTER UPDATE ON comments BEGIN
			INSERT INTO comments_fts(comments_fts, rowid, body, edited_body) VALUES('delete', old.rowid, old.body, old.edited_body);
			INSERT INTO comments_fts(rowid, body, edited_body) VALUES (new.rowid, new.body, new.edited_body);
		END`,
	}
	for _, q := range triggers {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("create trigger: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, p SaveParams) (*Run, error) {
	if p.ThreadID == "" {
		return nil, fmt.Errorf("thread id is required")
	}
	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO threads (id, next_cursor, exhausted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   next_cursor = excluded.next_cursor,
		   exhausted = excluded.exhausted,
		   updated_at = excluded.updated_at`,
		p.ThreadID, p.NextCursor, p.Exhausted, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("upsert thread: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comments (thread_id, id, seq, parent_id, author, body, edited_body, score,
		                       created_utc, edited, origin, placeholder, removed, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(thread_id, id) DO UPDATE SET
		   parent_id = excluded.parent_id,
		   author = excluded.author,
		   body = excluded.body,
		   edited_body = excluded.edited_body,
		   score = excluded.score,
		   created_utc = excluded.created_utc,
		   edited = excluded.edited,
		   origin = excluded.origin,
		   placeholder = excluded.placeholder,
		   removed = excluded.removed,
		   deleted = excluded.deleted
		 WHERE comments.placeholder = 1 OR excluded.placeholder = 0`)
	if err != nil {
		return nil, fmt.Errorf("prepare comment upsert: %w", err)
	}
	defer stmt.Close()

	var base int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM comments WHERE thread_id = ?`, p.ThreadID).Scan(&base); err != nil {
		return nil, fmt.Errorf("next seq: %w", err)
	}
	for i, e := range p.Snapshot.Entries() {
		_, err := stmt.ExecContext(ctx,
			p.ThreadID, e.ID, base+i, e.ParentID, e.Author, e.Body, e.EditedBody, e.Score,
			e.CreatedUTC, e.Edited, string(e.Origin), e.Placeholder, e.Removed, e.Deleted)
		if err != nil {
			return nil, fmt.Errorf("upsert comment %s: %w", e.ID, err)
		}
	}

	tally, err := json.Marshal(p.Tally)
	if err != nil {
		return nil, fmt.Errorf("marshal tally: %w", err)
	}
	run := &Run{
		ID:         s.newID(now),
		ThreadID:   p.ThreadID,
		Kind:       p.Kind,
		After:      p.After,
		LastCursor: p.LastCursor,
		Exhausted:  p.Exhausted,
		Batches:    p.Batches,
		Tally:      p.Tally,
		State:      p.State,
		CreatedAt:  now,
	}
	var errText *string
	if p.Err != nil {
		msg := p.Err.Error()
		errText = &msg
		run.Error = msg
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, thread_id, kind, after_cursor, last_cursor, exhausted, batches, tally, state, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ThreadID, run.Kind, run.After, run.LastCursor, run.Exhausted, run.Batches,
		string(tally), run.State, errText, ts)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) LoadLedger(ctx context.Context, threadID string) (*ledger.Ledger, *Thread, error) {
	th, err := s.GetThread(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.entries(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	return ledger.Restore(entries), th, nil
}

// entries returns the saved comments of a thread in seq order.
func (s *SQLiteStore) entries(ctx context.Context, threadID string) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, author, body, edited_body, score, created_utc, edited,
		        origin, placeholder, removed, deleted
		 FROM comments WHERE thread_id = ? ORDER BY seq`, threadID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		e.ThreadID = threadID
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (ledger.Entry, error) {
	var e ledger.Entry
	var origin string
	err := sc.Scan(&e.ID, &e.ParentID, &e.Author, &e.Body, &e.EditedBody, &e.Score,
		&e.CreatedUTC, &e.Edited, &origin, &e.Placeholder, &e.Removed, &e.Deleted)
	if err != nil {
		return e, fmt.Errorf("scan comment: %w", err)
	}
	e.Origin = model.Origin(origin)
	return e, nil
}

func (s *SQLiteStore) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	row := s.db.QueryRowContext(ctx, threadQuery+` WHERE t.id = ?`, threadID)
	th, err := scanThread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}
	return th, err
}

func (s *SQLiteStore) ListThreads(ctx context.Context, limit int) ([]Thread, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, threadQuery+` ORDER BY t.updated_at DESC, t.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Thread
	for rows.Next() {
		th, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *th)
	}
	return out, rows.Err()
}

const threadQuery = `
	SELECT t.id, COALESCE(p.title, ''), t.next_cursor, t.exhausted, t.created_at, t.updated_at,
	       (SELECT COUNT(*) FROM comments c WHERE c.thread_id = t.id),
	       (SELECT COUNT(*) FROM runs r WHERE r.thread_id = t.id)
	FROM threads t
	LEFT JOIN posts p ON p.id = t.id`

func scanThread(sc scanner) (*Thread, error) {
	var th Thread
	var created, updated string
	err := sc.Scan(&th.ID, &th.Title, &th.NextCursor, &th.Exhausted, &created, &updated, &th.Comments, &th.Runs)
	if err != nil {
		return nil, err
	}
	th.CreatedAt, _ = time.Parse(time.RFC3339, created)
	th.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &th, nil
}

// Runs returns the thread's runs, oldest first.
func (s *SQLiteStore) Runs(ctx context.Context, threadID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, kind, after_cursor, last_cursor, exhausted, batches, tally, state, error, created_at
		 FROM runs WHERE thread_id = ? ORDER BY id`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var tally, created string
		var errText sql.NullString
		if err := rows.Scan(&r.ID, &r.ThreadID, &r.Kind, &r.After, &r.LastCursor, &r.Exhausted,
			&r.Batches, &tally, &r.State, &errText, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tally), &r.Tally); err != nil {
			return nil, fmt.Errorf("decode tally: %w", err)
		}
		r.Error = errText.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SavePost(ctx context.Context, p *model.Post) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("post id is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, data = excluded.data, updated_at = excluded.updated_at`,
		p.ID, p.Title, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert post: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM posts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var p model.Post
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
