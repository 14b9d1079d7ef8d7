// Package ledger holds the de-duplicated comment set for one thread and
// the merge rules reconciling archive and live copies of a comment.
package ledger

import (
	"github.com/baby636/removeddit/internal/model"
)

// Entry is the ledger value for one comment id. A placeholder entry only
// records that the id exists because another comment names it as parent.
type Entry struct {
	model.Comment
	Placeholder bool `json:"placeholder,omitempty"`
	// EditedBody is the live body when it diverges from the archived one.
	EditedBody string `json:"edited_body,omitempty"`
	Removed    bool   `json:"removed,omitempty"`
	Deleted    bool   `json:"deleted,omitempty"`
}

// Ledger maps comment ids to merged entries. Entries only move forward
// (absent, placeholder, resolved) and are never removed.
//
// A Ledger is not safe for concurrent use. The reconcile coordinator is
// its only writer while a run is active.
type Ledger struct {
	entries map[string]*Entry
	// order is insertion order, kept so snapshots are deterministic.
	order []string
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]*Entry)}
}

// Restore rebuilds a ledger from previously snapshotted entries, keeping
// their order. Later duplicates of an id are ignored.
func Restore(entries []Entry) *Ledger {
	l := New()
	for i := range entries {
		e := entries[i]
		if _, ok := l.entries[e.ID]; ok || e.ID == "" {
			continue
		}
		l.put(&e)
	}
	return l
}

func (l *Ledger) put(e *Entry) {
	l.entries[e.ID] = e
	l.order = append(l.order, e.ID)
}

// Has reports whether id is known, as a placeholder or a record.
func (l *Ledger) Has(id string) bool {
	_, ok := l.entries[id]
	return ok
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id string) (Entry, bool) {
	e, ok := l.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of known ids.
func (l *Ledger) Len() int { return len(l.entries) }

// SetPlaceholder records id as known but unfetched. It returns false and
// changes nothing when id is already present.
func (l *Ledger) SetPlaceholder(id string) bool {
	if l.Has(id) {
		return false
	}
	l.put(&Entry{Comment: model.Comment{ID: id}, Placeholder: true})
	return true
}

// MergeArchive inserts an archive record for an id not yet in the
// ledger and reports whether it did. Archive records never overwrite an
// existing entry, placeholders included: a placeholder id is already
// queued for the live source, which resolves it.
func (l *Ledger) MergeArchive(c model.Comment) bool {
	if l.Has(c.ID) {
		return false
	}
	c.Origin = model.OriginArchive
	l.put(&Entry{Comment: c})
	return true
}

// Snapshot is an immutable copy of the ledger at one point in time.
type Snapshot struct {
	entries map[string]Entry
	order   []string
}

// Snapshot copies the current entries.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		entries: make(map[string]Entry, len(l.entries)),
		order:   make([]string, len(l.order)),
	}
	copy(s.order, l.order)
	for id, e := range l.entries {
		s.entries[id] = *e
	}
	return s
}

// Len returns the number of ids in the snapshot.
func (s Snapshot) Len() int { return len(s.entries) }

// Get returns the entry for id.
func (s Snapshot) Get(id string) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Entries returns every entry in insertion order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// Stats summarizes a ledger for display.
type Stats struct {
	Total        int `json:"total"`
	Placeholders int `json:"placeholders"`
	Removed      int `json:"removed"`
	Deleted      int `json:"deleted"`
	Edited       int `json:"edited"`
}

// Stats counts entries by state.
func (s Snapshot) Stats() Stats {
	st := Stats{Total: len(s.entries)}
	for _, e := range s.entries {
		switch {
		case e.Placeholder:
			st.Placeholders++
		case e.Removed:
			st.Removed++
		case e.Deleted:
			st.Deleted++
		}
		if e.EditedBody != "" {
			st.Edited++
		}
	}
	return st
}

// Stats counts the live ledger's entries by state.
func (l *Ledger) Stats() Stats {
	return l.Snapshot().Stats()
}
