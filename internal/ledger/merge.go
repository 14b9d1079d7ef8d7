package ledger

import (
	"github.com/baby636/removeddit/internal/model"
)

// Tally counts what merges did. Each merge returns its own Tally and the
// caller sums them, so no counter is shared between merges.
type Tally struct {
	Archived int `json:"archived"`
	Live     int `json:"live"`
	// Adopted counts live records stored because the archive never
	// delivered the comment itself.
	Adopted  int `json:"adopted"`
	Restored int `json:"restored"`
	Edited   int `json:"edited"`
	Removed  int `json:"removed"`
	Deleted  int `json:"deleted"`
}

// Add returns the field-wise sum of t and o.
func (t Tally) Add(o Tally) Tally {
	return Tally{
		Archived: t.Archived + o.Archived,
		Live:     t.Live + o.Live,
		Adopted:  t.Adopted + o.Adopted,
		Restored: t.Restored + o.Restored,
		Edited:   t.Edited + o.Edited,
		Removed:  t.Removed + o.Removed,
		Deleted:  t.Deleted + o.Deleted,
	}
}

// MergeLive folds the live copy of a comment into the ledger.
//
// Live is authoritative for score and for removal state; the archive is
// authoritative for original content. Removed and Deleted are derived
// from the live body only. When the archived body is a removal tombstone
// but the live body is real, a moderator restored the comment and the
// live record replaces the archived one.
//
// A live record for a placeholder (or unknown) id is adopted as the entry.
// If its parent is not yet known, the parent becomes a placeholder and is
// returned so the caller can queue it for lookup.
func (l *Ledger) MergeLive(threadID string, c model.Comment) (Tally, []string) {
	t := Tally{Live: 1}
	var parents []string

	e, ok := l.entries[c.ID]
	adopted := !ok || e.Placeholder
	if adopted {
		c.Origin = model.OriginLive
		if !ok {
			e = &Entry{Comment: c}
			l.put(e)
		}
		e.Comment = c
		e.Placeholder = false
		t.Adopted++
		if c.IsReply(threadID) && l.SetPlaceholder(c.ParentID) {
			parents = append(parents, c.ParentID)
		}
	} else {
		e.Score = c.Score
	}

	switch {
	case model.IsRemoved(c.Body):
		e.Removed = true
		t.Removed++
	case model.IsDeleted(c.Body):
		e.Deleted = true
		t.Deleted++
	case adopted:
	case model.IsRemoved(e.Body):
		c.Origin = model.OriginLiveRestored
		*e = Entry{Comment: c}
		t.Restored++
	case e.Body != c.Body:
		e.EditedBody = c.Body
		e.Edited = c.Edited
		t.Edited++
	}

	return t, parents
}
