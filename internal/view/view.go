// Package view flattens a reconciled snapshot into an ordered, indented
// comment tree for display.
package view

import (
	"fmt"
	"sort"

	"github.com/baby636/removeddit/internal/ledger"
)

// Sort orders sibling comments.
type Sort string

const (
	SortTop    Sort = "top"
	SortBottom Sort = "bottom"
	SortNew    Sort = "new"
	SortOld    Sort = "old"
)

// Filter selects which comments are shown.
type Filter string

const (
	FilterAll            Filter = "all"
	FilterRemovedDeleted Filter = "removed-deleted"
	FilterRemoved        Filter = "removed"
	FilterDeleted        Filter = "deleted"
)

// ParseSort validates a sort name. Empty means top.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(s); v {
	case "":
		return SortTop, nil
	case SortTop, SortBottom, SortNew, SortOld:
		return v, nil
	}
	return "", fmt.Errorf("unknown sort %q (want top, bottom, new or old)", s)
}

// ParseFilter validates a filter name. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch v := Filter(s); v {
	case "":
		return FilterAll, nil
	case FilterAll, FilterRemovedDeleted, FilterRemoved, FilterDeleted:
		return v, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, removed-deleted, removed or deleted)", s)
}

func (f Filter) match(e ledger.Entry) bool {
	switch f {
	case FilterRemovedDeleted:
		return e.Removed || e.Deleted
	case FilterRemoved:
		return e.Removed
	case FilterDeleted:
		return e.Deleted
	}
	return true
}

func (s Sort) less(a, b ledger.Entry) bool {
	switch s {
	case SortBottom:
		if a.Score != b.Score {
			return a.Score < b.Score
		}
	case SortNew:
		if a.CreatedUTC != b.CreatedUTC {
			return a.CreatedUTC > b.CreatedUTC
		}
	case SortOld:
		if a.CreatedUTC != b.CreatedUTC {
			return a.CreatedUTC < b.CreatedUTC
		}
	default:
		if a.Score != b.Score {
			return a.Score > b.Score
		}
	}
	return a.ID < b.ID
}

// Line is one displayed comment. Match is false for ancestors that are
// only shown to connect a matching reply to the tree.
type Line struct {
	ledger.Entry
	Depth int  `json:"depth"`
	Match bool `json:"match"`
}

// Build returns the thread in display order. With an empty root every
// top-level comment is a root; comments whose parent is unknown are shown
// at the top level too. With a root id only that subtree is returned.
func Build(snap ledger.Snapshot, threadID, root string, by Sort, f Filter) []Line {
	entries := snap.Entries()
	children := make(map[string][]ledger.Entry, len(entries))
	var roots []ledger.Entry
	for _, e := range entries {
		_, parentKnown := snap.Get(e.ParentID)
		if e.ParentID == "" || e.ParentID == threadID || !parentKnown {
			roots = append(roots, e)
			continue
		}
		children[e.ParentID] = append(children[e.ParentID], e)
	}

	if root != "" {
		e, ok := snap.Get(root)
		if !ok {
			return nil
		}
		roots = []ledger.Entry{e}
	}

	b := builder{children: children, by: by, filter: f, seen: make(map[string]bool)}
	b.sort(roots)
	for _, r := range roots {
		b.walk(r, 0)
	}
	return b.lines
}

type builder struct {
	children map[string][]ledger.Entry
	by       Sort
	filter   Filter
	seen     map[string]bool
	lines    []Line
}

func (b *builder) sort(es []ledger.Entry) {
	sort.SliceStable(es, func(i, j int) bool { return b.by.less(es[i], es[j]) })
}

// walk appends e and its kept descendants, reporting whether anything was
// appended.
func (b *builder) walk(e ledger.Entry, depth int) bool {
	if b.seen[e.ID] {
		return false
	}
	b.seen[e.ID] = true

	at := len(b.lines)
	match := b.filter.match(e)
	b.lines = append(b.lines, Line{Entry: e, Depth: depth, Match: match})

	kids := b.children[e.ID]
	b.sort(kids)
	kept := false
	for _, k := range kids {
		if b.walk(k, depth+1) {
			kept = true
		}
	}

	if !match && !kept {
		b.lines = b.lines[:at]
		return false
	}
	return true
}
