package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baby636/removeddit/internal/model"
)

const thread = "t0"

func archived(id, parent, body string, score int) model.Comment {
	return model.Comment{ID: id, ParentID: parent, ThreadID: thread, Body: body, Score: score, CreatedUTC: 1000}
}

func TestSetPlaceholder(t *testing.T) {
	l := New()
	assert.True(t, l.SetPlaceholder("a"))
	assert.False(t, l.SetPlaceholder("a"), "second placeholder must be a no-op")

	e, ok := l.Get("a")
	require.True(t, ok)
	assert.True(t, e.Placeholder)
	assert.Equal(t, 1, l.Len())
}

func TestMergeArchive_DoesNotOverwrite(t *testing.T) {
	l := New()
	require.True(t, l.MergeArchive(archived("a", thread, "first", 1)))
	assert.False(t, l.MergeArchive(archived("a", thread, "second", 2)))

	e, _ := l.Get("a")
	assert.Equal(t, "first", e.Body)
	assert.Equal(t, model.OriginArchive, e.Origin)
}

func TestMergeArchive_LeavesPlaceholderForLive(t *testing.T) {
	l := New()
	l.SetPlaceholder("p")
	assert.False(t, l.MergeArchive(archived("p", thread, "late", 1)))

	e, _ := l.Get("p")
	assert.True(t, e.Placeholder)
}

func TestMergeLive_ScoreOverwritesArchive(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, "hello", 1))

	tally, parents := l.MergeLive(thread, archived("a", thread, "hello", 42))
	assert.Empty(t, parents)
	assert.Equal(t, Tally{Live: 1}, tally)

	e, _ := l.Get("a")
	assert.Equal(t, 42, e.Score)
	assert.Equal(t, "hello", e.Body)
	assert.Empty(t, e.EditedBody)
	assert.Equal(t, model.OriginArchive, e.Origin)
}

func TestMergeLive_RemovedKeepsArchiveBody(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, "original words", 3))

	tally, _ := l.MergeLive(thread, archived("a", thread, model.RemovedBody, 7))
	assert.Equal(t, 1, tally.Removed)

	e, _ := l.Get("a")
	assert.True(t, e.Removed)
	assert.False(t, e.Deleted)
	assert.Equal(t, "original words", e.Body)
	assert.Equal(t, 7, e.Score)
}

func TestMergeLive_Deleted(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, "original words", 3))

	tally, _ := l.MergeLive(thread, archived("a", thread, model.DeletedBody, 0))
	assert.Equal(t, 1, tally.Deleted)

	e, _ := l.Get("a")
	assert.True(t, e.Deleted)
	assert.False(t, e.Removed)
	assert.Equal(t, "original words", e.Body)
}

func TestMergeLive_EditedBodyRetainsOriginal(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, "before", 1))

	live := archived("a", thread, "after", 2)
	live.Edited = 2000
	tally, _ := l.MergeLive(thread, live)
	assert.Equal(t, 1, tally.Edited)

	e, _ := l.Get("a")
	assert.Equal(t, "before", e.Body)
	assert.Equal(t, "after", e.EditedBody)
	assert.Equal(t, int64(2000), e.Edited)
}

func TestMergeLive_ModeratorRestored(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, model.RemovedBody, 1))

	tally, _ := l.MergeLive(thread, archived("a", thread, "back again", 9))
	assert.Equal(t, 1, tally.Restored)

	e, _ := l.Get("a")
	assert.False(t, e.Removed)
	assert.Equal(t, "back again", e.Body)
	assert.Empty(t, e.EditedBody)
	assert.Equal(t, model.OriginLiveRestored, e.Origin)
}

func TestMergeLive_ArchiveTombstoneNotUsedForFlags(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, model.DeletedBody, 1))
	l.MergeLive(thread, archived("a", thread, "real", 1))

	e, _ := l.Get("a")
	assert.False(t, e.Deleted)
	assert.False(t, e.Removed)
}

func TestMergeLive_AdoptsPlaceholderAndQueuesParent(t *testing.T) {
	l := New()
	l.SetPlaceholder("p")

	tally, parents := l.MergeLive(thread, archived("p", "gp", "parent text", 5))
	assert.Equal(t, 1, tally.Adopted)
	assert.Equal(t, []string{"gp"}, parents)

	e, _ := l.Get("p")
	assert.False(t, e.Placeholder)
	assert.Equal(t, model.OriginLive, e.Origin)
	assert.Equal(t, "parent text", e.Body)

	gp, ok := l.Get("gp")
	require.True(t, ok)
	assert.True(t, gp.Placeholder)
}

func TestMergeLive_AdoptedTopLevelQueuesNothing(t *testing.T) {
	l := New()
	l.SetPlaceholder("p")
	_, parents := l.MergeLive(thread, archived("p", thread, model.RemovedBody, 5))
	assert.Empty(t, parents)

	e, _ := l.Get("p")
	assert.True(t, e.Removed)
}

func TestSnapshotIsIsolated(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, "x", 1))
	snap := l.Snapshot()

	l.MergeLive(thread, archived("a", thread, model.RemovedBody, 5))
	l.SetPlaceholder("b")

	e, _ := snap.Get("a")
	assert.False(t, e.Removed)
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 2, l.Len())
}

func TestRestoreKeepsOrderAndDropsDuplicates(t *testing.T) {
	l := New()
	l.MergeArchive(archived("b", thread, "x", 1))
	l.MergeArchive(archived("a", "b", "y", 1))
	entries := l.Snapshot().Entries()
	entries = append(entries, Entry{Comment: archived("a", thread, "dup", 1)})

	r := Restore(entries)
	got := r.Snapshot().Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "y", got[1].Body)
}

func TestStats(t *testing.T) {
	l := New()
	l.MergeArchive(archived("a", thread, "x", 1))
	l.MergeArchive(archived("b", thread, "x", 1))
	l.MergeArchive(archived("c", thread, "x", 1))
	l.SetPlaceholder("d")
	l.MergeLive(thread, archived("a", thread, model.RemovedBody, 1))
	l.MergeLive(thread, archived("b", thread, model.DeletedBody, 1))
	l.MergeLive(thread, archived("c", thread, "y", 1))

	assert.Equal(t, Stats{Total: 4, Placeholders: 1, Removed: 1, Deleted: 1, Edited: 1}, l.Stats())
}

func TestTallyAdd(t *testing.T) {
	a := Tally{Archived: 1, Live: 2, Removed: 1}
	b := Tally{Archived: 3, Deleted: 2, Edited: 1}
	assert.Equal(t, Tally{Archived: 4, Live: 2, Removed: 1, Deleted: 2, Edited: 1}, a.Add(b))
}
