package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
)

func snapshot(t *testing.T) ledger.Snapshot {
	t.Helper()
	mk := func(id, parent string, score int, created int64) model.Comment {
		return model.Comment{ID: id, ParentID: parent, ThreadID: "th", Score: score, CreatedUTC: created, Body: id}
	}
	l := ledger.New()
	for _, c := range []model.Comment{
		mk("a", "th", 5, 100),
		mk("b", "th", 9, 200),
		mk("a1", "a", 1, 150),
		mk("a2", "a", 3, 160),
		mk("a1x", "a1", 0, 170),
		mk("o", "gone", 2, 50),
	} {
		l.MergeArchive(c)
	}
	l.MergeLive("th", model.Comment{ID: "a1x", ParentID: "a1", ThreadID: "th", Body: model.RemovedBody})
	l.MergeLive("th", model.Comment{ID: "b", ParentID: "th", ThreadID: "th", Score: 9, Body: model.DeletedBody})
	return l.Snapshot()
}

func ids(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.ID
	}
	return out
}

func depths(lines []Line) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = l.Depth
	}
	return out
}

func TestBuild_SortTop(t *testing.T) {
	lines := Build(snapshot(t), "th", "", SortTop, FilterAll)
	assert.Equal(t, []string{"b", "a", "a2", "a1", "a1x", "o"}, ids(lines))
	assert.Equal(t, []int{0, 0, 1, 1, 2, 0}, depths(lines))
}

func TestBuild_SortOld(t *testing.T) {
	lines := Build(snapshot(t), "th", "", SortOld, FilterAll)
	assert.Equal(t, []string{"o", "a", "a1", "a1x", "a2", "b"}, ids(lines))
}

func TestBuild_SortNewAndBottom(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "a2", "a1", "a1x", "o"}, ids(Build(snapshot(t), "th", "", SortNew, FilterAll)))
	assert.Equal(t, []string{"o", "a", "a1", "a1x", "a2", "b"}, ids(Build(snapshot(t), "th", "", SortBottom, FilterAll)))
}

func TestBuild_FilterKeepsAncestors(t *testing.T) {
	lines := Build(snapshot(t), "th", "", SortTop, FilterRemoved)
	require.Equal(t, []string{"a", "a1", "a1x"}, ids(lines))
	assert.False(t, lines[0].Match)
	assert.False(t, lines[1].Match)
	assert.True(t, lines[2].Match)

	lines = Build(snapshot(t), "th", "", SortTop, FilterRemovedDeleted)
	assert.Equal(t, []string{"b", "a", "a1", "a1x"}, ids(lines))

	lines = Build(snapshot(t), "th", "", SortTop, FilterDeleted)
	assert.Equal(t, []string{"b"}, ids(lines))
}

func TestBuild_Root(t *testing.T) {
	lines := Build(snapshot(t), "th", "a1", SortTop, FilterAll)
	assert.Equal(t, []string{"a1", "a1x"}, ids(lines))
	assert.Equal(t, []int{0, 1}, depths(lines))

	assert.Nil(t, Build(snapshot(t), "th", "missing", SortTop, FilterAll))
}

func TestParse(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortTop, s)
	_, err = ParseSort("hot")
	assert.Error(t, err)

	f, err := ParseFilter("removed-deleted")
	require.NoError(t, err)
	assert.Equal(t, FilterRemovedDeleted, f)
	_, err = ParseFilter("spam")
	assert.Error(t, err)
}
