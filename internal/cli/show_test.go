package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/view"
)

func TestWriteThread(t *testing.T) {
	post := &model.Post{ID: "t", Title: "A thread", Author: "op", Score: 3, NumComments: 2, Removed: true}
	lines := []view.Line{
		{Entry: ledger.Entry{Comment: model.Comment{ID: "a", Author: "x", Body: "hello", Score: 5}, Removed: true}},
		{Entry: ledger.Entry{Comment: model.Comment{ID: "b"}, Placeholder: true}, Depth: 1},
		{Entry: ledger.Entry{Comment: model.Comment{ID: "c", Author: "y", Body: "old", Score: -1}, EditedBody: "new"}, Depth: 2},
	}

	var buf bytes.Buffer
	writeThread(&buf, post, lines)

	want := "A thread\n" +
		"3 points, 2 comments, by op (removed)\n" +
		"\n" +
		"- [a] x, 5 points (removed)\n" +
		"  hello\n" +
		"  - [b] (not archived)\n" +
		"    - [c] y, -1 points (edited)\n" +
		"      old\n" +
		"      [edited to] new\n"
	assert.Equal(t, want, buf.String())
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "", flags(false, false, false))
	assert.Equal(t, " (removed, deleted, edited)", flags(true, true, true))
	assert.Equal(t, " (deleted)", flags(false, true, false))
}
