// Package model defines the core comment and post data types.
package model

// Origin records which source produced the comment record held in a ledger.
type Origin string

const (
	OriginArchive      Origin = "archive"
	OriginLive         Origin = "live"
	OriginLiveRestored Origin = "live-restored"
)

// Comment is a single comment record as delivered by either source.
// ParentID is either the thread id or another comment id, without any
// kind prefix ("t1_", "t3_").
type Comment struct {
	ID         string `json:"id"`
	ParentID   string `json:"parent_id"`
	ThreadID   string `json:"link_id,omitempty"`
	Author     string `json:"author,omitempty"`
	Body       string `json:"body"`
	Score      int    `json:"score"`
	CreatedUTC int64  `json:"created_utc"`
	// Edited is the edit time in Unix seconds, zero when never edited.
	Edited int64  `json:"edited,omitempty"`
	Origin Origin `json:"source_origin,omitempty"`
}

// IsReply reports whether the comment replies to another comment rather
// than to the thread itself.
func (c Comment) IsReply(threadID string) bool {
	return c.ParentID != "" && c.ParentID != threadID
}

// Post is the submission a comment thread hangs off.
type Post struct {
	ID                string `json:"id"`
	Subreddit         string `json:"subreddit,omitempty"`
	Title             string `json:"title,omitempty"`
	Author            string `json:"author,omitempty"`
	Selftext          string `json:"selftext,omitempty"`
	EditedSelftext    string `json:"edited_selftext,omitempty"`
	Score             int    `json:"score"`
	NumComments       int    `json:"num_comments"`
	CreatedUTC        int64  `json:"created_utc,omitempty"`
	Edited            int64  `json:"edited,omitempty"`
	RemovedByCategory string `json:"removed_by_category,omitempty"`
	Removed           bool   `json:"removed,omitempty"`
	Deleted           bool   `json:"deleted,omitempty"`
}
