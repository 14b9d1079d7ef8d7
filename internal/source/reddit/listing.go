package reddit

import (
	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
)

type listing[T any] struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data T    `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type commentData struct {
	ID         string           `json:"id"`
	ParentID   string           `json:"parent_id"`
	LinkID     string           `json:"link_id"`
	Author     string           `json:"author"`
	Body       string           `json:"body"`
	Score      int              `json:"score"`
	CreatedUTC source.Timestamp `json:"created_utc"`
	Edited     source.Timestamp `json:"edited"`
}

func (d commentData) comment() model.Comment {
	return model.Comment{
		ID:         source.TrimKind(d.ID),
		ParentID:   source.TrimKind(d.ParentID),
		ThreadID:   source.TrimKind(d.LinkID),
		Author:     d.Author,
		Body:       d.Body,
		Score:      d.Score,
		CreatedUTC: int64(d.CreatedUTC),
		Edited:     int64(d.Edited),
		Origin:     model.OriginLive,
	}
}

type postData struct {
	ID                string           `json:"id"`
	Subreddit         string           `json:"subreddit"`
	Title             string           `json:"title"`
	Author            string           `json:"author"`
	Selftext          string           `json:"selftext"`
	Score             int              `json:"score"`
	NumComments       int              `json:"num_comments"`
	CreatedUTC        source.Timestamp `json:"created_utc"`
	Edited            source.Timestamp `json:"edited"`
	RemovedByCategory *string          `json:"removed_by_category"`
}

func (d postData) post() model.Post {
	p := model.Post{
		ID:          source.TrimKind(d.ID),
		Subreddit:   d.Subreddit,
		Title:       d.Title,
		Author:      d.Author,
		Selftext:    d.Selftext,
		Score:       d.Score,
		NumComments: d.NumComments,
		CreatedUTC:  int64(d.CreatedUTC),
		Edited:      int64(d.Edited),
	}
	if d.RemovedByCategory != nil {
		p.RemovedByCategory = *d.RemovedByCategory
	}
	return p
}
