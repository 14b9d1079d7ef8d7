// Package pushshift reads archived comments and posts from a
// Pushshift-style search API.
package pushshift

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
)

const (
	DefaultBaseURL  = "https://api.pushshift.io"
	DefaultPageSize = 100
	DefaultHelpURL  = "https://github.com/pushshift/api"
)

// Config configures a Client. Zero fields take the defaults.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond paces requests; zero disables pacing.
	RequestsPerSecond float64
	// HelpURL is attached to rate-limit failures.
	HelpURL string
}

// Client is the archive source. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	helpURL   string
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HelpURL == "" {
		cfg.HelpURL = DefaultHelpURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		base:      base,
		http:      &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		helpURL:   cfg.HelpURL,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

type comment struct {
	ID         string           `json:"id"`
	ParentID   string           `json:"parent_id"`
	LinkID     string           `json:"link_id"`
	Author     string           `json:"author"`
	Body       string           `json:"body"`
	Score      int              `json:"score"`
	CreatedUTC source.Timestamp `json:"created_utc"`
}

type submission struct {
	ID          string           `json:"id"`
	Subreddit   string           `json:"subreddit"`
	Title       string           `json:"title"`
	Author      string           `json:"author"`
	Selftext    string           `json:"selftext"`
	Score       int              `json:"score"`
	NumComments int              `json:"num_comments"`
	CreatedUTC  source.Timestamp `json:"created_utc"`
}

type response[T any] struct {
	Data []T `json:"data"`
}

// FetchPage returns up to req.Limit comments of the thread, newest first,
// created at or before req.Before.
func (c *Client) FetchPage(ctx context.Context, req source.PageRequest) (source.Page, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	q := url.Values{}
	q.Set("link_id", source.TrimKind(req.ThreadID))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort", "desc")
	q.Set("sort_type", "created_utc")
	if req.Before > 0 {
		// The API bound is exclusive.
		q.Set("before", strconv.FormatInt(req.Before+1, 10))
	}

	var resp response[comment]
	if err := c.get(ctx, "/reddit/comment/search", q, &resp); err != nil {
		return source.Page{}, fmt.Errorf("fetch comment page: %w", err)
	}

	page := source.Page{Comments: make([]model.Comment, 0, len(resp.Data))}
	for _, d := range resp.Data {
		page.Comments = append(page.Comments, model.Comment{
			ID:         source.TrimKind(d.ID),
			ParentID:   source.TrimKind(d.ParentID),
			ThreadID:   source.TrimKind(d.LinkID),
			Author:     d.Author,
			Body:       d.Body,
			Score:      d.Score,
			CreatedUTC: int64(d.CreatedUTC),
			Origin:     model.OriginArchive,
		})
	}
	page.Next = source.Oldest(page.Comments)
	page.Exhausted = len(page.Comments) < limit || page.Next == 0
	return page, nil
}

// FetchPost returns the archived post, or nil when the archive does not
// hold it.
func (c *Client) FetchPost(ctx context.Context, id string) (*model.Post, error) {
	q := url.Values{}
	q.Set("ids", source.TrimKind(id))

	var resp response[submission]
	if err := c.get(ctx, "/reddit/submission/search", q, &resp); err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	d := resp.Data[0]
	return &model.Post{
		ID:          source.TrimKind(d.ID),
		Subreddit:   d.Subreddit,
		Title:       d.Title,
		Author:      d.Author,
		Selftext:    d.Selftext,
		Score:       d.Score,
		NumComments: d.NumComments,
		CreatedUTC:  int64(d.CreatedUTC),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &source.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if serr.RateLimited() {
			return source.WithHelp(serr, c.helpURL)
		}
		return serr
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
