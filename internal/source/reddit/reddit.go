// Package reddit looks up the current state of comments and posts through
// the site's batched info endpoint.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
)

const (
	DefaultBaseURL   = "https://oauth.reddit.com"
	DefaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	DefaultBatchSize = 100
	DefaultUserAgent = "removeddit/1.0"
	DefaultHelpURL   = "https://github.com/reddit-archive/reddit/wiki/API"
)

// Config configures a Client. Zero fields take the defaults, except
// ClientID: without it requests go out unauthenticated.
type Config struct {
	BaseURL   string
	TokenURL  string
	ClientID  string
	DeviceID  string
	UserAgent string
	BatchSize int
	Timeout   time.Duration
	// RequestsPerSecond paces requests; zero disables pacing.
	RequestsPerSecond float64
	// HelpURL is attached to rate-limit and authorization failures.
	HelpURL string
}

// Client is the live source. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	batchSize int
	helpURL   string
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize < 0 || cfg.BatchSize > DefaultBatchSize {
		return nil, fmt.Errorf("batch size must be in [1, %d], got %d", DefaultBatchSize, cfg.BatchSize)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
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

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgent{next: http.DefaultTransport, value: cfg.UserAgent},
	}
	if cfg.ClientID != "" {
		httpClient = tokenClient(context.Background(), httpClient, cfg.TokenURL, cfg.ClientID, cfg.DeviceID)
	}

	c := &Client{
		base:      base,
		http:      httpClient,
		batchSize: cfg.BatchSize,
		helpURL:   cfg.HelpURL,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// BatchSize is the most ids one FetchBatch call accepts.
func (c *Client) BatchSize() int { return c.batchSize }

// FetchBatch returns the current state of the comments with the given
// ids. Unknown ids are absent from the result.
func (c *Client) FetchBatch(ctx context.Context, ids []string) ([]model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > c.batchSize {
		return nil, fmt.Errorf("batch of %d ids exceeds limit %d", len(ids), c.batchSize)
	}

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = "t1_" + source.TrimKind(id)
	}
	var l listing[commentData]
	if err := c.info(ctx, names, &l); err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	out := make([]model.Comment, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		out = append(out, child.Data.comment())
	}
	return out, nil
}

// FetchPost returns the live post, or nil when the site does not know it.
func (c *Client) FetchPost(ctx context.Context, id string) (*model.Post, error) {
	var l listing[postData]
	if err := c.info(ctx, []string{"t3_" + source.TrimKind(id)}, &l); err != nil {
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	for _, child := range l.Data.Children {
		if child.Kind == "t3" {
			p := child.Data.post()
			return &p, nil
		}
	}
	return nil, nil
}

func (c *Client) info(ctx context.Context, names []string, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := *c.base
	u.Path += "/api/info"
	q := url.Values{}
	q.Set("id", strings.Join(names, ","))
	q.Set("raw_json", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &source.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
			return source.WithHelp(serr, c.helpURL)
		}
		return serr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode listing: %w", err)
	}
	return nil
}
