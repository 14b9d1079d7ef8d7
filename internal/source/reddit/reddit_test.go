package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
)

const infoBody = `{
  "kind": "Listing",
  "data": {
    "children": [
      {"kind": "t1", "data": {"id": "c1", "parent_id": "t3_abc", "link_id": "t3_abc", "author": "a",
        "body": "hello", "score": 5, "created_utc": 1600000000.0, "edited": false}},
      {"kind": "t1", "data": {"id": "c2", "parent_id": "t1_c1", "link_id": "t3_abc", "author": "[deleted]",
        "body": "[removed]", "score": -2, "created_utc": 1600000100, "edited": 1600000200.5}}
    ]
  }
}`

type fakeReddit struct {
	*httptest.Server
	tokens   atomic.Int32
	lastIDs  atomic.Value
	status   atomic.Int32
	tokenReq atomic.Value
}

func newFakeReddit(t *testing.T) *fakeReddit {
	t.Helper()
	f := &fakeReddit{}
	f.status.Store(http.StatusOK)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokens.Add(1)
		user, pass, _ := r.BasicAuth()
		_ = r.ParseForm()
		f.tokenReq.Store([]string{user, pass, r.PostForm.Get("grant_type"), r.PostForm.Get("device_id")})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok", "token_type": "bearer", "expires_in": 3600,
		})
	})
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		f.lastIDs.Store(r.URL.Query().Get("id"))
		if code := int(f.status.Load()); code != http.StatusOK {
			http.Error(w, "slow down", code)
			return
		}
		if auth := r.Header.Get("Authorization"); f.tokens.Load() > 0 && auth != "Bearer tok" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		if ua := r.UserAgent(); ua != "test-agent" {
			http.Error(w, "bad agent "+ua, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Query().Get("id"), "t3_") {
			_, _ = w.Write([]byte(`{"kind":"Listing","data":{"children":[{"kind":"t3","data":{
				"id":"abc","subreddit":"golang","title":"T","author":"op","selftext":"[removed]",
				"score":10,"num_comments":3,"created_utc":1599999999,"edited":false,
				"removed_by_category":"moderator"}}]}}`))
			return
		}
		_, _ = w.Write([]byte(infoBody))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeReddit, clientID string) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:   f.URL,
		TokenURL:  f.URL + "/api/v1/access_token",
		ClientID:  clientID,
		UserAgent: "test-agent",
		BatchSize: 3,
		HelpURL:   "https://help.example/limits",
	})
	require.NoError(t, err)
	return c
}

func TestFetchBatch_ParsesListing(t *testing.T) {
	f := newFakeReddit(t)
	c := newTestClient(t, f, "")

	got, err := c.FetchBatch(context.Background(), []string{"c1", "t1_c2"})
	require.NoError(t, err)
	assert.Equal(t, "t1_c1,t1_c2", f.lastIDs.Load())
	require.Len(t, got, 2)

	assert.Equal(t, model.Comment{
		ID: "c1", ParentID: "abc", ThreadID: "abc", Author: "a", Body: "hello",
		Score: 5, CreatedUTC: 1600000000, Origin: model.OriginLive,
	}, got[0])
	assert.Equal(t, "c1", got[1].ParentID)
	assert.Equal(t, int64(1600000200), got[1].Edited)
	assert.True(t, model.IsRemoved(got[1].Body))
}

func TestFetchBatch_RejectsOversizedBatch(t *testing.T) {
	c := newTestClient(t, newFakeReddit(t), "")
	_, err := c.FetchBatch(context.Background(), []string{"a", "b", "c", "d"})
	assert.ErrorContains(t, err, "exceeds limit 3")
	assert.Equal(t, 3, c.BatchSize())
}

func TestFetchBatch_InstalledClientToken(t *testing.T) {
	f := newFakeReddit(t)
	c := newTestClient(t, f, "my-client")

	_, err := c.FetchBatch(context.Background(), []string{"c1"})
	require.NoError(t, err)
	_, err = c.FetchBatch(context.Background(), []string{"c2"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.tokens.Load(), "token is reused")
	assert.Equal(t, []string{"my-client", "", InstalledClientGrant, DefaultDeviceID}, f.tokenReq.Load())
}

func TestFetchBatch_RateLimitCarriesHelp(t *testing.T) {
	f := newFakeReddit(t)
	f.status.Store(http.StatusTooManyRequests)
	c := newTestClient(t, f, "")

	_, err := c.FetchBatch(context.Background(), []string{"c1"})
	require.Error(t, err)
	assert.Equal(t, "https://help.example/limits", source.HelpURL(err))

	var serr *source.StatusError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.RateLimited())
}

func TestFetchBatch_ServerErrorHasNoHelp(t *testing.T) {
	f := newFakeReddit(t)
	f.status.Store(http.StatusBadGateway)
	c := newTestClient(t, f, "")

	_, err := c.FetchBatch(context.Background(), []string{"c1"})
	require.Error(t, err)
	assert.Empty(t, source.HelpURL(err))
}

func TestFetchPost(t *testing.T) {
	f := newFakeReddit(t)
	c := newTestClient(t, f, "")

	p, err := c.FetchPost(context.Background(), "t3_abc")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "t3_abc", f.lastIDs.Load())
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "moderator", p.RemovedByCategory)
	assert.Equal(t, 3, p.NumComments)
	assert.Zero(t, p.Edited)
}

func TestNew_RejectsBatchAboveLimit(t *testing.T) {
	_, err := New(Config{BatchSize: 101})
	assert.Error(t, err)
}
