package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baby636/removeddit/internal/config"
	"github.com/baby636/removeddit/internal/source"
)

func TestSources_HelpURLPerSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := &config.Config{}
	c.Archive.BaseURL = srv.URL
	c.Archive.HelpURL = "https://help.example/archive"
	c.Live.BaseURL = srv.URL
	c.Live.HelpURL = "https://help.example/live"
	c.Live.BatchSize = 10

	prevCfg, prevFixture := cfg, fixtureDir
	cfg, fixtureDir = c, ""
	t.Cleanup(func() { cfg, fixtureDir = prevCfg, prevFixture })

	archive, live, err := sources()
	require.NoError(t, err)

	_, err = archive.FetchPage(context.Background(), source.PageRequest{ThreadID: "abc", Limit: 5})
	require.Error(t, err)
	assert.Equal(t, "https://help.example/archive", source.HelpURL(err))

	_, err = live.FetchBatch(context.Background(), []string{"c1"})
	require.Error(t, err)
	assert.Equal(t, "https://help.example/live", source.HelpURL(err))
}
