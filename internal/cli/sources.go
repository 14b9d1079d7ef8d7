package cli

import (
	"fmt"

	"github.com/baby636/removeddit/internal/reconcile"
	"github.com/baby636/removeddit/internal/source"
	"github.com/baby636/removeddit/internal/source/fixture"
	"github.com/baby636/removeddit/internal/source/pushshift"
	"github.com/baby636/removeddit/internal/source/reddit"
)

type archiveSource interface {
	source.Archive
	source.PostFetcher
}

type liveSource interface {
	source.Live
	source.PostFetcher
}

// sources returns the archive and live collaborators: fixture files when
// --fixture is set, the HTTP APIs otherwise.
func sources() (archiveSource, liveSource, error) {
	if fixtureDir != "" {
		a, l, err := fixture.Load(fixtureDir, cfg.Live.BatchSize)
		if err != nil {
			return nil, nil, fmt.Errorf("load fixture: %w", err)
		}
		return a, l, nil
	}

	a, err := pushshift.New(pushshift.Config{
		BaseURL:           cfg.Archive.BaseURL,
		UserAgent:         cfg.Live.UserAgent,
		Timeout:           cfg.Archive.Timeout,
		RequestsPerSecond: cfg.Archive.RequestsPerSecond,
		HelpURL:           cfg.Archive.HelpURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("archive client: %w", err)
	}
	l, err := reddit.New(reddit.Config{
		BaseURL:           cfg.Live.BaseURL,
		TokenURL:          cfg.Live.TokenURL,
		ClientID:          cfg.Live.ClientID,
		UserAgent:         cfg.Live.UserAgent,
		BatchSize:         cfg.Live.BatchSize,
		Timeout:           cfg.Live.Timeout,
		RequestsPerSecond: cfg.Live.RequestsPerSecond,
		HelpURL:           cfg.Live.HelpURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("live client: %w", err)
	}
	return a, l, nil
}

func newCoordinator(a source.Archive, l source.Live) (*reconcile.Coordinator, error) {
	return reconcile.New(a, l, reconcile.Options{
		Threshold:   cfg.Reconcile.DispatchThreshold,
		PageSize:    cfg.Archive.PageSize,
		MaxInFlight: cfg.Reconcile.MaxInFlight,
		PageBuffer:  cfg.Reconcile.PageBuffer,
		Logger:      logger,
	})
}
