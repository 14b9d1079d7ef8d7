package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/ledger"
	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/reconcile"
	"github.com/baby636/removeddit/internal/source"
	"github.com/baby636/removeddit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fetch <thread>",
		Short: "Reconcile a thread and save it",
		Long: "Fetch the newest comments of a thread from the archive, look up their live state, " +
			"and save the reconciled thread. Use \"more\" to continue with older comments.",
		Args: cobra.ExactArgs(1),
		Run:  runFetch,
	}

	cmd.Flags().IntP("count", "n", 0, "Archive comments to read (default: reconcile.default_comments)")

	RootCmd.AddCommand(cmd)
}

// runSummary is printed after every reconciliation run.
type runSummary struct {
	ThreadID   string       `json:"thread_id"`
	RunID      string       `json:"run_id,omitempty"`
	State      string       `json:"state"`
	Comments   int          `json:"comments"`
	NextCursor int64        `json:"next_cursor"`
	Exhausted  bool         `json:"exhausted"`
	Batches    int          `json:"batches"`
	Tally      ledger.Tally `json:"tally"`
	Stats      ledger.Stats `json:"stats"`
	Post       *model.Post  `json:"post,omitempty"`
}

func runFetch(cmd *cobra.Command, args []string) {
	threadID := source.TrimKind(args[0])
	n, _ := cmd.Flags().GetInt("count")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	archive, live, err := sources()
	if err != nil {
		exitErr("sources", err)
	}

	post, err := reconcile.NewPostReconciler(archive, live, logger).Reconcile(cmd.Context(), threadID)
	if err != nil {
		ev := logger.Warn().Err(err).Str("thread", threadID)
		if url := source.HelpURL(err); url != "" {
			ev = ev.Str("help", url)
		}
		ev.Msg("post reconciliation incomplete")
	}

	sum, err := reconcileThread(cmd.Context(), s, archive, live, "fetch", threadID, ledger.New(), 0, cfg.ConstrainCount(n))
	if post != nil && post.ID != "" {
		if perr := s.SavePost(cmd.Context(), post); perr != nil {
			exitErr("save post", perr)
		}
		sum.Post = post
	}
	printSummary(sum)
	if err != nil {
		exitErr("reconcile", err)
	}
}

// reconcileThread runs one window into led and saves whatever came back,
// including the partial ledger of a failed run.
func reconcileThread(ctx context.Context, s *store.SQLiteStore, archive source.Archive, live source.Live,
	kind, threadID string, led *ledger.Ledger, after int64, count int) (*runSummary, error) {
	coord, err := newCoordinator(archive, live)
	if err != nil {
		exitErr("configure", err)
	}

	res, runErr := coord.Run(ctx, led, reconcile.Request{ThreadID: threadID, Count: count, After: after})
	if res == nil {
		exitErr("reconcile", runErr)
	}

	run, err := s.SaveSnapshot(ctx, store.SaveParams{
		ThreadID:   threadID,
		Kind:       kind,
		Snapshot:   res.Snapshot,
		After:      res.After,
		LastCursor: res.LastCursor,
		NextCursor: res.NextCursor(),
		Exhausted:  res.Exhausted,
		Batches:    res.Batches,
		Tally:      res.Tally,
		State:      res.State.String(),
		Err:        runErr,
	})
	if err != nil {
		exitErr("save snapshot", err)
	}

	return &runSummary{
		ThreadID:   threadID,
		RunID:      run.ID,
		State:      res.State.String(),
		Comments:   res.Snapshot.Len(),
		NextCursor: res.NextCursor(),
		Exhausted:  res.Exhausted,
		Batches:    res.Batches,
		Tally:      res.Tally,
		Stats:      res.Snapshot.Stats(),
	}, runErr
}

func printSummary(sum *runSummary) {
	b, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(b))
}
