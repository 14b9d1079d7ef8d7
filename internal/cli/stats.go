package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/source"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats [thread]",
		Short: "Show database or thread statistics",
		Long:  "Without a thread, report totals over the whole database. With a thread, report its comment figures.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var out any
	if len(args) == 1 {
		threadID := source.TrimKind(args[0])
		led, th, err := s.LoadLedger(cmd.Context(), threadID)
		if err != nil {
			exitErr("load thread", err)
		}
		out = struct {
			ThreadID   string `json:"thread_id"`
			NextCursor int64  `json:"next_cursor"`
			Exhausted  bool   `json:"exhausted"`
			Runs       int    `json:"runs"`
			Comments   any    `json:"comments"`
		}{threadID, th.NextCursor, th.Exhausted, th.Runs, led.Stats()}
	} else {
		stats, err := s.Stats(cmd.Context(), getDBPath())
		if err != nil {
			exitErr("stats", err)
		}
		out = stats
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
