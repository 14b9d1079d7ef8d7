package cli

import (
	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/source"
)

func init() {
	cmd := &cobra.Command{
		Use:   "more <thread>",
		Short: "Load older comments of a saved thread",
		Long:  "Continue a saved thread from where the last run stopped. Saved comments are kept and only extended.",
		Args:  cobra.ExactArgs(1),
		Run:   runMore,
	}

	cmd.Flags().IntP("count", "n", 0, "Archive comments to read (default: reconcile.default_comments)")

	RootCmd.AddCommand(cmd)
}

func runMore(cmd *cobra.Command, args []string) {
	threadID := source.TrimKind(args[0])
	n, _ := cmd.Flags().GetInt("count")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	led, th, err := s.LoadLedger(cmd.Context(), threadID)
	if err != nil {
		exitErr("load thread", err)
	}
	if th.Exhausted {
		printSummary(&runSummary{
			ThreadID:   threadID,
			State:      "exhausted",
			Comments:   led.Len(),
			NextCursor: th.NextCursor,
			Exhausted:  true,
			Stats:      led.Stats(),
		})
		return
	}

	archive, live, err := sources()
	if err != nil {
		exitErr("sources", err)
	}

	sum, err := reconcileThread(cmd.Context(), s, archive, live, "more", threadID, led, th.NextCursor, cfg.ConstrainCount(n))
	printSummary(sum)
	if err != nil {
		exitErr("reconcile", err)
	}
}
