package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/model"
	"github.com/baby636/removeddit/internal/source"
	"github.com/baby636/removeddit/internal/store"
	"github.com/baby636/removeddit/internal/view"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <thread>",
		Short: "Print a saved thread as an indented tree",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	cmd.Flags().StringP("sort", "s", "top", "Sort: top, bottom, new or old")
	cmd.Flags().String("filter", "all", "Show: all, removed-deleted, removed or deleted")
	cmd.Flags().String("root", "", "Only show the subtree under this comment id")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	threadID := source.TrimKind(args[0])
	sortFlag, _ := cmd.Flags().GetString("sort")
	filterFlag, _ := cmd.Flags().GetString("filter")
	root, _ := cmd.Flags().GetString("root")

	by, err := view.ParseSort(sortFlag)
	if err != nil {
		exitErr("sort", err)
	}
	f, err := view.ParseFilter(filterFlag)
	if err != nil {
		exitErr("filter", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	led, _, err := s.LoadLedger(cmd.Context(), threadID)
	if err != nil {
		exitErr("load thread", err)
	}
	post, err := s.GetPost(cmd.Context(), threadID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		exitErr("load post", err)
	}

	lines := view.Build(led.Snapshot(), threadID, source.TrimKind(root), by, f)
	writeThread(os.Stdout, post, lines)
}

func writeThread(w io.Writer, post *model.Post, lines []view.Line) {
	if post != nil {
		fmt.Fprintf(w, "%s\n", post.Title)
		fmt.Fprintf(w, "%d points, %d comments, by %s%s\n", post.Score, post.NumComments, post.Author, flags(post.Removed, post.Deleted, post.EditedSelftext != ""))
		if post.Selftext != "" {
			fmt.Fprintf(w, "\n%s\n", post.Selftext)
		}
		if post.EditedSelftext != "" {
			fmt.Fprintf(w, "\n[edited to]\n%s\n", post.EditedSelftext)
		}
		fmt.Fprintln(w)
	}

	for _, l := range lines {
		indent := strings.Repeat("  ", l.Depth)
		if l.Placeholder {
			fmt.Fprintf(w, "%s- [%s] (not archived)\n", indent, l.ID)
			continue
		}
		when := ""
		if l.CreatedUTC > 0 {
			when = " " + time.Unix(l.CreatedUTC, 0).UTC().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s- [%s] %s, %d points%s%s\n", indent, l.ID, l.Author, l.Score, when,
			flags(l.Removed, l.Deleted, l.EditedBody != ""))
		for _, line := range strings.Split(l.Body, "\n") {
			fmt.Fprintf(w, "%s  %s\n", indent, line)
		}
		if l.EditedBody != "" {
			fmt.Fprintf(w, "%s  [edited to] %s\n", indent, strings.ReplaceAll(l.EditedBody, "\n", " "))
		}
	}
}

func flags(removed, deleted, edited bool) string {
	var out []string
	if removed {
		out = append(out, "removed")
	}
	if deleted {
		out = append(out, "deleted")
	}
	if edited {
		out = append(out, "edited")
	}
	if len(out) == 0 {
		return ""
	}
	return " (" + strings.Join(out, ", ") + ")"
}
