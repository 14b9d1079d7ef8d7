package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/source"
	"github.com/baby636/removeddit/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <thread> <query>",
		Short: "Search saved comments by keyword",
		Long:  "Full-text search over original and edited comment bodies of a saved thread. Use \"-\" as the thread to search all threads.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	threadID := source.TrimKind(args[0])
	if threadID == "-" {
		threadID = ""
	}
	query := strings.Join(args[1:], " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		ThreadID: threadID,
		Query:    query,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
