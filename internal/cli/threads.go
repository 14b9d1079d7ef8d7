package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List saved threads",
		Long:  "List saved threads with their comment count and where the next \"more\" run would start.",
		Run:   runThreads,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max threads")

	RootCmd.AddCommand(cmd)
}

func runThreads(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	threads, err := s.ListThreads(cmd.Context(), limit)
	if err != nil {
		exitErr("list threads", err)
	}
	if len(threads) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(threads, "", "  ")
	fmt.Println(string(b))
}
