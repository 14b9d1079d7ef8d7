package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/source"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <thread>",
		Short: "Export a saved thread as JSON",
		Long:  "Export the saved post, every reconciled comment in saved order, and the run history.",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exp, err := s.ExportThread(cmd.Context(), source.TrimKind(args[0]))
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(exp, "", "  ")
	fmt.Println(string(b))
}
