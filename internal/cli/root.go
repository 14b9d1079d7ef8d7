// Package cli implements the removeddit CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/baby636/removeddit/internal/config"
	"github.com/baby636/removeddit/internal/logging"
	"github.com/baby636/removeddit/internal/source"
	"github.com/baby636/removeddit/internal/store"
)

var (
	configPath string
	dbPath     string
	fixtureDir string
	logLevel   string

	cfg    *config.Config
	logger = zerolog.Nop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "removeddit",
	Short: "Recover removed and deleted comments of a thread",
	Long: "Reconciles a thread's comments from an archive with their current live state, " +
		"keeping the archived text of comments that were since removed or deleted. SQLite-backed, single binary.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./removeddit.toml or ~/.removeddit/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: db_path from config)")
	RootCmd.PersistentFlags().StringVar(&fixtureDir, "fixture", "", "Read archive and live data from a fixture directory instead of the network")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(os.Stderr, c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

func getDBPath() string {
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	if url := source.HelpURL(err); url != "" {
		fmt.Fprintf(os.Stderr, "help: %s\n", url)
	}
	os.Exit(1)
}
