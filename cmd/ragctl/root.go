package main

import (
	"fmt"

	"docintel-be/internal/bootstrap"
	"docintel-be/internal/config"
	"docintel-be/internal/pkg/logger"
	"docintel-be/pkg/database"
	"docintel-be/pkg/rag/search"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	userFlag string

	// set by PersistentPreRunE, or directly in tests
	retriever search.Retriever
	container *bootstrap.Container
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Query a user's documents from the command line",
	Long: `ragctl runs the same retrieval as POST /api/rag/v1/query without going
through HTTP. It reads the server's .env and connects to its database.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "id of the user whose documents are searched (required)")
	_ = rootCmd.MarkPersistentFlagRequired("user")
}

func setup(cmd *cobra.Command, _ []string) error {
	if retriever != nil {
		return nil
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	c, err := newCLIContainer(db, cfg)
	if err != nil {
		return err
	}
	container = c
	retriever = c.Retriever
	return nil
}

// newCLIContainer keeps stdout free for command output and the MCP stream.
func newCLIContainer(db *gorm.DB, cfg *config.Config) (*bootstrap.Container, error) {
	return bootstrap.NewContainer(db, cfg, bootstrap.WithLogger(logger.NewConsoleLogger(cfg.App.LogLevel)))
}

func teardown(*cobra.Command, []string) error {
	if container != nil {
		container.Close()
	}
	return nil
}

func parseUser() (uuid.UUID, error) {
	id, err := uuid.Parse(userFlag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", userFlag, err)
	}
	return id, nil
}
