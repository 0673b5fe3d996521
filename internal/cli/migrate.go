package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"labor-quiz-service/internal/config"
	"labor-quiz-service/internal/infra/postgres"
	"labor-quiz-service/internal/logger"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	if cfg.Postgres.URL == "" {
		return errors.New("postgres url not configured")
	}
	return postgres.Migrate(ctx, cfg.Postgres.URL)
}
