package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-approvals/internal/config"
	"go-approvals/internal/database"
	"go-approvals/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "approvalctl",
	Short:         "Operate the approval workflow store",
	Long:          "Runs reminder cycles, provisions users and mints development tokens against the configured store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runtime is what every command needs: config, logger and an open store.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.Database
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := database.Open(openCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &runtime{cfg: cfg, logger: log, db: db}, nil
}

func (r *runtime) Close() {
	_ = r.logger.Sync()
	_ = r.db.Close(context.Background())
}
