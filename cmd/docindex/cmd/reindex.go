package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docindex/internal/app"
	logpkg "github.com/kailas-cloud/docindex/internal/logger"
)

func newReindexCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Push every stored document to the search index",
		Long: `Rebuild the search index from the relational store.

The index is not cleared first, so running reindex twice gives the same
result. Use it after the index backend missed writes or was replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, _, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if !a.Index.Configured() {
				return fmt.Errorf("index driver %q has no backend to reindex", cfg.Index.Driver)
			}
			if cfg.Index.MemoryOnly() {
				return fmt.Errorf("index driver %q has no data_dir: a memory-only index is rebuilt by the server at startup", cfg.Index.Driver)
			}

			start := time.Now()
			n, err := a.Documents.Reindex(ctx)
			if err != nil {
				return fmt.Errorf("reindex: %w", err)
			}
			logger.Info("Reindex finished", zap.Int("documents", n), zap.Duration("took", time.Since(start)))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents\n", n)
			return err
		},
	}
}
