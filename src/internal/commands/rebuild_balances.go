package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sente-books/ledger-service/src/internal/adapter/repository/implementations"
	"github.com/sente-books/ledger-service/src/internal/config"
)

func newRebuildBalancesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-balances",
		Short: "Recompute every cached account balance from ledger lines",
		Long: "Recomputes each account's cached balance from the lines of posted " +
			"and voided transactions. Voided transactions stay included because " +
			"their posted reversals already negate them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			db, err := implementations.Open(ctx, cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer func() { _ = db.Close() }()

			updated, err := implementations.NewAccountRepository(db).RebuildBalances(ctx)
			if err != nil {
				return fmt.Errorf("rebuilding balances: %w", err)
			}

			fmt.Printf("rebuilt balances for %d accounts\n", updated)
			return nil
		},
	}
}
