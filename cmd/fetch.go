package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sims-analytics/simsmonitor/config"
	"github.com/sims-analytics/simsmonitor/internal/discovery"
	"github.com/sims-analytics/simsmonitor/internal/ingest"
	"github.com/sims-analytics/simsmonitor/internal/store"
)

func fetchCMD() *cobra.Command {
	var cfgPath string
	var fetch = &cobra.Command{
		Use:   "fetch",
		Short: "Run one ingestion cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			dsn, err := cfg.Databases.Postgres.DSN()
			if err != nil {
				return err
			}
			st, err := store.NewWithDSN(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.DB.Close()

			disc := discovery.NewClient(cfg.Discovery.Endpoint, cfg.Discovery.APIKey, cfg.Discovery.Timeout)
			runner := ingest.NewRunner(st, disc, cfg.Discovery.Query, cfg.Discovery.NumResults)

			stats, err := runner.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("fetched %d results: %d ingested, %d skipped, %d failed\n",
				stats.Total, stats.Ingested, stats.Skipped, stats.Failed)
			return nil
		},
	}
	fetch.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return fetch
}
