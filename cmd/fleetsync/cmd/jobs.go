package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hangarworks/fleetsync/internal/jobs"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one vehicle reconciliation pass",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), func(ctx context.Context, a *app) (*jobs.Result, error) {
			return a.service.RunSync(ctx)
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run the retention and cleanup job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), func(ctx context.Context, a *app) (*jobs.Result, error) {
			return a.service.RunCleanup(ctx)
		})
	},
}

var rumorsCmd = &cobra.Command{
	Use:   "rumors",
	Short: "Run the rumor mining pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), func(ctx context.Context, a *app) (*jobs.Result, error) {
			return a.service.RunRumors(ctx)
		})
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Provider cache operations",
}

var cacheProvider string

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild one provider's full-catalog snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), func(ctx context.Context, a *app) (*jobs.Result, error) {
			return a.service.RunCacheRefresh(ctx, vehicles.ProviderID(cacheProvider))
		})
	},
}

// runJob builds the app, runs one job body, and logs the outcome.
func runJob(ctx context.Context, body func(context.Context, *app) (*jobs.Result, error)) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := body(ctx, a)
	if err != nil {
		return err
	}

	event := a.logger.Info().Int("items", result.ItemCount)
	for k, v := range result.Detail {
		event = event.Interface(k, v)
	}
	event.Msg("Job completed")
	return nil
}

func init() {
	cacheRefreshCmd.Flags().StringVar(&cacheProvider, "provider", vehicles.ProviderShipyard.String(), "provider to refresh")
	cacheCmd.AddCommand(cacheRefreshCmd)

	rootCmd.AddCommand(syncCmd, cleanupCmd, rumorsCmd, cacheCmd)
}
