// Package cmd implements the fleetsync command-line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hangarworks/fleetsync/pkg/logging"
)

var (
	configFile string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fleetsync",
	Short: "Vehicle catalog synchronization service",
	Long: `FleetSync aggregates vehicle data from independent providers,
reconciles conflicting fields into one canonical record per vehicle, and
mines text feeds for evidence of unannounced vehicles.

Jobs can run once from the command line or be served over HTTP for
invocation by an external scheduler.`,
}

// Execute runs the CLI with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.fleetsync.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-error output")

	for _, flag := range []string{"config", "verbose", "quiet"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			logging.Err(err).Str("flag", flag).Msg("Failed to bind flag")
		}
	}
}
