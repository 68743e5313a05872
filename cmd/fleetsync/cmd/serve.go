package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hangarworks/fleetsync/internal/server"
	"github.com/hangarworks/fleetsync/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job invocation and query API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		h := handlers.New(a.service, a.store, a.store, a.prober, a.logger)
		srv := server.New(h, a.logger, server.Config{
			ListenAddr: a.cfg.ListenAddr,
			PathPrefix: a.cfg.RoutePrefix,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
