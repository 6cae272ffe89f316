package main

import (
	"github.com/spf13/cobra"

	"divcli/internal/app"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the screening and forecast API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			a, err := app.NewApplication(cmd.Context(), c.cfg, c.tracing, c.logger)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	return cmd
}
