package main

import (
	"context"

	"github.com/amonks/cadence/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE:  withApp(runServe),
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(a *app, cmd *cobra.Command, args []string) error {
	addr := a.cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}

	server, err := web.NewServer(web.Options{
		Tasks:   a.tasks,
		Reviews: a.reviews,
		Logger:  a.logger,
		Now:     a.now,
	})
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return server.Serve(ctx, addr)
}
