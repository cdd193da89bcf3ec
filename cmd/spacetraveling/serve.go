package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	Long: `The serve command starts the HTTP server. Pages stored by a previous build
are served immediately; everything else is rendered on first request and
regenerated in the background once it is older than the revalidate interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := spacetraveling.New(siteConfig())
		if err := app.Init(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- app.Start()
		}()

		select {
		case err := <-errCh:
			app.Close()
			return err
		case <-ctx.Done():
		}

		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
