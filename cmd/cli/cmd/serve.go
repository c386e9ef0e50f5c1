// Package cmd - HTTP server command
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solarwise/internal/app"
	"solarwise/internal/config"
	"solarwise/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculator over HTTP",
	Long: `Start the JSON API.

Endpoints:
  POST /calculator/recommendation
  POST /calculator/full
  POST /calculator/bill
  POST /calculator/units
  POST /quality/score
  GET  /tariffs
  GET  /tariffs/snapshots
  GET  /health
  GET  /version`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	handler, err := a.Server()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = config.Get().Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "solarwise %s listening on %s\n", app.Version, addr)

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down", zap.String("addr", addr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
