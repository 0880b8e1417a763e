package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/odatascope/odatascope/internal/api"
	"github.com/odatascope/odatascope/internal/fetch"
	"github.com/odatascope/odatascope/internal/ws"
)

var (
	servePort    int
	serveDevMode bool
	serveSource  string
)

var serveCmd = &cobra.Command{
	Use:   "serve [file-or-url]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Start the HTTP API server",
	Long: `Start the REST API server exposing the metadata explorer over HTTP,
with a WebSocket endpoint broadcasting state changes. With --source a
metadata document is loaded before the server starts accepting requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadEnvironment()
		if err != nil {
			return err
		}

		st := newStore(cfg)

		source := serveSource
		if len(args) == 1 {
			source = args[0]
		}
		if source != "" {
			xmlText, err := fetch.New().Acquire(context.Background(), source)
			if err != nil {
				return fmt.Errorf("fetching metadata: %w", err)
			}
			if err := st.Load(xmlText); err != nil {
				return fmt.Errorf("loading metadata: %w", err)
			}
			logger.Info("preloaded metadata", "source", source)
		}

		hub := ws.NewHub(logger)
		hub.SetSnapshotProvider(func() ([]byte, error) {
			return json.Marshal(st.Snapshot())
		})
		go hub.Run()

		// Every store transition is announced to WebSocket clients.
		st.Subscribe(hub.BroadcastSnapshotChanged)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		dev := serveDevMode || cfg.Server.DevMode

		srv := api.New(st, logger, port,
			api.WithHub(hub),
			api.WithDevMode(dev),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		fmt.Fprintf(os.Stderr, "odatascope API: http://localhost:%d\n", port)

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-ctx.Done():
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port for the API server (default from config, 8585)")
	serveCmd.Flags().BoolVar(&serveDevMode, "dev", false, "enable CORS for development mode")
	serveCmd.Flags().StringVar(&serveSource, "source", "", "metadata document to preload (path, URL, or -)")
	rootCmd.AddCommand(serveCmd)
}
