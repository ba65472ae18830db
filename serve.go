package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"beta-dashboard/api"
	"beta-dashboard/loader"
	"beta-dashboard/reference"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Starts the dashboard web server. Each browser session starts from the built-in
reference tables plus the bank beta file in the data directory, if one exists.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func discoverBankBeta() (*loader.BankBetaDocument, error) {
	return loader.DiscoverBankBeta(cfg.Data.Dir, cfg.Data.BetaFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	betaPath := filepath.Join(cfg.Data.Dir, cfg.Data.BetaFile)
	switch doc, err := discoverBankBeta(); {
	case err == nil:
		logger.Info("bank beta file found", zap.String("path", betaPath), zap.Int("banks", len(doc.Rows)))
	case loader.IsMissingFile(err):
		logger.Info("no bank beta file, sessions start without bank data", zap.String("path", betaPath))
	default:
		logger.Warn("bank beta file ignored", zap.String("path", betaPath), zap.Error(err))
	}

	handler := api.NewHandler(api.Options{
		Store:           reference.Default(),
		Discover:        discoverBankBeta,
		DefaultLanguage: cfg.DefaultLanguage(),
		SearchEngine:    cfg.Search.Engine,
		SessionTTL:      cfg.Server.SessionTTL,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		Logger:          logger,
	})
	defer handler.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving dashboard", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
