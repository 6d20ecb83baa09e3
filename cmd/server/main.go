package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ryabkov82/backoffice-server/internal/config"
	"github.com/ryabkov82/backoffice-server/internal/httpapi"
	"github.com/ryabkov82/backoffice-server/internal/ingest"
	"github.com/ryabkov82/backoffice-server/internal/logger"
	"github.com/ryabkov82/backoffice-server/internal/storage"
	"github.com/ryabkov82/backoffice-server/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backoffice-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting", zap.String("version", version.String()), zap.String("addr", cfg.Addr()))

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	if n, err := ingest.SweepStale(cfg.Uploads.Dir, cfg.Uploads.SweepAge, log); err != nil {
		log.Warn("upload sweep failed", zap.Error(err))
	} else if n > 0 {
		log.Info("removed stale uploads", zap.Int("count", n))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := storage.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout, log)
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()

	db := client.Database(cfg.Mongo.Database)
	customers := storage.NewCustomerRepository(db, cfg.Mongo.Timeout)
	suppliers := storage.NewSupplierRepository(db, cfg.Mongo.Timeout)

	handler, err := httpapi.NewHandler(httpapi.Deps{
		Customers:        customers,
		Suppliers:        suppliers,
		CustomerImporter: ingest.NewProcessor(ingest.CustomerTarget(), customers, cfg.Uploads.Dir, cfg.DuplicatePolicy(), log),
		SupplierImporter: ingest.NewProcessor(ingest.SupplierTarget(), suppliers, cfg.Uploads.Dir, cfg.DuplicatePolicy(), log),
		UploadDir:        cfg.Uploads.Dir,
		Logger:           log,
	})
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		JWTSecret:      cfg.Auth.JWTSecret,
		StaticDir:      cfg.StaticDir,
	}, log)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweeper(ctx, cfg.Uploads.Dir, cfg.Uploads.SweepAge, log)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel() // stop the sweeper

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

// sweeper periodically removes uploads a crashed request left behind
func sweeper(ctx context.Context, dir string, maxAge time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(maxAge)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ingest.SweepStale(dir, maxAge, log)
			if err != nil {
				log.Warn("upload sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("removed stale uploads", zap.Int("count", n))
			}
		}
	}
}
