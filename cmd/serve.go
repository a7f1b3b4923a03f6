package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/catalog"
	"github.com/lehigh-university-libraries/bookcatalog/internal/config"
	"github.com/lehigh-university-libraries/bookcatalog/internal/handlers"
	"github.com/lehigh-university-libraries/bookcatalog/internal/messages"
	"github.com/lehigh-university-libraries/bookcatalog/internal/navigation"
	"github.com/lehigh-university-libraries/bookcatalog/internal/render"
	"github.com/lehigh-university-libraries/bookcatalog/internal/router"
	"github.com/lehigh-university-libraries/bookcatalog/internal/storage"
	"github.com/lehigh-university-libraries/bookcatalog/internal/tocstore"
	"github.com/lehigh-university-libraries/bookcatalog/internal/upload"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the book catalog web server",
		Long: `Starts the book catalog portlet on the configured port.

Render requests are served at the base path (default /portlet) and action
requests at <base path>/action. Uploaded tables of contents are written to
upload.folder and served under /toc/.`,
		Example: `  # Start server on default port 8888
  bookcatalog serve

  # Start server on custom port with a sqlite catalog
  BOOKCATALOG_CATALOG_DRIVER=sqlite BOOKCATALOG_CATALOG_DSN=catalog.db bookcatalog serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntP("port", "p", 8888, "Port to listen on")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := seedCatalog(ctx, store, cfg.Catalog.Seed); err != nil {
		return err
	}

	sessions, closeSessions, err := openSessions(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeSessions()

	if err := os.MkdirAll(cfg.Upload.Folder, 0o755); err != nil {
		return fmt.Errorf("creating upload folder: %w", err)
	}

	mirror, err := tocstore.New(cfg.MirrorConfig())
	if err != nil {
		return err
	}

	factory := navigation.NewFactory(cfg.Server.BasePath, navigation.Capabilities{
		Modes:        cfg.Modes(),
		WindowStates: cfg.WindowStates(),
	})

	r := router.New(router.Options{
		Catalog:    store,
		Factory:    factory,
		Ingestor:   upload.New(cfg.Upload.Folder, cfg.Upload.MaxBytes),
		Messages:   messages.New(),
		Mirror:     mirror,
		PortalInfo: cfg.Server.PortalInfo,
	})

	handler := handlers.New(handlers.Options{
		Router:   r,
		Sessions: sessions,
		Render: render.Options{
			MarkupHead: cfg.Server.MarkupHead,
			AssetsPath: "/static",
		},
		BasePath:     cfg.Server.BasePath,
		UploadFolder: cfg.Upload.Folder,
		StaticDir:    cfg.Server.StaticDir,
		// Room for multipart framing around a file at the upload limit.
		MaxRequestBytes: cfg.Upload.MaxBytes + 64<<10,
	})

	// Set up routes
	mux := http.NewServeMux()
	handler.Routes(mux)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Book catalog available", "addr", addr, "url", "http://localhost"+addr+cfg.Server.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation (Ctrl+C) or server error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		// Give server 5 seconds to shut down gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

// seedCatalog imports the seed file into an empty catalog.
func seedCatalog(ctx context.Context, store catalog.Store, seed string) error {
	if seed == "" {
		return nil
	}
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Debug("Catalog already populated, skipping seed", "count", n)
		return nil
	}
	_, err = catalog.ImportParquet(ctx, store, seed)
	return err
}

func openSessions(ctx context.Context, cfg config.SessionConfig) (storage.Store, func(), error) {
	if cfg.Backend != config.SessionRedis {
		return storage.New(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	slog.Info("Storing sessions in redis", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
	return storage.NewRedis(client, cfg.TTL), func() {
		if err := client.Close(); err != nil {
			slog.Error("Failed to close redis client", "err", err)
		}
	}, nil
}
