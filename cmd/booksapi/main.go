package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/hal-books-api/api"
	"github.com/AntonStoeckl/hal-books-api/bookstore/oteladapters"
	"github.com/AntonStoeckl/hal-books-api/bookstore/sqlengine"
	"github.com/AntonStoeckl/hal-books-api/config"
)

const (
	instrumentationName = "hal-books-api"
	shutdownTimeout     = 10 * time.Second
	readHeaderTimeout   = 5 * time.Second
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}

		slog.Error("invalid configuration", "error", err.Error())
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if runErr := run(cfg, logger); runErr != nil {
		logger.Error("books api stopped with error", "error", runErr.Error())
		os.Exit(1)
	}
}

// run wires storage, observability and the HTTP server, then serves until SIGINT or SIGTERM.
func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeOptions := []sqlengine.Option{sqlengine.WithTableName(cfg.Table), sqlengine.WithLogger(logger)}
	serverOptions := []api.Option{api.WithBasePath(cfg.BasePath), api.WithLogger(logger)}

	if cfg.ObservabilityEnabled {
		providers, obsErr := config.NewObservabilityConfig(ctx, cfg.OTELEndpoint, serviceVersion)
		if obsErr != nil {
			return obsErr
		}
		defer func() {
			if shutdownErr := providers.Shutdown(); shutdownErr != nil {
				logger.Warn("failed to shut down observability providers", "error", shutdownErr.Error())
			}
		}()

		metricsCollector := oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
		tracingCollector := oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
		contextualLogger := oteladapters.NewSlogBridgeLogger(instrumentationName)

		storeOptions = append(storeOptions,
			sqlengine.WithMetrics(metricsCollector),
			sqlengine.WithTracing(tracingCollector),
			sqlengine.WithContextualLogger(contextualLogger))
		serverOptions = append(serverOptions,
			api.WithMetrics(metricsCollector),
			api.WithTracing(tracingCollector),
			api.WithContextualLogger(contextualLogger))

		logger.Info("observability enabled", "otel_endpoint", cfg.OTELEndpoint)
	}

	store, closer, err := openBookStore(ctx, cfg, storeOptions...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Warn("failed to close database", "error", closeErr.Error())
		}
	}()

	logger.Info("book store ready", "driver", cfg.Driver, "adapter", cfg.Adapter, "table", store.TableName())

	if cfg.InitSchema {
		if schemaErr := store.CreateTableIfNotExists(ctx); schemaErr != nil {
			return schemaErr
		}
	}

	server, err := api.NewServer(store, serverOptions...)
	if err != nil {
		return err
	}

	handler, err := server.Handler()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("books api listening", "addr", cfg.Addr)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal, initiating graceful shutdown")
	case serveErr := <-errChan:
		if serveErr != nil {
			return serveErr
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	logger.Info("books api stopped")

	return nil
}

// openBookStore opens the connection selected by driver and adapter and creates the book store on it.
// The returned closer releases the connection.
func openBookStore(ctx context.Context, cfg Config, options ...sqlengine.Option) (*sqlengine.BookStore, io.Closer, error) {
	switch {
	case cfg.Adapter == adapterPGX:
		poolConfig, err := config.PostgresPGXPoolConfig(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, err
		}

		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			return nil, nil, pingErr
		}

		store, err := sqlengine.NewBookStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return store, poolCloser{pool: pool}, nil

	case cfg.Adapter == adapterSQLX && cfg.Driver == sqlengine.DialectPostgres:
		db, err := config.PostgresSQLXConfig(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewBookStoreFromSQLX(db, options...)

		return storeOrClose(store, err, db)

	case cfg.Adapter == adapterSQLX:
		db, err := config.SQLiteSQLXConfig(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewBookStoreFromSQLX(db, options...)

		return storeOrClose(store, err, db)

	case cfg.Driver == sqlengine.DialectPostgres:
		db, err := config.PostgresSQLDBConfig(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlengine.NewBookStoreFromSQLDB(db, options...)

		return storeOrClose(store, err, db)

	default:
		db, err := config.SQLiteSQLDBConfig(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite3)}, options...)

		store, err := sqlengine.NewBookStoreFromSQLDB(db, options...)

		return storeOrClose(store, err, db)
	}
}

// storeOrClose closes the connection when the book store could not be created on it.
func storeOrClose(store *sqlengine.BookStore, err error, db io.Closer) (*sqlengine.BookStore, io.Closer, error) {
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}

	return store, db, nil
}

type poolCloser struct {
	pool *pgxpool.Pool
}

func (c poolCloser) Close() error {
	c.pool.Close()
	return nil
}
