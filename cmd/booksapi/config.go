package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/AntonStoeckl/hal-books-api/bookstore/sqlengine"
	"github.com/AntonStoeckl/hal-books-api/config"
)

const (
	defaultAddr     = ":8080"
	defaultDriver   = sqlengine.DialectSQLite3
	defaultAdapter  = adapterSQL
	defaultTable    = "books"
	defaultLogLevel = "info"
	adapterPGX      = "pgx"
	adapterSQL      = "sql"
	adapterSQLX     = "sqlx"
	envAdapter      = "DB_ADAPTER"
	envDSN          = "BOOKS_DSN"
	serviceVersion  = "dev"
)

var (
	errUnsupportedDriver   = errors.New("unsupported driver (supported: postgres, sqlite3)")
	errUnsupportedAdapter  = errors.New("unsupported database adapter (supported: pgx, sql, sqlx)")
	errPGXRequiresPostgres = errors.New("the pgx adapter only supports the postgres driver")
	errUnknownLogLevel     = errors.New("unknown log level (supported: debug, info, warn, error)")
)

// Config holds the configuration of the books API binary.
type Config struct {
	Addr                 string
	Driver               string
	Adapter              string
	DSN                  string
	Table                string
	BasePath             string
	LogLevel             slog.Level
	InitSchema           bool
	ObservabilityEnabled bool
	OTELEndpoint         string
}

// parseFlags parses command line flags. DB_ADAPTER and BOOKS_DSN override -adapter and -dsn.
func parseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("booksapi", flag.ContinueOnError)

	var (
		addr          = fs.String("addr", defaultAddr, "HTTP listen address")
		driver        = fs.String("driver", defaultDriver, "Database driver: postgres or sqlite3")
		adapter       = fs.String("adapter", defaultAdapter, "Database adapter: pgx, sql or sqlx (env DB_ADAPTER)")
		dsn           = fs.String("dsn", "", "Database DSN (env BOOKS_DSN), defaults per driver")
		table         = fs.String("table", defaultTable, "Name of the books table")
		basePath      = fs.String("base-path", "", "Path prefix of all routes, e.g. /api")
		logLevel      = fs.String("log-level", defaultLogLevel, "Log level: debug, info, warn or error")
		initSchema    = fs.Bool("init-schema", false, "Create the books table if it does not exist")
		observability = fs.Bool("observability-enabled", false, "Enable OpenTelemetry observability")
		otelEndpoint  = fs.String("otel-endpoint", config.OTELCollectorEndpoint(), "OTLP gRPC collector endpoint")
	)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:                 *addr,
		Driver:               strings.ToLower(*driver),
		Adapter:              strings.ToLower(fromEnv(envAdapter, *adapter)),
		DSN:                  fromEnv(envDSN, *dsn),
		Table:                *table,
		BasePath:             *basePath,
		InitSchema:           *initSchema,
		ObservabilityEnabled: *observability,
		OTELEndpoint:         *otelEndpoint,
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if cfg.Adapter == "sql.db" {
		cfg.Adapter = adapterSQL
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	if cfg.DSN == "" {
		cfg.DSN = defaultDSN(cfg.Driver)
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Driver {
	case sqlengine.DialectPostgres, sqlengine.DialectSQLite3:
	default:
		return errors.Join(errUnsupportedDriver, errors.New(c.Driver))
	}

	switch c.Adapter {
	case adapterPGX:
		if c.Driver != sqlengine.DialectPostgres {
			return errPGXRequiresPostgres
		}
	case adapterSQL, adapterSQLX:
	default:
		return errors.Join(errUnsupportedAdapter, errors.New(c.Adapter))
	}

	return nil
}

func defaultDSN(driver string) string {
	if driver == sqlengine.DialectPostgres {
		return config.PostgresDSN()
	}

	return config.SQLiteDSN()
}

func parseLogLevel(level string) (slog.Level, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return 0, errors.Join(errUnknownLogLevel, err)
	}

	return parsed, nil
}

func fromEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
