package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coreybb/starwars-api/api"
	"github.com/coreybb/starwars-api/datastore"
	"github.com/coreybb/starwars-api/migrations"
	rh "github.com/coreybb/starwars-api/route-handlers"
)

const (
	defaultHost       = "0.0.0.0"
	defaultPort       = "3000"
	dbPingTimeout     = 5 * time.Second
	migrateTimeout    = 2 * time.Minute
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 25
	dbConnMaxLifetime = 5 * time.Minute
)

type config struct {
	addr          string
	databaseURL   string
	runMigrations bool
	logLevel      slog.Level
}

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.logLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := datastore.Open(ctx, cfg.databaseURL, datastore.PoolOptions{
		MaxOpenConns:    dbMaxOpenConns,
		MaxIdleConns:    dbMaxIdleConns,
		ConnMaxLifetime: dbConnMaxLifetime,
		PingTimeout:     dbPingTimeout,
	})
	if err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}
	defer db.Close()
	logger.Info("Database connection successful")

	if cfg.runMigrations {
		migrateCtx, cancel := context.WithTimeout(ctx, migrateTimeout)
		err := migrations.Run(migrateCtx, db)
		cancel()
		if err != nil {
			return err
		}
		logger.Info("Database migrations applied")
	}

	userHandler := rh.NewUserHandler(datastore.NewUserRepository(db))
	router := api.SetupRoutes(userHandler, logger)

	return startServer(ctx, cfg.addr, router, logger)
}

// loadConfig applies defaults, then environment variables, then flags.
func loadConfig(args []string, getenv func(string) string) (config, error) {
	cfg := config{
		addr:          net.JoinHostPort(defaultHost, defaultPort),
		runMigrations: true,
		logLevel:      slog.LevelInfo,
	}

	if port := getenv("PORT"); port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return config{}, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.addr = net.JoinHostPort(defaultHost, port)
	}

	cfg.databaseURL = getenv("DB_CONNECTION_STRING")

	if v := getenv("RUN_MIGRATIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid RUN_MIGRATIONS %q: %w", v, err)
		}
		cfg.runMigrations = b
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.logLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	fs := flag.NewFlagSet("starwars-api", flag.ContinueOnError)
	fs.StringVar(&cfg.addr, "a", cfg.addr, "address and port to listen on")
	fs.StringVar(&cfg.databaseURL, "d", cfg.databaseURL, "database connection string")
	fs.BoolVar(&cfg.runMigrations, "m", cfg.runMigrations, "apply database migrations on startup")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if cfg.databaseURL == "" {
		return config{}, errors.New("DB_CONNECTION_STRING is required")
	}

	return cfg, nil
}

// startServer serves until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, addr string, router http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server gracefully stopped")
	return nil
}
