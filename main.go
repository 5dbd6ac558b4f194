package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/urna/auth"
	"github.com/danielhkuo/urna/cliparse"
	"github.com/danielhkuo/urna/db"
	"github.com/danielhkuo/urna/middleware"
	"github.com/danielhkuo/urna/router"
	"github.com/danielhkuo/urna/store/sqlstore"
	"github.com/danielhkuo/urna/voting"
)

func main() {
	var err error

	// Load environment variables from .env file, if any
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		slog.Error("invalid database type", "error", err)
		os.Exit(1)
	}

	// Connect and verify
	dbConn, err := db.Open(context.Background(), dialect, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "dialect", dialect)

	st := sqlstore.New(dbConn, dialect)

	if cfg.SuperAdminEmail != "" {
		if err := seedSuperAdmin(st, cfg); err != nil {
			slog.Error("super admin seed failed", "error", err)
			os.Exit(1)
		}
	}

	service := voting.NewService(st, voting.Config{
		Location:    cfg.Location,
		CastTimeout: cfg.CastTimeout,
	})

	// Create router
	mux := router.NewRouter(st, service, cfg)

	// Create server
	server := http.Server{
		Handler:      middleware.CORS(cfg.CORSOrigin)(mux),
		Addr:         ":" + strconv.Itoa(cfg.Port),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		// Wait for Ctrl-C signal, then let in-flight votes finish
		<-ctrlc
		if err := shutdown(&server, 10*time.Second); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "timezone", cfg.Timezone)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return
	}

	// ListenAndServe returns as soon as Shutdown starts; the database must
	// stay open until every handler has returned.
	<-drained
	slog.Info("Server closed")
}

// shutdown stops accepting connections and waits up to timeout for active
// requests, then closes whatever is left.
func shutdown(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Close()
		return err
	}
	return nil
}

// seedSuperAdmin creates the configured super admin unless the email exists.
func seedSuperAdmin(st *sqlstore.Store, cfg cliparse.Config) error {
	hash, err := auth.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := st.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, hash)
	if err != nil {
		return err
	}
	if created {
		slog.Info("super admin created", "email", cfg.SuperAdminEmail)
	}
	return nil
}
