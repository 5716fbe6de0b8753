package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danhoward/aio-engine/internal/archiver"
	"github.com/danhoward/aio-engine/internal/config"
	"github.com/danhoward/aio-engine/internal/server"
	pgstore "github.com/danhoward/aio-engine/internal/store/postgres"
	"github.com/danhoward/aio-engine/pkg/types"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the aio HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	ctx := context.Background()
	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("connecting to DynamoDB: %w", err)
	}

	logger := slog.Default()

	srvCfg := types.ServerConfig{Addr: ":3000"}
	if cfg.Server != nil {
		srvCfg = *cfg.Server
		if srvCfg.Addr == "" {
			srvCfg.Addr = ":3000"
		}
	}
	srv := server.New(srvCfg, st, cfg.Thresholds)

	// Archiver
	var arc *archiver.Archiver
	if cfg.Archiver != nil && cfg.Archiver.Enabled {
		pg, err := pgstore.New(ctx, cfg.Archiver.DSN)
		if err != nil {
			return fmt.Errorf("connecting to Postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return fmt.Errorf("migrating Postgres: %w", err)
		}
		interval := 6 * time.Hour
		if cfg.Archiver.Interval != "" {
			if d, err := time.ParseDuration(cfg.Archiver.Interval); err == nil && d > 0 {
				interval = d
			}
		}
		arc = archiver.New(st, pg, interval, logger)
		arc.Start(ctx)
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if arc != nil {
			arc.Stop(shutdownCtx)
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		_ = st.Stop(shutdownCtx)
		color.Green("Server stopped gracefully")
		return nil
	}
}
