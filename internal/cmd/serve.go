package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/procdash/procdash/internal/config"
	"github.com/procdash/procdash/internal/dispatch"
	"github.com/procdash/procdash/internal/exitcode"
	"github.com/procdash/procdash/internal/hub"
	"github.com/procdash/procdash/internal/manager"
	"github.com/procdash/procdash/internal/snapshot"
	"github.com/procdash/procdash/internal/syncer"
	"github.com/procdash/procdash/internal/web"
)

var (
	serveConfig string
	serveListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the process dashboard server",
	Long: `Start the dashboard server.

The server connects to the pm2 daemon at startup (and exits with a
distinct code if it is unreachable), then runs until interrupted:

  - every full-sync tick it broadcasts a complete snapshot, including
    the last 100 log lines per process, as {"type":"update",...}
  - every state-sync tick it broadcasts a lightweight snapshot as
    {"type":"statepm2",...}
  - inbound client commands ({"type":"stop","id":3} and friends) are
    applied to the manager, followed by an immediate full resync

Clients connect over WebSocket:
  const ws = new WebSocket('ws://localhost:8080/ws');
  ws.onmessage = e => render(JSON.parse(e.data));`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to TOML config file")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return exitcode.Wrap(exitcode.ErrUsage, "loading config", err)
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	// One procdash per manager: concurrent pollers would double the load
	// on the pm2 daemon and race each other's mutations.
	lock := flock.New(cfg.Server.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock %s: %w", cfg.Server.LockFile, err)
	}
	if !locked {
		return exitcode.Newf(exitcode.ErrConflict, "another procdash instance holds %s", cfg.Server.LockFile)
	}
	defer func() { _ = lock.Unlock() }()

	mgr := manager.NewPM2(manager.PM2Config{
		Bin:         cfg.PM2.Bin,
		CallTimeout: cfg.CallTimeout(),
	})

	// Fatal if the manager is unreachable at startup. Everything after
	// this point is caught and logged instead.
	pingCtx, cancel := context.WithTimeout(cmd.Context(), cfg.CallTimeout())
	defer cancel()
	if err := mgr.Ping(pingCtx); err != nil {
		return err
	}

	h := hub.New()
	reader := snapshot.NewReader(snapshot.Config{
		Manager:   mgr,
		TailLines: cfg.Logs.TailLines,
	})
	sched := syncer.New(syncer.Config{
		Source:        reader,
		Broadcaster:   h,
		FullInterval:  cfg.FullInterval(),
		StateInterval: cfg.StateInterval(),
	})
	disp := dispatch.New(dispatch.Config{Manager: mgr, Syncer: sched})
	srv := web.NewServer(h, disp)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: srv.Handler(),
		// Header timeout only: /ws connections are long-lived, so
		// read/write timeouts would sever them.
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	slog.Info("dashboard server listening",
		"addr", cfg.Server.Listen,
		"full_interval", cfg.FullInterval(),
		"state_interval", cfg.StateInterval(),
	)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}
