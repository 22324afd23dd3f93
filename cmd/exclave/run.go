package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/exclave-go/exclave/internal/manager"
	"github.com/exclave-go/exclave/internal/transport/tcp"
	"github.com/exclave-go/exclave/internal/transport/websocket"
	"github.com/exclave-go/exclave/internal/unitfile"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the rig server: load units, start the manager, accept interfaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), appFrom(cmd))
		},
	}
}

// runServer loads every unit file in the configured unit directory,
// starts the manager's owning goroutine, brings up the configured
// interface transports, and blocks until ctx is canceled (SIGINT/
// SIGTERM) or the manager shuts itself down.
func runServer(ctx context.Context, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := manager.New(app.Config, app.Logger, app.Runner)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Run returning, even with a nil error after a Shutdown event,
		// ends the server: stop cancels ctx and with it gctx.
		defer stop()
		return m.Run(gctx)
	})

	if err := loadUnitDir(m, app); err != nil {
		return err
	}

	if addr := app.Config.TCPAddr; addr != "" {
		srv := tcp.NewServer(addr, m, app.Logger)
		g.Go(func() error { return srv.Serve(gctx) })
	}
	if addr := app.Config.WebSocketAddr; addr != "" {
		srv := websocket.NewServer(addr, m, app.Logger)
		g.Go(func() error { return srv.Serve(gctx) })
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		app.Logger.Debug("sd_notify ready failed", "error", err)
	} else if ok {
		app.Logger.Info("notified systemd readiness")
	}

	<-gctx.Done()
	m.Shutdown()

	return g.Wait()
}

// loadUnitDir parses every unit file in app.Config's unit directory and
// loads each into m, logging parse errors and unknown-field warnings
// rather than aborting the whole startup.
func loadUnitDir(m *manager.Manager, app *App) error {
	results, errs := unitfile.LoadDir(app.Config.GetUnitDir())
	for path, err := range errs {
		app.Logger.Error("unit file failed to parse", "path", path, "error", err)
	}

	for _, r := range results {
		for _, w := range r.Warnings {
			app.Logger.Warn(w)
		}
		switch {
		case r.Jig != nil:
			if _, err := m.LoadJig(r.Jig); err != nil {
				app.Logger.Error("load jig", "id", r.Jig.ID, "error", err)
			}
		case r.Scenario != nil:
			if _, err := m.LoadScenario(r.Scenario); err != nil {
				app.Logger.Error("load scenario", "id", r.Scenario.ID, "error", err)
			}
		case r.Test != nil:
			if _, err := m.LoadTest(r.Test); err != nil {
				app.Logger.Error("load test", "id", r.Test.ID, "error", err)
			}
		case r.Interface != nil:
			// Loaded inactive: it has no transport until a listener
			// accepts a connection and activates it (tcp.Server/
			// websocket.Server do this per-connection, not here).
			if _, err := m.LoadInterface(r.Interface, nil); err != nil {
				app.Logger.Error("load interface", "id", r.Interface.ID, "error", err)
			}
		}
	}
	return nil
}
