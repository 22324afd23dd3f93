package main

import (
	"context"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/exclave-go/exclave/internal/config"
	"github.com/exclave-go/exclave/internal/execx"
	"github.com/exclave-go/exclave/internal/log"
)

// App holds the dependencies every subcommand needs, built once in the
// root command's PersistentPreRunE and threaded through via the cobra
// command's context.
type App struct {
	Config *config.Config
	Logger log.Logger
	Runner execx.Runner
}

var (
	configPath string
	unitDir    string
	tcpAddr    string
	wsAddr     string
	verbose    bool
)

// newRootCommand builds the exclave root command and every subcommand
// it owns.
func newRootCommand() *cobra.Command {
	var app App

	root := &cobra.Command{
		Use:   "exclave",
		Short: "Drives test-rig units (jigs, scenarios, tests, interfaces) under supervision",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if unitDir != "" {
				cfg.UnitDir = unitDir
			}
			if tcpAddr != "" {
				cfg.TCPAddr = tcpAddr
			}
			if wsAddr != "" {
				cfg.WebSocketAddr = wsAddr
			}
			if verbose {
				cfg.Verbose = true
			}

			app = App{
				Config: cfg,
				Logger: log.NewLogger(cfg.Verbose),
				Runner: execx.NewRealRunner(),
			}
			if cfg.Verbose {
				if dump, err := yaml.Marshal(cfg); err == nil {
					app.Logger.Debug("effective configuration", "yaml", string(dump))
				}
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appContextKey{}, &app))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&unitDir, "unit-dir", "", "directory to scan for unit files (overrides config)")
	root.PersistentFlags().StringVar(&tcpAddr, "tcp-addr", "", "listen address for the TCP interface transport (overrides config)")
	root.PersistentFlags().StringVar(&wsAddr, "ws-addr", "", "listen address for the WebSocket interface transport (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	root.AddCommand(newRunCommand(), newValidateCommand(), newListCommand(), newStatusCommand())
	return root
}

type appContextKey struct{}

// appFrom retrieves the App a subcommand's PersistentPreRunE attached
// to cmd's context.
func appFrom(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey{}).(*App)
}
