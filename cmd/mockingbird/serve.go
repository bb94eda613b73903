package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/MrSnakeDoc/mockingbird/internal/app"
	"github.com/MrSnakeDoc/mockingbird/internal/config"
)

type serveFlags struct {
	configDir   string
	store       string
	adminListen string
	seedFile    string
	mockHost    string
	logLevel    string
	watch       bool
	restore     bool
	stdio       bool
	pretty      bool
}

func newServeCmd() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools on stdio and run mock servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			f.apply(cmd.Flags(), cfg)

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configDir, "config-dir", "", "directory of <port>.json files (MOCKINGBIRD_CONFIG_DIR)")
	fs.StringVar(&f.store, "store", "", "persistence backend: file or redis (MOCKINGBIRD_STORE)")
	fs.StringVar(&f.adminListen, "admin-listen", "", "admin API address, disabled when empty (MOCKINGBIRD_ADMIN_LISTEN)")
	fs.StringVar(&f.seedFile, "seed", "", "YAML seed file applied on startup (MOCKINGBIRD_SEED_FILE)")
	fs.StringVar(&f.mockHost, "mock-host", "", "interface mock servers bind to (MOCKINGBIRD_MOCK_HOST)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (MOCKINGBIRD_LOG_LEVEL)")
	fs.BoolVar(&f.watch, "watch", true, "reload servers when their saved config changes (MOCKINGBIRD_WATCH)")
	fs.BoolVar(&f.restore, "restore", false, "start every saved server on startup (MOCKINGBIRD_RESTORE)")
	fs.BoolVar(&f.stdio, "stdio", true, "serve MCP tools on stdin/stdout (MOCKINGBIRD_MCP_STDIO)")
	fs.BoolVar(&f.pretty, "pretty-log", false, "colored console logs on stderr (MOCKINGBIRD_PRETTY_LOG)")

	return cmd
}

// apply overrides cfg with the flags set explicitly on the command line.
func (f *serveFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("config-dir") {
		cfg.ConfigDir = f.configDir
	}
	if fs.Changed("store") {
		cfg.StoreBackend = f.store
	}
	if fs.Changed("admin-listen") {
		cfg.AdminListen = f.adminListen
	}
	if fs.Changed("seed") {
		cfg.SeedFile = f.seedFile
	}
	if fs.Changed("mock-host") {
		cfg.MockHost = f.mockHost
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("watch") {
		cfg.Watch = f.watch
	}
	if fs.Changed("restore") {
		cfg.Restore = f.restore
	}
	if fs.Changed("stdio") {
		cfg.MCPStdio = f.stdio
	}
	if fs.Changed("pretty-log") {
		cfg.PrettyLog = f.pretty
	}
}
