package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mockingbird/internal/app"
	"github.com/MrSnakeDoc/mockingbird/internal/config"
	"github.com/MrSnakeDoc/mockingbird/internal/formatting"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
	"github.com/MrSnakeDoc/mockingbird/internal/utils"
)

func newListCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the saved mock servers and their endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("config-dir") {
				cfg.ConfigDir = configDir
			}

			log := logger.New("error", false)
			st, client, err := app.OpenStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if client != nil {
				defer utils.MustClose(client, log, "redis")
			}

			out, err := renderSaved(cmd, st)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory of <port>.json files (MOCKINGBIRD_CONFIG_DIR)")

	return cmd
}

func renderSaved(cmd *cobra.Command, st store.Store) (string, error) {
	configs, err := st.List(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to list saved servers: %w", err)
	}
	if len(configs) == 0 {
		return "No saved mock servers in " + st.Name() + " store", nil
	}

	rows := make([]formatting.ServerRow, 0, len(configs))
	for _, c := range configs {
		rows = append(rows, formatting.ServerRow{
			Port:      c.Port,
			State:     "Saved",
			URL:       mockserver.LocalURL(c.Port),
			Endpoints: len(c.Endpoints),
		})
	}

	out := formatting.ServerTable(rows)
	for _, c := range configs {
		out += fmt.Sprintf("\n\nPort %d (%s):\n%s", c.Port, st.Location(c.Port), formatting.EndpointTable(c.Endpoints))
	}
	return out, nil
}
