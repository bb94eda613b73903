package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mockingbird/internal/version"
)

// newRootCmd builds the command tree. Running the binary without a
// subcommand serves, which is what MCP clients launch.
func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:   "mockingbird",
		Short: "Mock HTTP servers driven over MCP",
		Long: `mockingbird starts local HTTP mock servers on demand. Endpoints are
added, removed and switched to error responses through MCP tools on
stdin/stdout, or through the optional admin API. Every change is saved
per port and restored when the server starts again.`,
		Version:      version.Version,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.SetVersionTemplate(`{{printf "mockingbird version %s\n" .Version}}`)

	// Serve flags are shared so that "mockingbird --admin-listen :8080" works.
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newListCmd(), newVersionCmd())
	return root
}
