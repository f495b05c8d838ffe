package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/tablesession/internal/cli"
	"github.com/aretw0/tablesession/pkg/adapters/mcp"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the session store as MCP tools: read_session, write_session,
destroy_session and collect_garbage.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return withBackend(cmd, func(b *cli.Backend) error {
			logger := cli.NewLogger(b.Config())
			srv := mcp.NewServer(
				func() (ports.Handler, error) { return b.NewStore() },
				mcp.WithLogger(logger),
			)

			switch transport {
			case "sse":
				logger.Info("Starting tablesession MCP Server (SSE)", "port", port)
				if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			default:
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				logger.Info("Starting tablesession MCP Server (Stdio)")
				return srv.ServeStdio()
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
