package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose retrieval to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Model Context Protocol server",
	Long: `Run an MCP server that lets assistants search your indexes.

Tools:     retrieve, list_indexes
Resources: ragchat://indexes

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch. Register it with:

  {"mcpServers": {"ragchat": {"command": "ragchat", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport instead, for the MCP
Inspector or remote clients:

  ragchat mcp serve --port 8765`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().String("host", "localhost", "interface to bind with --port")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("--port %d out of range", port)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retriever: retriever,
		Index:     indexService,
		Settings:  settingsService,
	})
	if err != nil {
		return err
	}

	if port == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
