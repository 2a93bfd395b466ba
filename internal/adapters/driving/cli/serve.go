package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/services"
	"github.com/custodia-labs/ragchat/internal/logger"
)

var (
	serveHost    string
	servePort    int
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for web front ends.

Questions submitted over HTTP stream their answers through the
server-sent event stream at /api/events.

With --port 0 the first free port from 8080 is used. Send SIGHUP to
reload edited prompt templates without restarting.

Examples:
  ragchat serve
  ragchat serve --port 9000 --origin http://localhost:5173`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "interface to listen on")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (0 = first free from 8080)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origin (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := servePort
	if port == 0 {
		p, err := services.FindAvailablePort(serveHost, 8080, 8180)
		if err != nil {
			return fmt.Errorf("finding a free port: %w", err)
		}
		port = p
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if promptStore != nil {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go reloadPrompts(ctx, hup, promptStore)
	}

	opts := []httpapi.Option{httpapi.WithBaseContext(ctx)}
	if len(serveOrigins) > 0 {
		opts = append(opts, httpapi.WithAllowedOrigins(serveOrigins...))
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Chat:         chatService,
		Conversation: conversationStore,
		Index:        indexService,
		Retriever:    retriever,
		Settings:     settingsService,
	}, opts...)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(serveHost, strconv.Itoa(port))
	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}

// reloadPrompts drops cached prompt templates each time hup fires, until ctx is done.
func reloadPrompts(ctx context.Context, hup <-chan os.Signal, prompts driven.PromptStore) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			prompts.Reload()
			logger.Info("prompt templates reloaded")
		}
	}
}
