// Package cli implements the ragchat command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	dataDir   string
	ephemeral bool
)

// Services bundles the core services the commands drive.
type Services struct {
	Index        driving.IndexService
	Retriever    driving.Retriever
	Conversation driving.ConversationStore
	Chat         driving.ChatService
	Settings     driving.SettingsService
	// Prompts is reloaded by long-running commands on SIGHUP. May be nil.
	Prompts driven.PromptStore
}

// Options carries the global flags into Bootstrap.
type Options struct {
	// DataDir overrides the data directory. Empty means the default.
	DataDir string
	// Ephemeral keeps chat sessions in memory only.
	Ephemeral bool
}

// Bootstrap constructs the services for one command run.
// The returned func releases everything it opened.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	indexService      driving.IndexService
	retriever         driving.Retriever
	conversationStore driving.ConversationStore
	chatService       driving.ChatService
	settingsService   driving.SettingsService
	promptStore       driven.PromptStore

	bootstrap     Bootstrap
	closeServices func() error
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your documents",
	Long: `ragchat answers questions about a local document corpus.

Questions are answered by a language model whose context is augmented with
passages retrieved from a vector index built over your documents.

Get started:
  ragchat index add ./notes/*.md      # copy documents into the corpus
  ragchat index build                 # embed and index them
  ragchat chat                        # start chatting`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.ragchat/data)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep chat sessions in memory only")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || closeServices != nil {
		return nil
	}

	svc, closer, err := bootstrap(cmd.Context(), Options{DataDir: dataDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	SetServices(svc)
	closeServices = closer
	return nil
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	indexService = s.Index
	retriever = s.Retriever
	conversationStore = s.Conversation
	chatService = s.Chat
	settingsService = s.Settings
	promptStore = s.Prompts
}

// SetBootstrap registers the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		closeServices = nil
	}
	return err
}
