// Command ragchat chats with a local document corpus.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragchat/internal/adapters/driven/storage/indexfs"
	"github.com/custodia-labs/ragchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragchat/internal/connectors/filesystem"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/services"
	"github.com/custodia-labs/ragchat/internal/logger"
	"github.com/custodia-labs/ragchat/internal/postprocessors/preprocess"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap builds every client and service once. The returned func closes
// them in reverse order of construction.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("getting home directory: %w", err)
	}
	configDir := filepath.Join(home, ".ragchat")
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*cli.Services, func() error, error) {
		return nil, nil, errors.Join(err, closeAll())
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fail(fmt.Errorf("opening config: %w", err))
	}
	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fail(fmt.Errorf("opening prompts: %w", err))
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fail(fmt.Errorf("loading settings: %w", err))
	}

	aiServices := ai.Initialise(settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}
	closers = append(closers, aiServices.Close)

	indexStore, err := indexfs.NewStore(filepath.Join(dataDir, "indexes"))
	if err != nil {
		return fail(fmt.Errorf("opening index store: %w", err))
	}

	var sessions driven.SessionRepository
	if opts.Ephemeral {
		sessions = memory.NewSessionRepository()
	} else {
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return fail(fmt.Errorf("opening session database: %w", err))
		}
		sessions = db.SessionRepository()
	}
	closers = append(closers, sessions.Close)

	corpus := filesystem.New()
	closers = append(closers, corpus.Close)

	preprocessor, err := preprocess.New()
	if err != nil {
		return fail(err)
	}

	indexer := services.NewIndexer(corpus, preprocessor, aiServices.Embedding, indexStore, services.IndexerConfig{
		DataDir:   dataDir,
		DocName:   settings.Retrieval.DocName,
		DocsDir:   settings.Index.DocsDir,
		Workers:   settings.Index.Workers,
		BatchSize: settings.Index.BatchSize,
	})
	retriever := services.NewRetriever(aiServices.Embedding, indexStore)
	composer := services.NewQueryComposer(aiServices.LLM, prompts, settings.Retrieval.QueryModel)

	conversation := services.NewConversationStore(sessions)
	if err := conversation.Load(ctx); err != nil {
		return fail(err)
	}
	chat := services.NewChatCoordinator(conversation, aiServices.LLM, composer, retriever, settingsService)

	logger.Debug("data directory: %s", dataDir)
	return &cli.Services{
		Index:        indexer,
		Retriever:    retriever,
		Conversation: conversation,
		Chat:         chat,
		Settings:     settingsService,
		Prompts:      prompts,
	}, closeAll, nil
}
