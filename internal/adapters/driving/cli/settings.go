package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the chat model, generation parameters, retrieval,
and AI providers.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsModelCmd = &cobra.Command{
	Use:   "model [name]",
	Short: "Set the chat model",
	Long:  `Select the chat model. Run 'ragchat models' to list the available ones.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsModel,
}

var settingsParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Set generation parameters",
	Long: `Set the generation parameters sent with every chat completion.

  --temperature  randomness, between 0 and 1
  --max-tokens   maximum answer length, positive

Parameters not given keep their current value.`,
	RunE: runSettingsParams,
}

var settingsRetrievalCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Configure context retrieval",
	Long: `Configure which index is queried for context and how many passages
are added to each turn. Options not given keep their current value.`,
	RunE: runSettingsRetrieval,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to build and query indexes.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for chat completions and query composition.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsParamsCmd.Flags().Float64("temperature", 0, "sampling temperature (0-1)")
	settingsParamsCmd.Flags().Int("max-tokens", 0, "maximum tokens per answer")

	settingsRetrievalCmd.Flags().Bool("enabled", true, "add retrieved context to each turn")
	settingsRetrievalCmd.Flags().StringP("name", "n", "", "index queried for context")
	settingsRetrievalCmd.Flags().Int("k", 0, "number of passages retrieved")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsModelCmd)
	settingsCmd.AddCommand(settingsParamsCmd)
	settingsCmd.AddCommand(settingsRetrievalCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Params.Temperature)
	cmd.Printf("  Max Tokens: %d\n", settings.LLM.Params.MaxTokens)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status = "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Retrieval settings
	cmd.Println("[Retrieval]")
	if settings.Retrieval.Enabled {
		cmd.Printf("  Enabled: yes\n")
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Printf("  Index: %s\n", settings.Retrieval.DocName)
	cmd.Printf("  Passages (k): %d\n", settings.Retrieval.K)
	cmd.Printf("  Query Model: %s\n", settings.Retrieval.QueryModel)
	cmd.Println()

	// Index settings
	cmd.Println("[Index]")
	if settings.Index.DocsDir != "" {
		cmd.Printf("  Docs Dir: %s\n", settings.Index.DocsDir)
	}
	cmd.Printf("  Workers: %d\n", settings.Index.Workers)
	cmd.Printf("  Batch Size: %d\n", settings.Index.BatchSize)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ragchat settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("ragchat Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: LLM provider
	cmd.Println("Step 1: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	// Step 2: Embedding provider
	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Step 3: Retrieval
	cmd.Println("Step 3: Configure Retrieval")
	cmd.Println("---------------------------")
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Printf("Index name [%s]: ", settings.Retrieval.DocName)
	docName := readLine(reader)
	cmd.Printf("Passages per turn [%d]: ", settings.Retrieval.K)
	k := parseChoice(readLine(reader), 100, settings.Retrieval.K)
	if err := settingsService.SetRetrieval(true, docName, k); err != nil {
		return fmt.Errorf("failed to configure retrieval: %w", err)
	}
	cmd.Println()

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsModel(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetModel(args[0]); err != nil {
		return fmt.Errorf("failed to set model: %w", err)
	}
	cmd.Printf("Chat model set to: %s\n", strings.TrimSpace(args[0]))
	return nil
}

func runSettingsParams(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	params := settings.LLM.Params

	if cmd.Flags().Changed("temperature") {
		if params.Temperature, err = cmd.Flags().GetFloat64("temperature"); err != nil {
			return fmt.Errorf("getting temperature flag: %w", err)
		}
	}
	if cmd.Flags().Changed("max-tokens") {
		if params.MaxTokens, err = cmd.Flags().GetInt("max-tokens"); err != nil {
			return fmt.Errorf("getting max-tokens flag: %w", err)
		}
	}

	if err := settingsService.SetModelParams(params); err != nil {
		return fmt.Errorf("failed to set parameters: %w", err)
	}
	cmd.Printf("Temperature: %.2f, Max Tokens: %d\n", params.Temperature, params.MaxTokens)
	return nil
}

func runSettingsRetrieval(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	enabled := settings.Retrieval.Enabled
	if cmd.Flags().Changed("enabled") {
		if enabled, err = cmd.Flags().GetBool("enabled"); err != nil {
			return fmt.Errorf("getting enabled flag: %w", err)
		}
	}
	docName, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("getting name flag: %w", err)
	}
	k, err := cmd.Flags().GetInt("k")
	if err != nil {
		return fmt.Errorf("getting k flag: %w", err)
	}

	if err := settingsService.SetRetrieval(enabled, docName, k); err != nil {
		return fmt.Errorf("failed to configure retrieval: %w", err)
	}

	updated, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	state := "disabled"
	if updated.Retrieval.Enabled {
		state = "enabled"
	}
	cmd.Printf("Retrieval %s: index %s, k=%d\n", state, updated.Retrieval.DocName, updated.Retrieval.K)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed; an empty answer falls back to OPENAI_API_KEY.
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use OPENAI_API_KEY): ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Rebuild your indexes with 'ragchat index build' if the model changed.")
	cmd.Println()
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use OPENAI_API_KEY): ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when input is the terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
