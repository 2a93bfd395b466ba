package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available chat models",
	Long: `Lists the chat models offered by the configured LLM provider.
Select one with 'ragchat settings model NAME'.`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	models, err := chatService.Models(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	var current string
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			current = s.LLM.Model
		}
	}

	if len(models) == 0 {
		cmd.Println("No models available.")
		return nil
	}

	cmd.Println("Models:")
	for _, m := range models {
		marker := " "
		if m == current {
			marker = "*"
		}
		cmd.Printf(" %s %s\n", marker, m)
	}
	return nil
}
