package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

const snippetLength = 160

var (
	searchLimit int
	searchJSON  bool
	searchIndex string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an index",
	Long: `Finds the passages nearest to the query in a vector index.
The query is embedded with the configured embedding model and compared
to every indexed passage by squared Euclidean distance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", 0, "number of passages (default from settings)")
	searchCmd.Flags().StringVarP(&searchIndex, "name", "n", "", "index name (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retriever == nil {
		return errors.New("retriever not configured")
	}

	passages, err := retriever.Search(cmd.Context(), query, resolveDocName(searchIndex), resolveK(searchLimit))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, passages)
	}

	return outputSearchTable(cmd, passages)
}

func outputSearchJSON(cmd *cobra.Command, passages []domain.RetrievedPassage) error {
	data, err := json.MarshalIndent(passages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, passages []domain.RetrievedPassage) error {
	if len(passages) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for _, p := range passages {
		// Format: [position] (distance) snippet
		cmd.Printf("  [%d] (%.4f) %s\n", p.Position, p.Distance, snippet(p.Text, snippetLength))
	}
	cmd.Println()
	cmd.Printf("Found %d results\n", len(passages))
	return nil
}

func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
