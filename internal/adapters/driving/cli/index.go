package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

var (
	indexName  string
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage vector indexes",
	Long: `Build, inspect and remove the vector indexes used for retrieval.

An index is built from every .md, .mdx, .txt and .json file in its corpus
folder. Each build replaces the previous one atomically.`,
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [folder]",
	Short: "Build an index from a corpus folder",
	Long: `Scans the corpus folder, preprocesses and embeds every document, and
commits a new version of the index. Without a folder argument the index's
configured corpus folder is used.

With --watch the index is rebuilt whenever the folder changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexBuild,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built indexes",
	RunE:  runIndexList,
}

var indexRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove an index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexRemove,
}

var indexAddCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Copy documents into an index's corpus folder",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexAdd,
}

var indexFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List documents in an index's corpus folder",
	RunE:  runIndexFiles,
}

func init() {
	for _, c := range []*cobra.Command{indexBuildCmd, indexAddCmd, indexFilesCmd} {
		c.Flags().StringVarP(&indexName, "name", "n", "", "index name (default from settings)")
	}
	indexBuildCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "rebuild when the corpus folder changes")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexRemoveCmd)
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexFilesCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	req := driving.BuildRequest{
		DocName:  resolveDocName(indexName),
		Progress: buildProgressPrinter(cmd),
	}
	if len(args) == 1 {
		req.Folder = args[0]
	}

	if indexWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", watchedFolder(req))
		return indexService.Watch(ctx, req, func(m *domain.IndexManifest, err error) {
			if err != nil {
				cmd.Printf("Build failed: %v\n", err)
				return
			}
			printManifestSummary(cmd, m)
		})
	}

	manifest, err := indexService.Build(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	printManifestSummary(cmd, manifest)
	return nil
}

func watchedFolder(req driving.BuildRequest) string {
	if req.Folder != "" {
		return req.Folder
	}
	return indexService.CorpusDir(req.DocName)
}

func buildProgressPrinter(cmd *cobra.Command) func(domain.BuildProgress) {
	var last domain.BuildPhase
	return func(p domain.BuildProgress) {
		switch p.Phase {
		case domain.BuildPhaseEmbed:
			if p.Done == p.Total {
				cmd.Printf("  embedded %d/%d\n", p.Done, p.Total)
			}
		default:
			if p.Phase != last {
				cmd.Printf("  %s...\n", p.Phase)
			}
		}
		last = p.Phase
	}
}

func printManifestSummary(cmd *cobra.Command, m *domain.IndexManifest) {
	if m == nil {
		return
	}
	cmd.Printf("Index %q built: %d documents, %d dimensions (%s)\n",
		m.DocName, m.Count, m.Dimensions, m.EmbeddingModel)
	cmd.Printf("  Version: %s\n", m.Version)
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	manifests, err := indexService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	if len(manifests) == 0 {
		cmd.Println("No indexes built. Run 'ragchat index build' to create one.")
		return nil
	}

	cmd.Println("Indexes:")
	cmd.Println()
	for i := range manifests {
		m := manifests[i]
		cmd.Printf("  %s\n", m.DocName)
		cmd.Printf("    Documents:  %d\n", m.Count)
		cmd.Printf("    Model:      %s (%d dims)\n", m.EmbeddingModel, m.Dimensions)
		cmd.Printf("    Source:     %s\n", m.SourceDir)
		cmd.Printf("    Built:      %s\n", m.BuiltAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Println()
	}
	return nil
}

func runIndexRemove(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if err := indexService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove index: %w", err)
	}
	cmd.Printf("Removed index: %s\n", args[0])
	return nil
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	name := resolveDocName(indexName)
	added, err := indexService.AddDocuments(cmd.Context(), name, args)
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	for _, f := range added {
		cmd.Printf("  + %s\n", f)
	}
	cmd.Printf("Added %d document(s) to %s\n", len(added), indexService.CorpusDir(name))
	cmd.Printf("Run 'ragchat index build -n %s' to update the index.\n", name)
	return nil
}

func runIndexFiles(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	name := resolveDocName(indexName)
	files, err := indexService.Files(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(files) == 0 {
		cmd.Printf("No documents in %s\n", indexService.CorpusDir(name))
		return nil
	}

	cmd.Printf("Documents in %s:\n", indexService.CorpusDir(name))
	for _, f := range files {
		cmd.Printf("  %s\n", f)
	}
	cmd.Printf("Total: %d documents\n", len(files))
	return nil
}

// resolveDocName returns name, or the configured retrieval index when empty.
func resolveDocName(name string) string {
	if name != "" {
		return name
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Retrieval.DocName != "" {
			return s.Retrieval.DocName
		}
	}
	return domain.DefaultDocName
}

// resolveK returns k, or the configured retrieval depth when k is not positive.
func resolveK(k int) int {
	if k > 0 {
		return k
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Retrieval.K > 0 {
			return s.Retrieval.K
		}
	}
	return domain.DefaultRetrievalK
}
