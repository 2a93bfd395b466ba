package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// DefaultWatchDebounce is how long Watch waits for the corpus to settle before rebuilding.
const DefaultWatchDebounce = 500 * time.Millisecond

// IndexerConfig configures an Indexer.
type IndexerConfig struct {
	// DataDir holds the per-name corpus folders (<DataDir>/<doc_name>-docs).
	DataDir string

	// DocName and DocsDir pin the corpus folder of one index name,
	// overriding the default location.
	DocName string
	DocsDir string

	// Workers bounds concurrent embedding requests.
	Workers int

	// BatchSize is the number of texts per embedding request.
	BatchSize int

	// Debounce delays Watch rebuilds. Zero means DefaultWatchDebounce.
	Debounce time.Duration
}

// Indexer builds named flat indexes from corpus folders.
// Every build is a full rebuild; the previous version stays readable until
// the new one commits.
type Indexer struct {
	corpus       driven.CorpusReader
	preprocessor driven.TextPreprocessor
	embedder     driven.EmbeddingService
	store        driven.IndexStore
	cfg          IndexerConfig

	mu       sync.Mutex
	building map[string]struct{}
}

// NewIndexer creates an indexer. embedder may be nil, in which case builds
// fail with domain.ErrEmbeddingUnavailable.
func NewIndexer(
	corpus driven.CorpusReader,
	preprocessor driven.TextPreprocessor,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	cfg IndexerConfig,
) *Indexer {
	if cfg.Workers <= 0 {
		cfg.Workers = domain.DefaultIndexWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultEmbedBatchSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultWatchDebounce
	}
	return &Indexer{
		corpus:       corpus,
		preprocessor: preprocessor,
		embedder:     embedder,
		store:        store,
		cfg:          cfg,
		building:     make(map[string]struct{}),
	}
}

// CorpusDir returns the corpus folder used for docName.
func (ix *Indexer) CorpusDir(docName string) string {
	if ix.cfg.DocsDir != "" && docName == ix.cfg.DocName {
		return ix.cfg.DocsDir
	}
	return filepath.Join(ix.cfg.DataDir, docName+"-docs")
}

// acquire marks docName as building. The returned func releases it.
func (ix *Indexer) acquire(docName string) (func(), error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, busy := ix.building[docName]; busy {
		return nil, fmt.Errorf("%w: %s", domain.ErrBuildInProgress, docName)
	}
	ix.building[docName] = struct{}{}
	return func() {
		ix.mu.Lock()
		delete(ix.building, docName)
		ix.mu.Unlock()
	}, nil
}

// Build fully rebuilds the named index from its corpus folder.
func (ix *Indexer) Build(ctx context.Context, req driving.BuildRequest) (*domain.IndexManifest, error) {
	docName := strings.TrimSpace(req.DocName)
	if docName == "" {
		return nil, fmt.Errorf("%w: index name", domain.ErrEmptyInput)
	}
	if ix.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	release, err := ix.acquire(docName)
	if err != nil {
		return nil, err
	}
	defer release()

	folder := req.Folder
	if folder == "" {
		folder = ix.CorpusDir(docName)
	}
	if abs, err := filepath.Abs(folder); err == nil {
		folder = abs
	}

	progress := req.Progress
	if progress == nil {
		progress = func(domain.BuildProgress) {}
	}

	start := time.Now()
	logger.Section("Index build")
	logger.Debug("index %s: scanning %s", docName, folder)

	docs, err := ix.corpus.Scan(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	progress(domain.BuildProgress{Phase: domain.BuildPhaseScan, Done: len(docs), Total: len(docs)})

	texts := make([]string, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts[i] = ix.preprocessor.Preprocess(doc.Text)
		progress(domain.BuildProgress{Phase: domain.BuildPhasePreprocess, Done: i + 1, Total: len(docs)})
	}

	matrix, err := ix.embed(ctx, texts, progress)
	if err != nil {
		return nil, err
	}

	dim, err := ix.dimensions(matrix)
	if err != nil {
		return nil, err
	}

	artifacts := &driven.IndexArtifacts{
		Manifest: domain.IndexManifest{
			DocName:        docName,
			Version:        newBuildVersion(),
			EmbeddingModel: ix.embedder.ModelName(),
			Dimensions:     dim,
			Count:          len(texts),
			SourceDir:      folder,
			BuiltAt:        time.Now().UTC(),
		},
		Matrix: matrix,
		Texts:  texts,
	}

	progress(domain.BuildProgress{Phase: domain.BuildPhaseCommit, Done: 0, Total: 1})
	if err := ix.store.Commit(ctx, artifacts); err != nil {
		return nil, fmt.Errorf("commit index: %w", err)
	}
	progress(domain.BuildProgress{Phase: domain.BuildPhaseCommit, Done: 1, Total: 1})

	logger.Info("index %s: %d documents, %d dims, built in %s",
		docName, len(texts), dim, time.Since(start).Round(time.Millisecond))

	manifest := artifacts.Manifest
	return &manifest, nil
}

// embed runs batched embedding requests on a bounded worker pool.
// Batch results land in the matrix by position, so order follows texts.
func (ix *Indexer) embed(ctx context.Context, texts []string, progress func(domain.BuildProgress)) ([][]float32, error) {
	matrix := make([][]float32, len(texts))
	if len(texts) == 0 {
		return matrix, nil
	}

	var (
		progressMu sync.Mutex
		done       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)

	for start := 0; start < len(texts); start += ix.cfg.BatchSize {
		end := min(start+ix.cfg.BatchSize, len(texts))
		g.Go(func() error {
			vecs, err := ix.embedder.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed documents %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("%w: embedding returned %d vectors for %d texts",
					domain.ErrUpstream, len(vecs), end-start)
			}
			copy(matrix[start:end], vecs)

			progressMu.Lock()
			done += end - start
			progress(domain.BuildProgress{Phase: domain.BuildPhaseEmbed, Done: done, Total: len(texts)})
			progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}

// dimensions checks every row against the embedder's dimension.
func (ix *Indexer) dimensions(matrix [][]float32) (int, error) {
	want := ix.embedder.Dimensions()
	if len(matrix) == 0 {
		if want <= 0 {
			return 0, fmt.Errorf("%w: embedding dimension of %s is unknown for an empty corpus",
				domain.ErrConfiguration, ix.embedder.ModelName())
		}
		return want, nil
	}
	if want <= 0 {
		want = len(matrix[0])
	}
	for i, row := range matrix {
		if len(row) != want {
			return 0, fmt.Errorf("%w: document %d embedded to %d dims, expected %d",
				domain.ErrConfiguration, i, len(row), want)
		}
	}
	return want, nil
}

// Watch builds once, then rebuilds whenever the corpus folder changes.
func (ix *Indexer) Watch(ctx context.Context, req driving.BuildRequest, onBuild func(*domain.IndexManifest, error)) error {
	if onBuild == nil {
		onBuild = func(*domain.IndexManifest, error) {}
	}
	folder := req.Folder
	if folder == "" {
		folder = ix.CorpusDir(strings.TrimSpace(req.DocName))
	}
	req.Folder = folder

	onBuild(ix.Build(ctx, req))

	changes, err := ix.corpus.Watch(ctx, folder)
	if err != nil {
		return fmt.Errorf("watch corpus: %w", err)
	}

	timer := time.NewTimer(ix.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("index %s: change in %s", req.DocName, path)
			timer.Reset(ix.cfg.Debounce)
		case <-timer.C:
			manifest, err := ix.Build(ctx, req)
			if ctx.Err() != nil {
				return nil
			}
			onBuild(manifest, err)
		}
	}
}

// List returns manifests of all built indexes.
func (ix *Indexer) List(ctx context.Context) ([]domain.IndexManifest, error) {
	return ix.store.List(ctx)
}

// Remove deletes the named index. The corpus folder is kept.
func (ix *Indexer) Remove(ctx context.Context, docName string) error {
	docName = strings.TrimSpace(docName)
	if docName == "" {
		return fmt.Errorf("%w: index name", domain.ErrEmptyInput)
	}
	release, err := ix.acquire(docName)
	if err != nil {
		return err
	}
	defer release()
	return ix.store.Remove(ctx, docName)
}

// AddDocuments copies recognised files into the corpus folder of docName.
func (ix *Indexer) AddDocuments(ctx context.Context, docName string, paths []string) ([]string, error) {
	docName = strings.TrimSpace(docName)
	if docName == "" {
		return nil, fmt.Errorf("%w: index name", domain.ErrEmptyInput)
	}
	dir := ix.CorpusDir(docName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create corpus folder: %w", err)
	}

	var added []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if !domain.IsRecognisedFile(p) {
			return added, fmt.Errorf("%w: %s is not one of %s",
				domain.ErrInvalidInput, filepath.Base(p), strings.Join(domain.RecognisedExtensions(), ", "))
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return added, fmt.Errorf("%w: %s", domain.ErrNotFound, p)
			}
			return added, fmt.Errorf("read %s: %w", p, err)
		}
		name := filepath.Base(p)
		if err := renameio.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return added, fmt.Errorf("copy %s: %w", name, err)
		}
		added = append(added, name)
	}
	logger.Info("index %s: added %d documents to %s", docName, len(added), dir)
	return added, nil
}

// Files lists the recognised files in the corpus folder of docName,
// relative to that folder.
func (ix *Indexer) Files(ctx context.Context, docName string) ([]string, error) {
	dir := ix.CorpusDir(strings.TrimSpace(docName))
	docs, err := ix.corpus.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(docs))
	for _, d := range docs {
		rel, err := filepath.Rel(dir, d.Path)
		if err != nil {
			rel = d.Path
		}
		files = append(files, rel)
	}
	return files, nil
}

func newBuildVersion() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
