// Package indexfs stores named vector indexes on the local filesystem.
//
// Each name owns a directory holding one generation per build and a CURRENT
// file naming the active one:
//
//	<root>/<doc_name>/CURRENT
//	<root>/<doc_name>/gen-<version>/<doc_name>.npy
//	<root>/<doc_name>/gen-<version>/<doc_name>.json
//	<root>/<doc_name>/gen-<version>/<doc_name>_index.index
//	<root>/<doc_name>/gen-<version>/manifest.json
//
// A commit writes a complete generation and then replaces CURRENT in a single
// rename, so readers see either the old build or the new one.
package indexfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/custodia-labs/ragchat/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

const (
	currentFile  = "CURRENT"
	manifestFile = "manifest.json"
	genPrefix    = "gen-"
)

// Store is a filesystem-backed index store.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*nameLock
}

// nameLock guards one index name. commit serialises writers so that
// generation cleanup never removes a generation still being staged;
// rw keeps cleanup away from readers.
type nameLock struct {
	commit sync.Mutex
	rw     sync.RWMutex
}

// NewStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.ragchat/indexes.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragchat", "indexes")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("indexfs: creating index directory: %w", err)
	}

	return &Store{
		root:  dir,
		locks: make(map[string]*nameLock),
	}, nil
}

// Root returns the directory holding all indexes.
func (s *Store) Root() string {
	return s.root
}

// lockFor returns the lock guarding generations of one name.
func (s *Store) lockFor(docName string) *nameLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[docName]
	if !ok {
		l = &nameLock{}
		s.locks[docName] = l
	}
	return l
}

// Commit writes a new generation for the artifacts and makes it current.
func (s *Store) Commit(ctx context.Context, a *driven.IndexArtifacts) error {
	if a == nil {
		return fmt.Errorf("%w: nil artifacts", domain.ErrInvalidInput)
	}
	docName := a.Manifest.DocName
	if err := validateName(docName); err != nil {
		return err
	}
	if len(a.Matrix) != len(a.Texts) {
		return fmt.Errorf("%w: %d vectors for %d texts", domain.ErrIntegrity, len(a.Matrix), len(a.Texts))
	}
	if a.Manifest.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	manifest := a.Manifest
	if manifest.Version == "" {
		manifest.Version = newVersion()
	}
	manifest.Count = len(a.Texts)
	if manifest.BuiltAt.IsZero() {
		manifest.BuiltAt = time.Now().UTC()
	}

	l := s.lockFor(docName)
	l.commit.Lock()
	defer l.commit.Unlock()

	nameDir := filepath.Join(s.root, docName)
	genName := genPrefix + manifest.Version
	genDir := filepath.Join(nameDir, genName)

	if err := os.MkdirAll(genDir, 0700); err != nil {
		return fmt.Errorf("indexfs: creating generation: %w", err)
	}

	if err := s.stage(ctx, genDir, docName, &manifest, a); err != nil {
		os.RemoveAll(genDir)
		return err
	}

	// Swap and clean up under the write lock so no reader is inside a
	// generation that is about to disappear.
	l.rw.Lock()
	defer l.rw.Unlock()

	if err := renameio.WriteFile(filepath.Join(nameDir, currentFile), []byte(genName+"\n"), 0600); err != nil {
		os.RemoveAll(genDir)
		return fmt.Errorf("indexfs: swapping current generation: %w", err)
	}

	logger.Debug("indexfs: committed %s generation %s (%d docs)", docName, manifest.Version, manifest.Count)

	entries, err := os.ReadDir(nameDir)
	if err != nil {
		logger.Warn("indexfs: listing generations of %s: %v", docName, err)
		return nil
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), genPrefix) && e.Name() != genName {
			if err := os.RemoveAll(filepath.Join(nameDir, e.Name())); err != nil {
				logger.Warn("indexfs: removing old generation %s: %v", e.Name(), err)
			}
		}
	}

	return nil
}

// stage writes every artifact into genDir. The flat index is built from
// the matrix as read back from disk.
func (s *Store) stage(ctx context.Context, genDir, docName string, manifest *domain.IndexManifest, a *driven.IndexArtifacts) error {
	npyPath := filepath.Join(genDir, docName+".npy")
	if err := writeSynced(npyPath, func(f *os.File) error {
		return WriteNPY(f, a.Matrix, manifest.Dimensions)
	}); err != nil {
		return fmt.Errorf("indexfs: writing matrix: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	texts := a.Texts
	if texts == nil {
		texts = []string{}
	}
	if err := writeSynced(filepath.Join(genDir, docName+".json"), func(f *os.File) error {
		return json.NewEncoder(f).Encode(texts)
	}); err != nil {
		return fmt.Errorf("indexfs: writing texts: %w", err)
	}

	f, err := os.Open(npyPath)
	if err != nil {
		return fmt.Errorf("indexfs: reopening matrix: %w", err)
	}
	matrix, dim, err := ReadNPY(f)
	f.Close()
	if err != nil {
		return err
	}
	if dim != manifest.Dimensions {
		return fmt.Errorf("%w: matrix has %d columns, manifest says %d", domain.ErrIntegrity, dim, manifest.Dimensions)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	idx, err := flat.Build(dim, matrix)
	if err != nil {
		return fmt.Errorf("indexfs: building index: %w", err)
	}
	if err := idx.Save(filepath.Join(genDir, docName+"_index.index")); err != nil {
		return err
	}

	if err := writeSynced(filepath.Join(genDir, manifestFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	}); err != nil {
		return fmt.Errorf("indexfs: writing manifest: %w", err)
	}

	return syncDir(genDir)
}

// Load opens the current generation of docName.
func (s *Store) Load(ctx context.Context, docName string) (*driven.LoadedIndex, error) {
	if err := validateName(docName); err != nil {
		return nil, err
	}

	l := s.lockFor(docName)
	l.rw.RLock()
	defer l.rw.RUnlock()

	genDir, err := s.currentGeneration(docName)
	if err != nil {
		return nil, err
	}

	var texts []string
	if err := readJSON(filepath.Join(genDir, docName+".json"), &texts); err != nil {
		return nil, fmt.Errorf("indexfs: text manifest for %q: %w", docName, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, err := flat.Load(filepath.Join(genDir, docName+"_index.index"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("indexfs: index file for %q: %w", docName, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("indexfs: index file for %q: %w: %w", docName, domain.ErrIntegrity, err)
	}

	if idx.Len() != len(texts) {
		return nil, fmt.Errorf("%w: index %q has %d vectors but %d texts",
			domain.ErrIntegrity, docName, idx.Len(), len(texts))
	}

	var manifest domain.IndexManifest
	if err := readJSON(filepath.Join(genDir, manifestFile), &manifest); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("indexfs: manifest for %q: %w", docName, err)
		}
		// Older generations may lack a manifest; describe what is on disk.
		manifest = domain.IndexManifest{
			DocName:    docName,
			Version:    strings.TrimPrefix(filepath.Base(genDir), genPrefix),
			Dimensions: idx.Dimensions(),
			Count:      idx.Len(),
		}
	}

	return &driven.LoadedIndex{
		Manifest: manifest,
		Index:    idx,
		Texts:    texts,
	}, nil
}

// List returns the manifests of all committed indexes, sorted by name.
func (s *Store) List(ctx context.Context) ([]domain.IndexManifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.IndexManifest{}, nil
		}
		return nil, fmt.Errorf("indexfs: listing indexes: %w", err)
	}

	manifests := make([]domain.IndexManifest, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m, err := s.readManifest(e.Name())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			logger.Warn("indexfs: skipping %s: %v", e.Name(), err)
			continue
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].DocName < manifests[j].DocName
	})

	return manifests, nil
}

func (s *Store) readManifest(docName string) (domain.IndexManifest, error) {
	l := s.lockFor(docName)
	l.rw.RLock()
	defer l.rw.RUnlock()

	genDir, err := s.currentGeneration(docName)
	if err != nil {
		return domain.IndexManifest{}, err
	}

	var m domain.IndexManifest
	if err := readJSON(filepath.Join(genDir, manifestFile), &m); err != nil {
		return domain.IndexManifest{}, err
	}
	return m, nil
}

// Remove deletes docName and every generation it has.
func (s *Store) Remove(_ context.Context, docName string) error {
	if err := validateName(docName); err != nil {
		return err
	}

	l := s.lockFor(docName)
	l.commit.Lock()
	defer l.commit.Unlock()
	l.rw.Lock()
	defer l.rw.Unlock()

	if err := os.RemoveAll(filepath.Join(s.root, docName)); err != nil {
		return fmt.Errorf("indexfs: removing %q: %w", docName, err)
	}
	return nil
}

// currentGeneration resolves CURRENT for docName. Caller holds the name lock.
func (s *Store) currentGeneration(docName string) (string, error) {
	nameDir := filepath.Join(s.root, docName)

	data, err := os.ReadFile(filepath.Join(nameDir, currentFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("index %q: %w", docName, domain.ErrNotFound)
		}
		return "", fmt.Errorf("indexfs: reading current generation of %q: %w", docName, err)
	}

	gen := strings.TrimSpace(string(data))
	if !strings.HasPrefix(gen, genPrefix) || strings.ContainsAny(gen, `/\`) {
		return "", fmt.Errorf("%w: index %q has invalid current generation %q", domain.ErrIntegrity, docName, gen)
	}

	return filepath.Join(nameDir, gen), nil
}

func validateName(docName string) error {
	if docName == "" {
		return fmt.Errorf("%w: index name is required", domain.ErrInvalidInput)
	}
	if docName == "." || docName == ".." || strings.ContainsAny(docName, `/\`) || strings.HasPrefix(docName, ".") {
		return fmt.Errorf("%w: invalid index name %q", domain.ErrInvalidInput, docName)
	}
	return nil
}

func newVersion() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func writeSynced(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	// Some filesystems refuse fsync on directories.
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		logger.Debug("indexfs: sync %s: %v", dir, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	return nil
}
