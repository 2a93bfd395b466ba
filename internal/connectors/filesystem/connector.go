// Package filesystem reads corpus documents from a local folder.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.CorpusReader = (*Connector)(nil)

// Connector reads recognised text files from directories.
type Connector struct {
	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// New creates a filesystem connector.
func New() *Connector {
	return &Connector{}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Scan reads every recognised, non-hidden file under root in lexical path
// order. A file that cannot be read fails the whole scan.
func (c *Connector) Scan(ctx context.Context, root string) ([]domain.Document, error) {
	if err := validateRoot(root); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !domain.IsRecognisedFile(path) {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filesystem: scanning %s: %w", root, err)
	}

	// WalkDir already visits in lexical order; sort full paths so nested
	// files compare the same way regardless of separator placement.
	sort.Strings(paths)

	docs := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("filesystem: reading %s: %w", p, err)
		}
		docs = append(docs, domain.Document{Path: p, Text: string(data)})
	}

	logger.Debug("filesystem: scanned %d documents under %s", len(docs), root)
	return docs, nil
}

// Watch reports recognised files that are created, written, removed or
// renamed under root. New subdirectories are watched as they appear.
// The channel closes when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context, root string) (<-chan string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("filesystem: connector is closed")
	}
	c.mu.Unlock()

	if err := validateRoot(root); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem: creating watcher: %w", err)
	}

	if err := addRecursive(watcher, root); err != nil {
		watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		watcher.Close()
		return nil, errors.New("filesystem: connector is closed")
	}
	c.watchers = append(c.watchers, watcher)
	c.mu.Unlock()

	changes := make(chan string, 64)

	go func() {
		defer close(changes)
		defer c.release(watcher)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				path, ok := c.handleFsEvent(watcher, root, event)
				if !ok {
					continue
				}
				select {
				case changes <- path:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("filesystem: watch error under %s: %v", root, err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent converts a raw event into a changed document path.
// Directory creations extend the watch instead of producing a change.
// Hidden elements are judged relative to root.
func (c *Connector) handleFsEvent(watcher *fsnotify.Watcher, root string, event fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil || isHidden(rel) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if watcher != nil {
				if err := addRecursive(watcher, event.Name); err != nil {
					logger.Warn("filesystem: watching new directory %s: %v", event.Name, err)
				}
			}
			return "", false
		}
	}

	if !domain.IsRecognisedFile(event.Name) {
		return "", false
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return event.Name, true
	}
	return "", false
}

func (c *Connector) release(w *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.watchers {
		if x == w {
			c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
			break
		}
	}
	w.Close()
}

// Close stops every active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for _, w := range c.watchers {
		w.Close()
	}
	c.watchers = nil
	return nil
}

func validateRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: folder is required", domain.ErrInvalidInput)
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("filesystem: root path error: %s: %w", root, domain.ErrNotFound)
		}
		return fmt.Errorf("filesystem: root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}
	return nil
}

func addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("filesystem: watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
