package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/logger"
)

//go:embed defaults
var defaults embed.FS

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore reads prompt templates from <dir>/<name>.txt.
// The first Load seeds the directory with the built-in templates without
// overwriting edited files. A missing or empty file falls back to the built-in.
type PromptStore struct {
	dir string

	mu     sync.Mutex
	seeded bool
	cache  map[string]string
}

// NewPromptStore returns a store rooted at dir, or ~/.ragchat/prompts when dir is empty.
// No I/O happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragchat", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.cache[name]; ok {
		return p, nil
	}
	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			logger.Warn("prompts: %v", err)
		}
	}

	builtin, hasBuiltin := builtinPrompt(name)
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil && !hasBuiltin {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	p := strings.TrimSpace(string(data))
	switch {
	case p == "":
		p = builtin
	case name == driven.PromptQueryCompose && strings.Count(p, "%s") != 2:
		logger.Warn("prompts: %s.txt needs two %%s placeholders, using the built-in template", name)
		p = builtin
	}
	s.cache[name] = p
	return p, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// seed copies every built-in file that does not exist yet.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	entries, err := defaults.ReadDir("defaults")
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		target := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := defaults.ReadFile(path.Join("defaults", e.Name()))
		if err == nil {
			err = renameio.WriteFile(target, data, 0600)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func builtinPrompt(name string) (string, bool) {
	data, err := defaults.ReadFile(path.Join("defaults", name+".txt"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
