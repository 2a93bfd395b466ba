package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew(t *testing.T) {
	t.Run("implements CorpusReader interface", func(t *testing.T) {
		connector := New()
		var _ driven.CorpusReader = connector
		assert.Equal(t, "filesystem", connector.Type())
	})
}

func TestConnector_Scan(t *testing.T) {
	t.Run("reads recognised files in lexical order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.md"), "beta gamma")
		writeFile(t, filepath.Join(dir, "a.txt"), "alpha beta")
		writeFile(t, filepath.Join(dir, "sub", "c.json"), `{"k":"v"}`)
		writeFile(t, filepath.Join(dir, "sub", "d.MDX"), "upper case ext")

		docs, err := New().Scan(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, docs, 4)

		assert.Equal(t, filepath.Join(dir, "a.txt"), docs[0].Path)
		assert.Equal(t, "alpha beta", docs[0].Text)
		assert.Equal(t, filepath.Join(dir, "b.md"), docs[1].Path)
		assert.Equal(t, filepath.Join(dir, "sub", "c.json"), docs[2].Path)
		assert.Equal(t, filepath.Join(dir, "sub", "d.MDX"), docs[3].Path)
	})

	t.Run("skips unrecognised and hidden files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "keep.md"), "keep")
		writeFile(t, filepath.Join(dir, "image.png"), "binary")
		writeFile(t, filepath.Join(dir, "code.go"), "package x")
		writeFile(t, filepath.Join(dir, ".hidden.md"), "hidden")
		writeFile(t, filepath.Join(dir, ".git", "notes.txt"), "hidden dir")

		docs, err := New().Scan(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "keep", docs[0].Text)
	})

	t.Run("scans a root inside a hidden directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), ".ragchat", "corpus")
		writeFile(t, filepath.Join(dir, "doc.txt"), "text")

		docs, err := New().Scan(context.Background(), dir)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("empty directory yields no documents", func(t *testing.T) {
		docs, err := New().Scan(context.Background(), t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("missing directory is not found", func(t *testing.T) {
		_, err := New().Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("file root is invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, path, "x")

		_, err := New().Scan(context.Background(), path)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty root is invalid", func(t *testing.T) {
		_, err := New().Scan(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unreadable file fails the scan", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root can read any file")
		}
		dir := t.TempDir()
		path := filepath.Join(dir, "locked.txt")
		writeFile(t, path, "secret")
		require.NoError(t, os.Chmod(path, 0000))
		t.Cleanup(func() { os.Chmod(path, 0644) })

		_, err := New().Scan(context.Background(), dir)
		assert.Error(t, err)
	})

	t.Run("cancelled context stops the scan", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New().Scan(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		dir := t.TempDir()
		connector := New()
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx, dir)
		require.NoError(t, err)

		testFile := filepath.Join(dir, "new-file.txt")
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(testFile, []byte("content"), 0644)
		}()

		select {
		case path := <-changes:
			assert.Equal(t, testFile, path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("reports files in new subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		connector := New()
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx, dir)
		require.NoError(t, err)

		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))
		time.Sleep(100 * time.Millisecond)

		testFile := filepath.Join(sub, "nested.md")
		require.NoError(t, os.WriteFile(testFile, []byte("nested"), 0644))

		deadline := time.After(2 * time.Second)
		for {
			select {
			case path := <-changes:
				if path == testFile {
					return
				}
			case <-deadline:
				t.Fatal("timeout waiting for nested file event")
			}
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := New().Watch(context.Background(), "/non/existent/path")

		assert.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		connector := New()
		defer connector.Close()

		ctx, cancel := context.WithCancel(context.Background())
		changes, err := connector.Watch(ctx, t.TempDir())
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changes:
			if ok {
				for range changes {
				}
			}
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when connector is closed", func(t *testing.T) {
		connector := New()
		require.NoError(t, connector.Close())

		changes, err := connector.Watch(context.Background(), t.TempDir())

		assert.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "closed")
	})
}

func TestConnector_Close(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		connector := New()

		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
	})

	t.Run("close ends active watches", func(t *testing.T) {
		connector := New()
		changes, err := connector.Watch(context.Background(), t.TempDir())
		require.NoError(t, err)

		require.NoError(t, connector.Close())

		select {
		case _, ok := <-changes:
			if ok {
				for range changes {
				}
			}
		case <-time.After(time.Second):
			t.Fatal("channel did not close after Close")
		}
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
		{"directory.name/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		dir       bool
		create    bool
		operation fsnotify.Op
		expected  bool
	}{
		{name: "create recognised file", file: "doc.md", create: true, operation: fsnotify.Create, expected: true},
		{name: "write recognised file", file: "doc.txt", create: true, operation: fsnotify.Write, expected: true},
		{name: "remove recognised file", file: "gone.json", operation: fsnotify.Remove, expected: true},
		{name: "rename recognised file", file: "moved.mdx", operation: fsnotify.Rename, expected: true},
		{name: "chmod is ignored", file: "doc.md", create: true, operation: fsnotify.Chmod},
		{name: "unrecognised extension", file: "image.png", create: true, operation: fsnotify.Create},
		{name: "hidden file", file: ".draft.md", create: true, operation: fsnotify.Create},
		{name: "directory create", file: "subdir", dir: true, operation: fsnotify.Create},
		{name: "write with chmod", file: "doc.md", create: true, operation: fsnotify.Write | fsnotify.Chmod, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.dir {
				require.NoError(t, os.Mkdir(path, 0755))
			} else if tt.create {
				writeFile(t, path, "content")
			}

			got, ok := New().handleFsEvent(nil, dir, fsnotify.Event{Name: path, Op: tt.operation})
			assert.Equal(t, tt.expected, ok)
			if tt.expected {
				assert.Equal(t, path, got)
			}
		})
	}
}
