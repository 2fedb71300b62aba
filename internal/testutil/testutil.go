// Package testutil provides shared test helpers for setting up stores and directories.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/tagnote/internal/notestore"
	"github.com/starford/tagnote/internal/storage"
)

// Logger returns a logger that only reports errors, to keep test output quiet.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestStore opens a note store in a temporary file that is cleaned up with the test.
func TestStore(t *testing.T) *notestore.Store {
	t.Helper()
	store, err := notestore.Open(filepath.Join(t.TempDir(), "tagnote-test.db"), Logger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestDir creates a temporary directory with a storage.Provider rooted at it.
func TestDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	provider, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, provider
}
