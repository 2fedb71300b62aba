package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/tagnote/internal/checksum"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\ntitle: Hello\n---\nWorld\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("rejected/c.md", []byte("bad")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.root, "rejected", "c.md")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("del.md"); err == nil {
		t.Error("expected error deleting a missing file")
	}
}

func TestMoveIntoSubdir(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "rejected/old.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("rejected/old.md")
	if err != nil || string(got) != "data" {
		t.Fatalf("Read after move = %q, %v", got, err)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList_TopLevelMarkdownOnly(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("rejected/b.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not md"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "a.md" {
		t.Fatalf("items = %+v, want only a.md", items)
	}
	if items[0].Checksum != checksum.Sum([]byte("a")) {
		t.Errorf("checksum = %s", items[0].Checksum)
	}
	if items[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	sub, err := s.List("rejected")
	if err != nil || len(sub) != 1 || sub[0].Path != "rejected/b.md" {
		t.Errorf("List(rejected) = %+v, %v", sub, err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if err := s.Move("a.md", p); err == nil {
			t.Errorf("expected error for move to %q", p)
		}
	}
}

func TestOverwriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".tagnote-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(p); err == nil {
		t.Error("expected error when root is a file")
	}
}
