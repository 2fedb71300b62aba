package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/tagnote/internal/noteservice"
	"github.com/starford/tagnote/internal/storage"
	"github.com/starford/tagnote/internal/testutil"
)

// inboxTestEnv sets up an inbox dir, its provider, and a note service.
func inboxTestEnv(t *testing.T) (string, storage.Provider, *noteservice.Service) {
	t.Helper()
	dir, provider := testutil.TestDir(t)
	svc := noteservice.NewService(testutil.TestStore(t), nil, nil)
	return dir, provider, svc
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestDrain_ImportsAndDeletes(t *testing.T) {
	dir, provider, svc := inboxTestEnv(t)
	ctx := context.Background()
	writeFile(t, dir, "groceries.md", "---\ntitle: Groceries\ndate: 2024-03-01\ntags: home, errands\n---\nmilk #dairy\n")

	st, err := Drain(ctx, svc, provider, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	if st.Imported != 1 || st.Rejected != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if exists(dir, "groceries.md") {
		t.Error("imported file should be removed")
	}

	notes, err := svc.ListNotes(ctx, "dairy")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("notes tagged dairy = %d, want 1", len(notes))
	}
	n := notes[0]
	if n.Title != "Groceries" || n.Date != "2024-03-01" || n.Text != "milk #dairy\n" || len(n.Tags) != 3 {
		t.Errorf("note = %+v", n)
	}
}

func TestDrain_DefaultsFromFile(t *testing.T) {
	dir, provider, svc := inboxTestEnv(t)
	ctx := context.Background()
	writeFile(t, dir, "plain.md", "no frontmatter here\n")
	mtime := time.Date(2023, 7, 14, 12, 0, 0, 0, time.Local)
	if err := os.Chtimes(filepath.Join(dir, "plain.md"), mtime, mtime); err != nil {
		t.Fatal(err)
	}

	if _, err := Drain(ctx, svc, provider, testutil.Logger()); err != nil {
		t.Fatal(err)
	}
	notes, _ := svc.ListNotes(ctx, "")
	if len(notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(notes))
	}
	if notes[0].Title != "plain" || notes[0].Date != "2023-07-14" {
		t.Errorf("note = %+v", notes[0])
	}
}

func TestDrain_RejectsBadFiles(t *testing.T) {
	dir, provider, svc := inboxTestEnv(t)
	ctx := context.Background()
	writeFile(t, dir, "broken.md", "---\n: invalid: yaml: {{{\n---\nbody\n")
	writeFile(t, dir, "baddate.md", "---\ntitle: x\ndate: March 1st\n---\nbody\n")
	writeFile(t, dir, "notes.txt", "ignored")

	st, err := Drain(ctx, svc, provider, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	if st.Rejected != 2 || st.Imported != 0 {
		t.Errorf("stats = %+v", st)
	}
	for _, name := range []string{"broken.md", "baddate.md"} {
		if exists(dir, name) || !exists(dir, filepath.Join(RejectedDir, name)) {
			t.Errorf("%s not moved to %s/", name, RejectedDir)
		}
	}
	if !exists(dir, "notes.txt") {
		t.Error("non-markdown file should be left alone")
	}

	// A second pass leaves rejected files where they are.
	st, _ = Drain(ctx, svc, provider, testutil.Logger())
	if st != (Stats{}) {
		t.Errorf("second pass stats = %+v", st)
	}
}

type failingCreator struct{}

func (failingCreator) CreateNote(context.Context, noteservice.NoteInput) (*noteservice.SaveOutcome, error) {
	return nil, errors.New("disk full")
}

func TestDrain_StorageFailureKeepsFile(t *testing.T) {
	dir, provider, _ := inboxTestEnv(t)
	writeFile(t, dir, "keep.md", "# Keep\n")

	st, err := Drain(context.Background(), failingCreator{}, provider, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	if st.Failed != 1 {
		t.Errorf("stats = %+v", st)
	}
	if !exists(dir, "keep.md") {
		t.Error("file should stay in the inbox for a retry")
	}
}

func TestWatch_ImportsExistingAndNewFiles(t *testing.T) {
	dir, provider, svc := inboxTestEnv(t)
	writeFile(t, dir, "before.md", "# Before\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, svc, provider, dir, testutil.Logger()) }()

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !exists(dir, "before.md")
	}, "existing file not imported on start")

	writeFile(t, dir, "after.md", "---\ntags: [later]\n---\n# After\n")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		notes, _ := svc.ListNotes(context.Background(), "later")
		return len(notes) == 1 && notes[0].Title == "After"
	}, "new file not imported by watcher")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after cancel")
	}
}
