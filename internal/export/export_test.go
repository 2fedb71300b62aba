package export

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/starford/tagnote/internal/parser"
	"github.com/starford/tagnote/internal/testutil"
)

func TestRun_WritesEveryNote(t *testing.T) {
	ctx := context.Background()
	store := testutil.TestStore(t)
	dir, provider := testutil.TestDir(t)

	if _, err := store.CreateNote(ctx, "Groceries: weekly!", "milk\n", "2024-03-01", []string{"home", "errands"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateNote(ctx, "", "untitled", "2024-03-02", nil); err != nil {
		t.Fatal(err)
	}

	n, err := Run(ctx, store, provider)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	data, err := os.ReadFile(filepath.Join(dir, "1-groceries-weekly.md"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "Groceries: weekly!" || res.Date != "2024-03-01" || res.Body != "milk\n" {
		t.Errorf("parsed = %+v", res)
	}
	if !slices.Equal(res.Tags, []string{"home", "errands"}) {
		t.Errorf("tags = %v", res.Tags)
	}

	if _, err := os.Stat(filepath.Join(dir, "2.md")); err != nil {
		t.Errorf("untitled note not exported as 2.md: %v", err)
	}
}

func TestRun_Empty(t *testing.T) {
	_, provider := testutil.TestDir(t)
	n, err := Run(context.Background(), testutil.TestStore(t), provider)
	if err != nil || n != 0 {
		t.Errorf("Run = %d, %v", n, err)
	}
}

func TestFileName(t *testing.T) {
	cases := []struct{ title, want string }{
		{"Hello World", "7-hello-world.md"},
		{"  --Trim me--  ", "7-trim-me.md"},
		{"Заметки о Go", "7-заметки-о-go.md"},
		{"!!!", "7.md"},
		{`a/b\c..d`, "7-a-b-c-d.md"},
	}
	for _, c := range cases {
		if got := FileName(7, c.title); got != c.want {
			t.Errorf("FileName(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}
