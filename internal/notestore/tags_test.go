package notestore

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/tagnote/internal/apperr"
)

func TestSaveTag_ThenFind(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.SaveTag(ctx, "ideas")
	if err != nil {
		t.Fatalf("SaveTag: %v", err)
	}
	got, found, err := s.FindTagIDByName(ctx, "ideas")
	if err != nil || !found || got != id {
		t.Fatalf("FindTagIDByName = %d, %v, %v; want %d", got, found, err, id)
	}
	name, found, err := s.FindTagNameByID(ctx, id)
	if err != nil || !found || name != "ideas" {
		t.Errorf("FindTagNameByID = %q, %v, %v", name, found, err)
	}

	all, _ := s.ListAllTagNames(ctx)
	count := 0
	for _, n := range all {
		if n == "ideas" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("ideas listed %d times", count)
	}
}

func TestSaveTag_DuplicateIsConstraintViolation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.SaveTag(ctx, "same"); err != nil {
		t.Fatal(err)
	}
	_, err := s.SaveTag(ctx, "same")
	if !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ErrConstraintViolation", err)
	}
	all, _ := s.ListAllTagNames(ctx)
	if len(all) != 1 {
		t.Errorf("tags = %v", all)
	}
}

func TestFindTag_Absent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, found, err := s.FindTagIDByName(ctx, "nope"); err != nil || found {
		t.Errorf("by name: found=%v err=%v", found, err)
	}
	if _, found, err := s.FindTagNameByID(ctx, 42); err != nil || found {
		t.Errorf("by id: found=%v err=%v", found, err)
	}
}

func TestDeleteTagByName_UnknownIsNoop(t *testing.T) {
	s := testStore(t)
	if err := s.DeleteTagByName(context.Background(), "ghost"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteTagByName_RemovesLinks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, _ := s.CreateNote(ctx, "a", "", "2024-01-01", []string{"gone", "kept"})
	b, _ := s.CreateNote(ctx, "b", "", "2024-01-01", []string{"gone"})

	if err := s.DeleteTagByName(ctx, "gone"); err != nil {
		t.Fatal(err)
	}
	tagsA, _ := s.ListTagNamesForNote(ctx, a.NoteID)
	equalSet(t, tagsA, []string{"kept"})
	tagsB, _ := s.ListTagNamesForNote(ctx, b.NoteID)
	if len(tagsB) != 0 {
		t.Errorf("tags for b = %v", tagsB)
	}
	if _, found, _ := s.FindTagIDByName(ctx, "gone"); found {
		t.Error("tag row still present")
	}
}

func TestRenameTag(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, _ := s.CreateNote(ctx, "n", "", "2024-01-01", []string{"old", "other"})
	oldID, _, _ := s.FindTagIDByName(ctx, "old")

	if err := s.RenameTag(ctx, "old", "new"); err != nil {
		t.Fatalf("RenameTag: %v", err)
	}
	tags, _ := s.ListTagNamesForNote(ctx, n.NoteID)
	equalSet(t, tags, []string{"new", "other"})

	if _, found, _ := s.FindTagIDByName(ctx, "old"); found {
		t.Error("old name still resolves")
	}
	newID, found, _ := s.FindTagIDByName(ctx, "new")
	if !found || newID != oldID {
		t.Errorf("new id = %d (found=%v), want %d", newID, found, oldID)
	}
}

func TestRenameTag_UnknownIsNoop(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.RenameTag(ctx, "missing", "whatever"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, found, _ := s.FindTagIDByName(ctx, "whatever"); found {
		t.Error("rename of a missing tag created a tag")
	}
}

func TestRenameTag_CollisionRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, _ := s.CreateNote(ctx, "n", "", "2024-01-01", []string{"a", "b"})

	err := s.RenameTag(ctx, "a", "b")
	if !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ErrConstraintViolation", err)
	}
	all, _ := s.ListAllTagNames(ctx)
	equalSet(t, all, []string{"a", "b"})
	tags, _ := s.ListTagNamesForNote(ctx, n.NoteID)
	equalSet(t, tags, []string{"a", "b"})
}

func TestRenameTag_AbortedTransactionLeavesNoTrace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n, _ := s.CreateNote(ctx, "n", "", "2024-01-01", []string{"old"})

	// Fail the link re-point, the second write of the rename.
	if _, err := s.conn.Exec(`
		CREATE TRIGGER block_repoint BEFORE UPDATE ON note_tags
		BEGIN SELECT RAISE(ABORT, 'blocked'); END;
	`); err != nil {
		t.Fatal(err)
	}

	if err := s.RenameTag(ctx, "old", "new"); err == nil {
		t.Fatal("expected rename to fail")
	}
	if _, found, _ := s.FindTagIDByName(ctx, "old"); !found {
		t.Error("name change was not rolled back")
	}
	tags, _ := s.ListTagNamesForNote(ctx, n.NoteID)
	equalSet(t, tags, []string{"old"})
}

func TestListTags_Counts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, _ = s.CreateNote(ctx, "a", "", "2024-01-01", []string{"x", "y"})
	_, _ = s.CreateNote(ctx, "b", "", "2024-01-01", []string{"x"})
	_, _ = s.SaveTag(ctx, "z")

	counts, err := s.ListTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"x": 2, "y": 1, "z": 0}
	if len(counts) != len(want) {
		t.Fatalf("counts = %+v", counts)
	}
	for _, c := range counts {
		if want[c.Name] != c.Notes {
			t.Errorf("%s: notes = %d, want %d", c.Name, c.Notes, want[c.Name])
		}
	}
}

func TestSplitTagNames(t *testing.T) {
	got := SplitTagNames(" home, errands,,home , ")
	if len(got) != 2 || got[0] != "home" || got[1] != "errands" {
		t.Errorf("SplitTagNames = %q", got)
	}
	if got := SplitTagNames(""); len(got) != 0 {
		t.Errorf("empty input = %q", got)
	}
}
