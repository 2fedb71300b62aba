// Package export writes every note out as a Markdown file.
package export

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/notestore"
	"github.com/starford/tagnote/internal/parser"
	"github.com/starford/tagnote/internal/storage"
)

// Source is the read side of the note store used by the exporter.
type Source interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	ListTagNamesForNote(ctx context.Context, noteID int64) ([]string, error)
}

var _ Source = (notestore.NoteStore)(nil)

// Run writes each note to "<id>-<slug>.md" and returns the number of files written.
// Existing files with the same name are overwritten.
func Run(ctx context.Context, src Source, dst storage.Provider) (int, error) {
	notes, err := src.ListNotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: list notes: %w", err)
	}
	written := 0
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		tags, err := src.ListTagNamesForNote(ctx, n.ID)
		if err != nil {
			return written, fmt.Errorf("export: tags for note %d: %w", n.ID, err)
		}
		data, err := parser.Render(n, tags)
		if err != nil {
			return written, fmt.Errorf("export: note %d: %w", n.ID, err)
		}
		if err := dst.Write(FileName(n.ID, n.Title), data); err != nil {
			return written, fmt.Errorf("export: note %d: %w", n.ID, err)
		}
		written++
	}
	return written, nil
}

const maxSlugLen = 60

// FileName returns the export file name for a note.
func FileName(id int64, title string) string {
	if s := slug(title); s != "" {
		return fmt.Sprintf("%d-%s.md", id, s)
	}
	return fmt.Sprintf("%d.md", id)
}

// slug lowercases title and joins its letter/digit runs with hyphens.
func slug(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			if b.Len() >= maxSlugLen {
				break
			}
			continue
		}
		pendingDash = true
	}
	return b.String()
}
