package notestore

import (
	"context"

	"github.com/starford/tagnote/internal/models"
)

// NoteStore defines the persistence operations over notes and tags.
// Consumers should depend on this interface rather than the concrete *Store.
type NoteStore interface {
	CreateNote(ctx context.Context, title, text, date string, tagNames []string) (SaveResult, error)
	UpdateNote(ctx context.Context, noteID int64, title, text, date string, tagNames []string) (SaveResult, error)
	DeleteNote(ctx context.Context, noteID int64) error
	GetNoteByID(ctx context.Context, noteID int64) (models.Note, bool, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	ListNotesByTag(ctx context.Context, tagName string) ([]models.Note, error)
	SearchNotes(ctx context.Context, query string, limit int) ([]models.Note, error)

	SaveTag(ctx context.Context, name string) (int64, error)
	FindTagIDByName(ctx context.Context, name string) (int64, bool, error)
	FindTagNameByID(ctx context.Context, id int64) (string, bool, error)
	ListAllTagNames(ctx context.Context) ([]string, error)
	ListTagNamesForNote(ctx context.Context, noteID int64) ([]string, error)
	ListTags(ctx context.Context) ([]models.TagCount, error)
	DeleteTagByName(ctx context.Context, name string) error
	RenameTag(ctx context.Context, oldName, newName string) error

	Close() error
}

// Verify *Store satisfies NoteStore at compile time.
var _ NoteStore = (*Store)(nil)
