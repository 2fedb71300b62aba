package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
)

// CreateNote inserts a note and links it to tagNames, creating missing tags on
// the way. A tag that cannot be created or linked is logged and reported in
// the result; the note itself is kept.
func (s *Store) CreateNote(ctx context.Context, title, text, date string, tagNames []string) (SaveResult, error) {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO notes (title, text, date) VALUES (?, ?, ?)`, title, text, date)
	if err != nil {
		s.logger.Error("notestore: insert note failed", slog.String("error", err.Error()))
		return SaveResult{}, fmt.Errorf("notestore: insert note: %w: %w", apperr.ErrWriteFailure, err)
	}
	noteID, err := res.LastInsertId()
	if err != nil || noteID <= 0 {
		s.logger.Error("notestore: insert note returned no id")
		return SaveResult{}, fmt.Errorf("notestore: insert note: %w", apperr.ErrWriteFailure)
	}

	result := SaveResult{NoteID: noteID}
	s.linkTags(ctx, &result, tagNames)
	return result, nil
}

// UpdateNote rewrites the note's fields and replaces its whole tag set with
// tagNames. An unknown id yields apperr.ErrNotFound and changes nothing.
func (s *Store) UpdateNote(ctx context.Context, noteID int64, title, text, date string, tagNames []string) (SaveResult, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE notes SET title = ?, text = ?, date = ? WHERE id = ?`, title, text, date, noteID)
	if err != nil {
		s.logger.Error("notestore: update note failed", slog.Int64("note_id", noteID), slog.String("error", err.Error()))
		return SaveResult{}, fmt.Errorf("notestore: update note %d: %w: %w", noteID, apperr.ErrWriteFailure, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return SaveResult{}, fmt.Errorf("notestore: update note %d: %w", noteID, apperr.ErrNotFound)
	}

	if _, err := s.conn.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return SaveResult{}, fmt.Errorf("notestore: clear note tags %d: %w", noteID, err)
	}

	result := SaveResult{NoteID: noteID}
	s.linkTags(ctx, &result, tagNames)
	return result, nil
}

// linkTags runs lookup-or-create-and-link for every distinct name.
func (s *Store) linkTags(ctx context.Context, result *SaveResult, tagNames []string) {
	for _, name := range uniqueNames(tagNames) {
		tagID, err := s.ensureTag(ctx, name)
		if err == nil {
			_, err = s.conn.ExecContext(ctx,
				`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, result.NoteID, tagID)
		}
		if err != nil {
			s.logger.Warn("notestore: failed to get or create tag",
				slog.Int64("note_id", result.NoteID),
				slog.String("tag", name),
				slog.String("error", err.Error()))
			result.Failed = append(result.Failed, TagFailure{Name: name, Err: err})
			continue
		}
		result.Linked = append(result.Linked, name)
	}
}

// ensureTag returns the id of the named tag, inserting it first if needed.
func (s *Store) ensureTag(ctx context.Context, name string) (int64, error) {
	id, found, err := findTagID(ctx, s.conn, name)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	// Someone else may have created it since the lookup; the re-lookup below
	// settles either way.
	if _, err := s.conn.ExecContext(ctx, `INSERT INTO tags (tag_name) VALUES (?)`, name); err != nil && !isUniqueViolation(err) {
		return 0, fmt.Errorf("notestore: insert tag %q: %w: %w", name, apperr.ErrWriteFailure, err)
	}
	id, found, err = findTagID(ctx, s.conn, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("notestore: tag %q missing after insert: %w", name, apperr.ErrWriteFailure)
	}
	return id, nil
}

// DeleteNote removes the note's links and then the note. Unknown ids are a no-op.
func (s *Store) DeleteNote(ctx context.Context, noteID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
			return fmt.Errorf("notestore: delete note tags %d: %w", noteID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, noteID); err != nil {
			return fmt.Errorf("notestore: delete note %d: %w", noteID, err)
		}
		return nil
	})
}

// GetNoteByID fetches a single note. found is false when no such row exists.
func (s *Store) GetNoteByID(ctx context.Context, noteID int64) (models.Note, bool, error) {
	var n models.Note
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, COALESCE(title, ''), COALESCE(text, ''), COALESCE(date, '')
		FROM notes
		WHERE id = ?
	`, noteID).Scan(&n.ID, &n.Title, &n.Text, &n.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, false, nil
	}
	if err != nil {
		return models.Note{}, false, fmt.Errorf("notestore: get note %d: %w", noteID, err)
	}
	return n, true, nil
}

// ListNotes returns every note in id order.
func (s *Store) ListNotes(ctx context.Context) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, COALESCE(title, ''), COALESCE(text, ''), COALESCE(date, '')
		FROM notes
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list notes: %w", err)
	}
	return scanNotes(rows)
}

// ListNotesByTag returns the notes linked to the named tag, in id order.
func (s *Store) ListNotesByTag(ctx context.Context, tagName string) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT notes.id, COALESCE(notes.title, ''), COALESCE(notes.text, ''), COALESCE(notes.date, '')
		FROM notes
		INNER JOIN note_tags ON notes.id = note_tags.note_id
		INNER JOIN tags ON note_tags.tag_id = tags.tag_id
		WHERE tags.tag_name = ?
		ORDER BY notes.id
	`, tagName)
	if err != nil {
		return nil, fmt.Errorf("notestore: list notes by tag: %w", err)
	}
	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()
	var out []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Text, &n.Date); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
