package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
)

// SaveTag inserts a new tag and returns its id. A name that already exists
// fails with apperr.ErrConstraintViolation.
func (s *Store) SaveTag(ctx context.Context, name string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `INSERT INTO tags (tag_name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("notestore: tag already exists", slog.String("tag", name))
			return 0, fmt.Errorf("notestore: save tag %q: %w", name, apperr.ErrConstraintViolation)
		}
		s.logger.Error("notestore: insert tag failed", slog.String("tag", name), slog.String("error", err.Error()))
		return 0, fmt.Errorf("notestore: save tag %q: %w: %w", name, apperr.ErrWriteFailure, err)
	}
	id, err := res.LastInsertId()
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("notestore: save tag %q: %w", name, apperr.ErrWriteFailure)
	}
	s.logger.Debug("notestore: tag inserted", slog.String("tag", name), slog.Int64("tag_id", id))
	return id, nil
}

// FindTagIDByName looks a tag up by exact name.
func (s *Store) FindTagIDByName(ctx context.Context, name string) (int64, bool, error) {
	return findTagID(ctx, s.conn, name)
}

func findTagID(ctx context.Context, q querier, name string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT tag_id FROM tags WHERE tag_name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("notestore: find tag %q: %w", name, err)
	}
	return id, true, nil
}

// FindTagNameByID looks a tag name up by id.
func (s *Store) FindTagNameByID(ctx context.Context, id int64) (string, bool, error) {
	var name sql.NullString
	err := s.conn.QueryRowContext(ctx, `SELECT tag_name FROM tags WHERE tag_id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("notestore: find tag %d: %w", id, err)
	}
	return name.String, true, nil
}

// ListAllTagNames returns every tag name in table scan order.
func (s *Store) ListAllTagNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT COALESCE(tag_name, '') FROM tags`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list tags: %w", err)
	}
	return scanNames(rows)
}

// ListTagNamesForNote returns the names of the tags linked to noteID.
func (s *Store) ListTagNamesForNote(ctx context.Context, noteID int64) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT COALESCE(tags.tag_name, '')
		FROM tags
		INNER JOIN note_tags ON tags.tag_id = note_tags.tag_id
		WHERE note_tags.note_id = ?
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("notestore: tags for note %d: %w", noteID, err)
	}
	return scanNames(rows)
}

// ListTags returns every tag with its note count, ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]models.TagCount, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT tags.tag_id, COALESCE(tags.tag_name, ''), COUNT(note_tags.note_id)
		FROM tags
		LEFT JOIN note_tags ON note_tags.tag_id = tags.tag_id
		GROUP BY tags.tag_id
		ORDER BY tags.tag_name
	`)
	if err != nil {
		return nil, fmt.Errorf("notestore: tag counts: %w", err)
	}
	defer rows.Close()

	var out []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.ID, &tc.Name, &tc.Notes); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// DeleteTagByName unlinks the tag from every note and removes it.
// An unknown name is a no-op.
func (s *Store) DeleteTagByName(ctx context.Context, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		tagID, found, err := findTagID(ctx, tx, name)
		if err != nil || !found {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE tag_id = ?`, tagID); err != nil {
			return fmt.Errorf("notestore: delete tag links %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE tag_id = ?`, tagID); err != nil {
			return fmt.Errorf("notestore: delete tag %q: %w", name, err)
		}
		return nil
	})
}

// RenameTag changes a tag's name and re-points its links, atomically.
// An unknown oldName is a no-op; a newName that is already taken fails with
// apperr.ErrConstraintViolation and leaves everything unchanged.
func (s *Store) RenameTag(ctx context.Context, oldName, newName string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		oldID, found, err := findTagID(ctx, tx, oldName)
		if err != nil || !found {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE tags SET tag_name = ? WHERE tag_name = ?`, newName, oldName); err != nil {
			if isUniqueViolation(err) {
				s.logger.Warn("notestore: rename target already exists",
					slog.String("from", oldName), slog.String("to", newName))
				return fmt.Errorf("notestore: rename tag %q to %q: %w", oldName, newName, apperr.ErrConstraintViolation)
			}
			return fmt.Errorf("notestore: rename tag %q: %w", oldName, err)
		}

		newID, found, err := findTagID(ctx, tx, newName)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("notestore: tag %q missing after rename: %w", newName, apperr.ErrWriteFailure)
		}
		// The id survives an in-place rename, so this normally touches rows
		// without changing them.
		if _, err := tx.ExecContext(ctx, `UPDATE note_tags SET tag_id = ? WHERE tag_id = ?`, newID, oldID); err != nil {
			return fmt.Errorf("notestore: re-point tag links: %w", err)
		}
		return nil
	})
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
