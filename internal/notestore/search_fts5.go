//go:build sqlite_fts5

package notestore

import (
	"context"
	"database/sql"
	"strings"
)

// notes_fts is an external-content index over notes kept current by triggers.
const searchSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
	title,
	text,
	content = 'notes',
	content_rowid = 'id',
	tokenize = 'unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS notes_fts_ai AFTER INSERT ON notes BEGIN
	INSERT INTO notes_fts (rowid, title, text) VALUES (new.id, new.title, new.text);
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_ad AFTER DELETE ON notes BEGIN
	INSERT INTO notes_fts (notes_fts, rowid, title, text) VALUES ('delete', old.id, old.title, old.text);
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_au AFTER UPDATE ON notes BEGIN
	INSERT INTO notes_fts (notes_fts, rowid, title, text) VALUES ('delete', old.id, old.title, old.text);
	INSERT INTO notes_fts (rowid, title, text) VALUES (new.id, new.title, new.text);
END;

INSERT INTO notes_fts (notes_fts) VALUES ('rebuild');
`

const searchSQL = `
	SELECT notes.id, COALESCE(notes.title, ''), COALESCE(notes.text, ''), COALESCE(notes.date, '')
	FROM notes_fts
	INNER JOIN notes ON notes.id = notes_fts.rowid
	WHERE notes_fts MATCH ?
	ORDER BY rank
	LIMIT ?
`

// searchQuery quotes every word so user input is never parsed as FTS5 syntax.
// Words are ANDed.
func searchQuery(query string, limit int) (string, []any) {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return searchSQL, []any{strings.Join(words, " "), limit}
}

func initSearch(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, searchSchemaSQL)
	return err
}
