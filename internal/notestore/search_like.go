//go:build !sqlite_fts5

package notestore

import (
	"context"
	"database/sql"
	"strings"
)

// Without FTS5 compiled in, search is a LIKE scan over notes.
// Triggers left behind by an FTS5 build would fail on every write here.
const searchSchemaSQL = `
DROP TRIGGER IF EXISTS notes_fts_ai;
DROP TRIGGER IF EXISTS notes_fts_ad;
DROP TRIGGER IF EXISTS notes_fts_au;
`

const searchColumns = `
	SELECT id, COALESCE(title, ''), COALESCE(text, ''), COALESCE(date, '')
	FROM notes
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchQuery requires every word to appear in the title or the text.
// Notes with more words in the title rank first.
func searchQuery(query string, limit int) (string, []any) {
	words := strings.Fields(query)
	where := make([]string, 0, len(words))
	rank := make([]string, 0, len(words))
	args := make([]any, 0, 3*len(words)+1)
	for _, w := range words {
		where = append(where, `(title LIKE ? ESCAPE '\' OR text LIKE ? ESCAPE '\')`)
		like := "%" + likeEscaper.Replace(w) + "%"
		args = append(args, like, like)
	}
	for _, w := range words {
		rank = append(rank, `(title LIKE ? ESCAPE '\')`)
		args = append(args, "%"+likeEscaper.Replace(w)+"%")
	}
	args = append(args, limit)
	q := searchColumns +
		" WHERE " + strings.Join(where, " AND ") +
		" ORDER BY " + strings.Join(rank, " + ") + " DESC, id LIMIT ?"
	return q, args
}

func initSearch(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, searchSchemaSQL)
	return err
}
