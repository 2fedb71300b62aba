package notestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/tagnote/internal/models"
)

// DefaultSearchLimit caps SearchNotes when the caller passes limit <= 0.
const DefaultSearchLimit = 20

// SearchNotes returns notes whose title or text match query, best match first.
// A blank query matches nothing.
func (s *Store) SearchNotes(ctx context.Context, query string, limit int) ([]models.Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q, args := searchQuery(query, limit)
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("notestore: search: %w", err)
	}
	return scanNotes(rows)
}
