// Package inbox imports Markdown files dropped into a directory as notes.
//
// Every top-level .md file is parsed and created as a note. Imported files
// are deleted. Files that cannot be parsed, or whose metadata fails
// validation, are moved to the rejected/ subdirectory. Files that fail for
// any other reason (storage faults) stay in place and are retried on the
// next pass.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/noteservice"
	"github.com/starford/tagnote/internal/parser"
	"github.com/starford/tagnote/internal/storage"
)

// RejectedDir is the subdirectory that receives files that could not be imported.
const RejectedDir = "rejected"

// Creator is the part of the note service the importer needs.
type Creator interface {
	CreateNote(ctx context.Context, in noteservice.NoteInput) (*noteservice.SaveOutcome, error)
}

// Stats summarises one drain pass.
type Stats struct {
	Imported int
	Rejected int
	Failed   int
}

// Drain imports every .md file currently at the top level of the inbox.
func Drain(ctx context.Context, c Creator, store storage.Provider, logger *slog.Logger) (Stats, error) {
	var st Stats
	metas, err := store.List("")
	if err != nil {
		return st, fmt.Errorf("inbox: list: %w", err)
	}
	for _, m := range metas {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		switch err := importFile(ctx, c, store, m, logger); {
		case err == nil:
			st.Imported++
			logger.Info("inbox: imported", slog.String("path", m.Path))
		case errors.Is(err, errRejected):
			st.Rejected++
			logger.Warn("inbox: rejected", slog.String("path", m.Path), slog.String("error", err.Error()))
			if mvErr := store.Move(m.Path, path.Join(RejectedDir, path.Base(m.Path))); mvErr != nil {
				logger.Error("inbox: move to rejected failed", slog.String("path", m.Path), slog.String("error", mvErr.Error()))
			}
		default:
			st.Failed++
			logger.Error("inbox: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}
	return st, nil
}

var errRejected = errors.New("rejected")

func importFile(ctx context.Context, c Creator, store storage.Provider, m models.FileMetadata, logger *slog.Logger) error {
	data, err := store.Read(m.Path)
	if err != nil {
		return err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %w", errRejected, err)
	}

	in := noteservice.NoteInput{
		Title: res.Title,
		Text:  res.Body,
		Date:  res.Date,
		Tags:  res.Tags,
	}
	if in.Title == "" {
		in.Title = strings.TrimSuffix(path.Base(m.Path), ".md")
	}
	if in.Date == "" && !m.UpdatedAt.IsZero() {
		in.Date = m.UpdatedAt.Local().Format(noteservice.DateLayout)
	}

	out, err := c.CreateNote(ctx, in)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			return fmt.Errorf("%w: %w", errRejected, err)
		}
		return err
	}
	if len(out.FailedTags) > 0 {
		logger.Warn("inbox: some tags were not linked",
			slog.String("path", m.Path),
			slog.Any("tags", out.FailedTags))
	}

	// A failed delete would import the file again next pass.
	if err := store.Delete(m.Path); err != nil {
		return fmt.Errorf("inbox: remove imported file: %w", err)
	}
	return nil
}
