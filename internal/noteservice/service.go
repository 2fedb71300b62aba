// Package noteservice coordinates the note store, input validation and change events.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/checksum"
	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/notestore"
)

// DateLayout is the shape of every note date.
const DateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Event kinds passed to EventPublisher.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventRenamed = "renamed"
)

// EventPublisher receives change notifications. sse.Broker implements it.
type EventPublisher interface {
	PublishNoteEvent(kind string, id int64)
	PublishTagEvent(kind, name string)
}

// NoteDetail is a note with its tags and content checksum.
type NoteDetail struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
	Checksum string   `json:"checksum"`
}

// NoteInput carries the editable fields of a note.
type NoteInput struct {
	Title string
	Text  string
	Date  string
	Tags  []string
}

// Validate checks field shapes. The date is checked for YYYY-MM-DD form only.
func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Length(0, 500)),
		validation.Field(&in.Date, validation.Match(dateRe).Error("must be in YYYY-MM-DD form")),
		validation.Field(&in.Tags, validation.Each(validation.Required, validation.Length(1, 100))),
	)
}

// SaveOutcome is returned by create and update. FailedTags is non-empty when
// the note was saved but some tags could not be linked.
type SaveOutcome struct {
	Note       *NoteDetail `json:"note"`
	FailedTags []string    `json:"failed_tags,omitempty"`
}

// Service coordinates store operations and change events.
type Service struct {
	store  notestore.NoteStore
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new note service. events may be nil; a nil logger
// falls back to slog.Default.
func NewService(store notestore.NoteStore, events EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, events: events, logger: logger, now: time.Now}
}

// GetNote returns a note with its tags, or apperr.ErrNotFound.
func (s *Service) GetNote(ctx context.Context, id int64) (*NoteDetail, error) {
	note, found, err := s.store.GetNoteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.ErrNotFound
	}
	return s.buildNoteDetail(ctx, note)
}

// ListNotes returns every note, or only those carrying tag when it is non-empty.
func (s *Service) ListNotes(ctx context.Context, tag string) ([]NoteDetail, error) {
	var (
		notes []models.Note
		err   error
	)
	if tag == "" {
		notes, err = s.store.ListNotes(ctx)
	} else {
		notes, err = s.store.ListNotesByTag(ctx, tag)
	}
	if err != nil {
		return nil, err
	}
	return s.details(ctx, notes)
}

// SearchNotes returns up to limit notes whose title or text match query.
func (s *Service) SearchNotes(ctx context.Context, query string, limit int) ([]NoteDetail, error) {
	notes, err := s.store.SearchNotes(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, notes)
}

func (s *Service) details(ctx context.Context, notes []models.Note) ([]NoteDetail, error) {
	out := make([]NoteDetail, 0, len(notes))
	for _, n := range notes {
		d, err := s.buildNoteDetail(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// CreateNote validates input, fills in today's date when none is given and
// stores the note.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (*SaveOutcome, error) {
	in, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	res, err := s.store.CreateNote(ctx, in.Title, in.Text, in.Date, in.Tags)
	if err != nil {
		return nil, err
	}
	s.publishNote(EventCreated, res.NoteID)
	return s.outcome(ctx, res)
}

// UpdateNote replaces a note's fields and tags. A non-empty ifMatch must equal
// the current checksum, otherwise apperr.ErrConflict is returned.
func (s *Service) UpdateNote(ctx context.Context, id int64, in NoteInput, ifMatch string) (*SaveOutcome, error) {
	in, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" {
		current, err := s.GetNote(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Checksum != ifMatch {
			return nil, apperr.ErrConflict
		}
	}
	res, err := s.store.UpdateNote(ctx, id, in.Title, in.Text, in.Date, in.Tags)
	if err != nil {
		return nil, err
	}
	s.publishNote(EventUpdated, id)
	return s.outcome(ctx, res)
}

// DeleteNote removes a note. Deleting an unknown id succeeds.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.publishNote(EventDeleted, id)
	return nil
}

// ListTags returns every tag with its note count.
func (s *Service) ListTags(ctx context.Context) ([]models.TagCount, error) {
	return s.store.ListTags(ctx)
}

// CreateTag adds a tag with no notes. A taken name yields
// apperr.ErrConstraintViolation.
func (s *Service) CreateTag(ctx context.Context, name string) (models.Tag, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return models.Tag{}, err
	}
	id, err := s.store.SaveTag(ctx, name)
	if err != nil {
		return models.Tag{}, err
	}
	s.publishTag(EventCreated, name)
	return models.Tag{ID: id, Name: name}, nil
}

// RenameTag renames oldName to newName across all notes.
func (s *Service) RenameTag(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if err := validateTagName(newName); err != nil {
		return err
	}
	if _, found, err := s.store.FindTagIDByName(ctx, oldName); err != nil {
		return err
	} else if !found {
		return apperr.ErrNotFound
	}
	if err := s.store.RenameTag(ctx, oldName, newName); err != nil {
		return err
	}
	s.publishTag(EventRenamed, newName)
	return nil
}

// DeleteTag removes a tag from every note and then the tag itself.
// Deleting an unknown name succeeds and publishes nothing.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	_, found, err := s.store.FindTagIDByName(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if err := s.store.DeleteTagByName(ctx, name); err != nil {
		return err
	}
	s.publishTag(EventDeleted, name)
	return nil
}

func (s *Service) prepare(in NoteInput) (NoteInput, error) {
	in.Tags = notestore.CleanTagNames(in.Tags)
	if in.Date == "" {
		in.Date = s.now().Format(DateLayout)
	}
	if err := in.Validate(); err != nil {
		return in, fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
	}
	return in, nil
}

func (s *Service) outcome(ctx context.Context, res notestore.SaveResult) (*SaveOutcome, error) {
	if res.Partial() {
		s.logger.Warn("note saved with missing tags",
			slog.Int64("note_id", res.NoteID),
			slog.Any("failed_tags", res.FailedNames()))
	}
	note, err := s.GetNote(ctx, res.NoteID)
	if err != nil {
		return nil, err
	}
	return &SaveOutcome{Note: note, FailedTags: res.FailedNames()}, nil
}

func (s *Service) buildNoteDetail(ctx context.Context, n models.Note) (*NoteDetail, error) {
	tags, err := s.store.ListTagNamesForNote(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	tags = nonNilSlice(tags)
	return &NoteDetail{
		ID:       n.ID,
		Title:    n.Title,
		Text:     n.Text,
		Date:     n.Date,
		Tags:     tags,
		Checksum: NoteChecksum(n, tags),
	}, nil
}

// NoteChecksum fingerprints a note's fields and its tag set (order-independent).
func NoteChecksum(n models.Note, tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return checksum.Fields(n.Title, n.Text, n.Date, strings.Join(sorted, "\x00"))
}

func validateTagName(name string) error {
	if err := validation.Validate(name, validation.Required, validation.Length(1, 100)); err != nil {
		return fmt.Errorf("%w: tag name %w", apperr.ErrInvalid, err)
	}
	return nil
}

func (s *Service) publishNote(kind string, id int64) {
	if s.events != nil {
		s.events.PublishNoteEvent(kind, id)
	}
}

func (s *Service) publishTag(kind, name string) {
	if s.events != nil {
		s.events.PublishTagEvent(kind, name)
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
