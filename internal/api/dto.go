package api

import (
	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/noteservice"
	"github.com/starford/tagnote/internal/notestore"
)

// NoteRequest is the request body for creating or updating a note.
// Tags may be given as a list, as a comma-delimited string, or both.
type NoteRequest struct {
	Title     string   `json:"title" example:"Groceries"`
	Text      string   `json:"text" example:"milk, eggs"`
	Date      string   `json:"date,omitempty" example:"2024-03-01"`
	Tags      []string `json:"tags,omitempty" example:"home,errands"`
	TagsInput string   `json:"tags_input,omitempty" example:"home, errands"`
}

func (r NoteRequest) input() noteservice.NoteInput {
	tags := append([]string(nil), r.Tags...)
	if r.TagsInput != "" {
		tags = append(tags, notestore.SplitTagNames(r.TagsInput)...)
	}
	return noteservice.NoteInput{
		Title: r.Title,
		Text:  r.Text,
		Date:  r.Date,
		Tags:  tags,
	}
}

// TagRequest is the request body for creating or renaming a tag.
type TagRequest struct {
	Name string `json:"name" example:"errands" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// SaveResponse is returned by create and update.
type SaveResponse = noteservice.SaveOutcome

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteDetail `json:"notes" validate:"required"`
	Total int          `json:"total" example:"42" validate:"required"`
}

// TagListResponse wraps tag listings.
type TagListResponse struct {
	Tags []models.TagCount `json:"tags" validate:"required"`
}
