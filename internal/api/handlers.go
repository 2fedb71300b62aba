package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagnote/internal/models"
	"github.com/starford/tagnote/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, filtered by tag or by a text search
//	@Tags			notes
//	@Produce		json
//	@Param			tag		query		string	false	"Filter by tag name"
//	@Param			q		query		string	false	"Search title and text (takes precedence over tag)"
//	@Param			limit	query		int		false	"Max search results (default 20)"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		notes []NoteDetail
		err   error
	)
	if query := q.Get("q"); query != "" {
		limit, _ := strconv.Atoi(q.Get("limit"))
		notes, err = h.svc.SearchNotes(r.Context(), query, limit)
	} else {
		notes, err = h.svc.ListNotes(r.Context(), q.Get("tag"))
	}
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Description	Tags that could not be linked are listed in failed_tags; the note is still created.
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	SaveResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.svc.CreateNote(r.Context(), req.input())
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	w.Header().Set("ETag", `"`+out.Note.Checksum+`"`)
	writeJSON(w, http.StatusCreated, out)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace a note's fields and tags
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int			true	"Note id"
//	@Param			If-Match	header		string		false	"Checksum for optimistic concurrency"
//	@Param			body		body		NoteRequest	true	"New content"
//	@Success		200			{object}	SaveResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	out, err := h.svc.UpdateNote(r.Context(), id, req.input(), ifMatch)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	w.Header().Set("ETag", `"`+out.Note.Checksum+`"`)
	writeJSON(w, http.StatusOK, out)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note (idempotent)
//	@Tags			notes
//	@Param			id	path	int	true	"Note id"
//	@Success		204	"Note deleted"
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/tags.
//
//	@Summary		List tags with note counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// CreateTag handles POST /api/tags.
//
//	@Summary		Create a tag
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TagRequest	true	"Tag to create"
//	@Success		201		{object}	models.Tag
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags [post]
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, "create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// RenameTag handles PUT /api/tags/{name}.
//
//	@Summary		Rename a tag on every note
//	@Tags			tags
//	@Accept			json
//	@Param			name	path	string		true	"Current tag name"
//	@Param			body	body	TagRequest	true	"New name"
//	@Success		204		"Tag renamed"
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/{name} [put]
func (h *Handler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.RenameTag(r.Context(), tagName(r), req.Name); err != nil {
		writeError(w, "rename tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTag handles DELETE /api/tags/{name}.
//
//	@Summary		Delete a tag and unlink it from every note (idempotent)
//	@Tags			tags
//	@Param			name	path	string	true	"Tag name"
//	@Success		204		"Tag deleted"
//	@Security		BearerAuth
//	@Router			/tags/{name} [delete]
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTag(r.Context(), tagName(r)); err != nil {
		writeError(w, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tagName returns the {name} URL parameter. chi matches on r.URL.Path, which
// is already decoded, unless RawPath is set; only then is the segment escaped.
func tagName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
