// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Tagnote tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tagnote/internal/apperr"
	"github.com/starford/tagnote/internal/noteservice"
	"github.com/starford/tagnote/internal/notestore"
)

const noteFormatURI = "tagnote://note-format"

// Server wraps the MCP server with Tagnote tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Tagnote tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Tagnote",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, or only the notes carrying a given tag."),
		mcp.WithString("tag", mcp.Description("Optional exact tag name to filter by")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search note titles and text. Every word must match."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note with its tags and checksum."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Unknown tags are created on the fly. "+
			"Tags that cannot be linked are reported in failed_tags; the note is kept."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("text", mcp.Description("Note body")),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD, defaults to today")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names, e.g. \"home, errands\"")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace a note's fields and its whole tag set."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("text", mcp.Description("Note body")),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD, defaults to today")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names; empty clears all tags")),
		mcp.WithString("if_match", mcp.Description("Checksum from read_note; the update fails if the note changed since")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note and its tag links. Deleting a missing note is not an error."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List all tags with the number of notes using each."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("rename_tag",
		mcp.WithDescription("Rename a tag. Every note keeps its link under the new name."),
		mcp.WithString("old", mcp.Required(), mcp.Description("Current tag name")),
		mcp.WithString("new", mcp.Required(), mcp.Description("New tag name, must not exist yet")),
	), s.renameTag)

	s.mcp.AddTool(mcp.NewTool("delete_tag",
		mcp.WithDescription("Delete a tag and unlink it from every note. Notes are kept."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tag name")),
	), s.deleteTag)

	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Note Format",
			mcp.WithResourceDescription("Markdown format used by the inbox importer and the exporter."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.ListNotes(ctx, req.GetString("tag", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(notes)
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.SearchNotes(ctx, query, 0)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(notes)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := noteInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.CreateNote(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out)
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := noteInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.UpdateNote(ctx, id, in, req.GetString("if_match", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.ListTags(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(tags)
}

func (s *Server) renameTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldName, err := req.RequireString("old")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := req.RequireString("new")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RenameTag(ctx, oldName, newName); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s -> %s", oldName, newName)), nil
}

func (s *Server) deleteTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteTag(ctx, name); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", name)), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func requireID(req mcp.CallToolRequest) (int64, error) {
	f, err := req.RequireFloat("id")
	if err != nil {
		return 0, err
	}
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid note id: %v", f)
	}
	return int64(f), nil
}

func noteInput(req mcp.CallToolRequest) (noteservice.NoteInput, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return noteservice.NoteInput{}, err
	}
	return noteservice.NoteInput{
		Title: title,
		Text:  req.GetString("text", ""),
		Date:  req.GetString("date", ""),
		Tags:  notestore.SplitTagNames(req.GetString("tags", "")),
	}, nil
}

// toolError turns a service error into a tool-level error result with a
// short reason a model can act on.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("note changed since it was read, re-read and retry")
	case errors.Is(err, apperr.ErrConstraintViolation):
		return mcp.NewToolResultError("tag already exists: " + err.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}
