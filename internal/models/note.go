// Package models defines the domain types for Tagnote.
package models

import "time"

// Note is a single stored note. Date is an opaque YYYY-MM-DD string.
type Note struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Date  string `json:"date"`
}

// Tag is a named label that can be attached to any number of notes.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FileMetadata describes a Markdown file under a storage root.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagCount is a tag together with the number of notes linked to it.
type TagCount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Notes int    `json:"notes"`
}
