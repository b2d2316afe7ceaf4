// Package models defines the domain types shared by the basetag services.
package models

import "time"

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagLabel pairs a raw tag with the basename shown on its pill.
type TagLabel struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

// NoteTags is the tag summary of one note.
type NoteTags struct {
	Path  string     `json:"path"`
	Title string     `json:"title,omitempty"`
	Tags  []TagLabel `json:"tags"`
}

// RenderedNote is a reading-view page with its tags rewritten.
type RenderedNote struct {
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	HTML     string `json:"html"`
	Checksum string `json:"checksum"`
}
