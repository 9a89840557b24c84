package model

import (
	"strings"
	"time"
)

// Tag is the category of a note
type Tag string

// Note tags accepted by the server
const (
	TagWork      Tag = "work"
	TagPersonal  Tag = "personal"
	TagIdeas     Tag = "ideas"
	TagReminders Tag = "reminders"

	// TagAll matches every tag when filtering. It is never stored on a note.
	TagAll Tag = "all"
)

// DefaultTag is used when a note is created without a valid tag
const DefaultTag = TagIdeas

// Tags lists the storable tags in display order
var Tags = []Tag{TagWork, TagPersonal, TagIdeas, TagReminders}

// ParseTag converts user input to a storable tag
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tags {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ParseFilterTag converts user input to a filter tag, accepting "all"
func ParseFilterTag(s string) (Tag, bool) {
	if strings.TrimSpace(s) == "" {
		return TagAll, true
	}
	if Tag(strings.ToLower(strings.TrimSpace(s))) == TagAll {
		return TagAll, true
	}
	return ParseTag(s)
}

// Valid returns true for storable tags
func (t Tag) Valid() bool {
	_, ok := ParseTag(string(t))
	return ok && string(t) == strings.ToLower(string(t))
}

// Display returns the tag with its first letter capitalized
func (t Tag) Display() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Note is a journal entry as confirmed by the server
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       Tag       `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteInput is the client-supplied part of a note
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     Tag    `json:"tag"`
}

// Matches reports whether the note passes a tag filter and a case-insensitive
// substring search on title or content
func (n *Note) Matches(search string, tag Tag) bool {
	if tag != TagAll && n.Tag != tag {
		return false
	}
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle)
}
