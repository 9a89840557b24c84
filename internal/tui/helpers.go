package tui

import (
	"strings"

	"github.com/existflow/diary/internal/model"
)

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 0 {
		return ""
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// firstLine returns s up to the first newline
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// nextTag cycles all -> work -> personal -> ideas -> reminders -> all
func nextTag(t model.Tag) model.Tag {
	order := append([]model.Tag{model.TagAll}, model.Tags...)
	for i, o := range order {
		if o == t {
			return order[(i+1)%len(order)]
		}
	}
	return model.TagAll
}

// nextNoteTag cycles the storable tags only
func nextNoteTag(t model.Tag) model.Tag {
	for i, o := range model.Tags {
		if o == t {
			return model.Tags[(i+1)%len(model.Tags)]
		}
	}
	return model.DefaultTag
}
