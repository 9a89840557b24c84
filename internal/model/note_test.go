package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
		ok   bool
	}{
		{"work", TagWork, true},
		{" Personal ", TagPersonal, true},
		{"IDEAS", TagIdeas, true},
		{"reminders", TagReminders, true},
		{"all", "", false},
		{"", "", false},
		{"misc", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTag(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseFilterTag(t *testing.T) {
	got, ok := ParseFilterTag("")
	assert.True(t, ok)
	assert.Equal(t, TagAll, got)

	got, ok = ParseFilterTag("ALL")
	assert.True(t, ok)
	assert.Equal(t, TagAll, got)

	got, ok = ParseFilterTag("work")
	assert.True(t, ok)
	assert.Equal(t, TagWork, got)

	_, ok = ParseFilterTag("nope")
	assert.False(t, ok)
}

func TestTagDisplay(t *testing.T) {
	assert.Equal(t, "Work", TagWork.Display())
	assert.Equal(t, "Reminders", TagReminders.Display())
	assert.Equal(t, "", Tag("").Display())
	assert.True(t, TagIdeas.Valid())
	assert.False(t, TagAll.Valid())
	assert.False(t, Tag("Work").Valid())
}

func TestNoteMatches(t *testing.T) {
	n := Note{ID: 1, Title: "Groceries", Content: "Buy MILK", Tag: TagPersonal}

	assert.True(t, n.Matches("", TagAll))
	assert.True(t, n.Matches("milk", TagAll))
	assert.True(t, n.Matches("GROC", TagPersonal))
	assert.False(t, n.Matches("milk", TagWork))
	assert.False(t, n.Matches("bread", TagAll))
}
