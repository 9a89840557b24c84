package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/diary/internal/model"
)

// Color palette
var (
	// Tag colors
	TagWorkColor      = lipgloss.Color("#FF6B6B")
	TagPersonalColor  = lipgloss.Color("#FFB347")
	TagIdeasColor     = lipgloss.Color("#FFE66D")
	TagRemindersColor = lipgloss.Color("#4ECDC4")

	// Status colors
	Success = lipgloss.Color("#95E1A3")
	Danger  = lipgloss.Color("#FF6B6B")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Note list
	NoteListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	NoteItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	NoteItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	NoteBodyStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			PaddingLeft(4)

	// Centered forms on the auth and verify screens
	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 3).
			Width(56)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// TagStyle returns the badge style of a tag
func TagStyle(tag model.Tag) lipgloss.Style {
	switch tag {
	case model.TagWork:
		return lipgloss.NewStyle().Foreground(TagWorkColor).Bold(true)
	case model.TagPersonal:
		return lipgloss.NewStyle().Foreground(TagPersonalColor).Bold(true)
	case model.TagReminders:
		return lipgloss.NewStyle().Foreground(TagRemindersColor)
	default:
		return lipgloss.NewStyle().Foreground(TagIdeasColor)
	}
}

// FormatTag renders a tag badge, "All" for the catch-all filter
func FormatTag(tag model.Tag) string {
	if tag == model.TagAll {
		return HelpStyle.Render("All")
	}
	return TagStyle(tag).Render(tag.Display())
}
