package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	BackTab key.Binding
	Enter   key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Search  key.Binding
	TagNext key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Logout  key.Binding
	Save    key.Binding

	// auth and verify screens, where plain letters are typed into fields
	ToggleForm key.Binding
	Verify     key.Binding
	Resend     key.Binding
	ForceQuit  key.Binding

	About      key.Binding
	FAQ        key.Binding
	HowToStart key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	BackTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add note")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit note")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	TagNext: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tag filter")),
	Refresh: key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),

	ToggleForm: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
	Verify:     key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "enter code")),
	Resend:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "resend code")),
	ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

	About:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "about")),
	FAQ:        key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "faq")),
	HowToStart: key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "how to start")),
}
