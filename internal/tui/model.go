package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/diary/internal/guard"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
	"github.com/existflow/diary/internal/notes"
	"github.com/existflow/diary/internal/session"
)

// Mode represents the current UI mode of the notes view
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeAddNote
	ModeEditNote
	ModeConfirmDelete
	ModeHelp
)

// Fields of the auth form
const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// Fields of the verify form
const (
	fieldVerifyEmail = iota
	fieldCode
)

// Fields of the note modal
const (
	fieldTitle = iota
	fieldContent
	fieldTag
)

// Options configure the TUI
type Options struct {
	ServerURL     string
	ConfirmDelete bool
	// StartPath is the first route, "/" when empty
	StartPath string
}

// Model is the main TUI model
type Model struct {
	session *session.Machine
	notes   *notes.Store
	opts    Options

	// Routing
	path string
	view guard.View
	back string // where info pages return to

	// UI state
	width   int
	height  int
	mode    Mode
	cursor  int
	busy    int // requests in flight
	spinner spinner.Model

	// Notes view
	search    string
	tagFilter model.Tag
	editID    int64
	deleteID  int64

	// Auth view
	registering bool
	authInputs  []textinput.Model
	authFocus   int

	// Verify view
	verifyInputs []textinput.Model
	verifyFocus  int

	// Note modal and search input
	title    textinput.Model
	content  textarea.Model
	noteTag  model.Tag
	focus    int
	searchIn textinput.Model

	message string
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

// NewModel creates a new TUI model
func NewModel(sess *session.Machine, store *notes.Store, opts Options) Model {
	logger.Info("Initializing TUI model")

	password := newInput("Пароль", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	ta := textarea.New()
	ta.Placeholder = "Текст заметки..."
	ta.CharLimit = 4000
	ta.SetWidth(50)
	ta.SetHeight(6)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		session:      sess,
		notes:        store,
		opts:         opts,
		mode:         ModeNormal,
		spinner:      sp,
		tagFilter:    model.TagAll,
		authInputs:   []textinput.Model{newInput("Имя пользователя", 64), newInput("Email", 128), password},
		verifyInputs: []textinput.Model{newInput("Email", 128), newInput("123456", 6)},
		title:        newInput("Заголовок", 200),
		content:      ta,
		noteTag:      model.DefaultTag,
		searchIn:     newInput("Поиск...", 128),
	}

	start := opts.StartPath
	if start == "" {
		start = guard.PathNotes
	}
	m.route(start)
	return m
}

// authenticated reads the session once per call
func (m *Model) authenticated() bool {
	return m.session.State().State == session.Authenticated
}

// route resolves path through the guard and prepares the resulting view
func (m *Model) route(path string) {
	prev := m.view
	d := guard.Resolve(path, m.authenticated())
	if d.Redirected {
		logger.Debug("Route redirected", logger.F("from", path), logger.F("to", d.Path))
	}

	// leaving the verify screen abandons the pending registration
	if prev == guard.ViewVerify && d.View == guard.ViewAuth {
		m.session.Cancel()
	}

	m.path = d.Path
	m.view = d.View
	m.mode = ModeNormal

	switch d.View {
	case guard.ViewAuth:
		m.focusAuth(m.firstAuthField())
	case guard.ViewVerify:
		st := m.session.State()
		if st.Pending() {
			m.verifyInputs[fieldVerifyEmail].SetValue(st.Email)
			m.focusVerify(fieldCode)
		} else {
			m.focusVerify(fieldVerifyEmail)
		}
	}
}

// reroute re-applies the guard to the current path after the session changed
func (m *Model) reroute() {
	// notes of an expired session must not outlive it
	if !m.authenticated() && m.notes.Loaded() {
		m.notes.Reset()
	}
	if d := guard.Resolve(m.path, m.authenticated()); d.View != m.view {
		m.route(m.path)
	}
}

func (m *Model) firstAuthField() int {
	if m.registering {
		return fieldUsername
	}
	return fieldEmail
}

func (m *Model) focusAuth(field int) {
	m.authFocus = field
	for i := range m.authInputs {
		if i == field {
			m.authInputs[i].Focus()
		} else {
			m.authInputs[i].Blur()
		}
	}
}

func (m *Model) focusVerify(field int) {
	m.verifyFocus = field
	for i := range m.verifyInputs {
		if i == field {
			m.verifyInputs[i].Focus()
		} else {
			m.verifyInputs[i].Blur()
		}
	}
}

func (m *Model) focusNoteField(field int) {
	m.focus = field
	m.title.Blur()
	m.content.Blur()
	switch field {
	case fieldTitle:
		m.title.Focus()
	case fieldContent:
		m.content.Focus()
	}
}

// visible is the projection currently on screen
func (m *Model) visible() []model.Note {
	return m.notes.Project(m.search, m.tagFilter)
}

func (m *Model) currentNote() (model.Note, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return model.Note{}, false
	}
	return v[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
