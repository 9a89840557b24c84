package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/diary/internal/api"
	"github.com/existflow/diary/internal/guard"
	"github.com/existflow/diary/internal/inflight"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
	"github.com/existflow/diary/internal/notes"
)

const msgBusy = "Запрос уже выполняется..."

// Init starts the spinner and loads notes when the first view needs them
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.enterView())
}

// enterView returns the command a freshly shown view needs
func (m *Model) enterView() tea.Cmd {
	if m.view == guard.ViewNotes && !m.notes.Loaded() {
		return m.dispatch(refreshCmd(m.notes))
	}
	return nil
}

// dispatch counts a request as in flight until its result message arrives
func (m *Model) dispatch(cmd tea.Cmd) tea.Cmd {
	m.busy++
	return cmd
}

func (m *Model) done() {
	if m.busy > 0 {
		m.busy--
	}
}

// errText turns a failed request into status bar text. An expired session
// has its own notice on the auth screen, so it yields nothing here.
func errText(err error) string {
	switch {
	case errors.Is(err, inflight.ErrBusy):
		return msgBusy
	case errors.Is(err, api.ErrUnauthorized):
		return ""
	}
	return err.Error()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case notesRefreshedMsg:
		m.done()
		if msg.err != nil {
			m.message = errText(msg.err)
		}
		m.clampCursor()
		m.reroute()
		return m, nil

	case noteSavedMsg:
		m.done()
		if msg.err != nil {
			m.message = errText(msg.err)
			m.reroute()
			return m, nil
		}
		if m.mode == ModeAddNote || m.mode == ModeEditNote {
			m.mode = ModeNormal
		}
		if msg.created {
			m.message = fmt.Sprintf("Добавлено: %s", msg.note.Title)
			m.cursor = 0
		} else {
			m.message = fmt.Sprintf("Сохранено: %s", msg.note.Title)
		}
		m.clampCursor()
		return m, nil

	case noteRemovedMsg:
		m.done()
		if msg.err != nil {
			m.message = errText(msg.err)
			m.reroute()
			return m, nil
		}
		m.message = "Заметка удалена"
		m.clampCursor()
		return m, nil

	case loginDoneMsg:
		m.done()
		if msg.err != nil {
			return m, nil
		}
		m.authInputs[fieldPassword].SetValue("")
		m.route(guard.PathNotes)
		return m, m.enterView()

	case registerDoneMsg:
		m.done()
		if msg.err != nil {
			return m, nil
		}
		m.authInputs[fieldPassword].SetValue("")
		m.route(guard.PathVerify)
		return m, textinput.Blink

	case verifyDoneMsg:
		m.done()
		if msg.err != nil {
			return m, nil
		}
		m.verifyInputs[fieldCode].SetValue("")
		m.route(guard.PathNotes)
		return m, m.enterView()

	case resendDoneMsg:
		m.done()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		if v, ok := infoKey(msg); ok && !m.typingNote() {
			m.back = m.path
			m.route(v.Path())
			return m, nil
		}

		switch m.view {
		case guard.ViewAuth:
			return m.updateAuth(msg)
		case guard.ViewVerify:
			return m.updateVerify(msg)
		case guard.ViewNotes:
			return m.updateNotes(msg)
		default:
			return m.updateInfo(msg)
		}
	}

	return m.updateFocused(msg)
}

func infoKey(msg tea.KeyMsg) (guard.View, bool) {
	switch {
	case key.Matches(msg, keys.About):
		return guard.ViewAbout, true
	case key.Matches(msg, keys.FAQ):
		return guard.ViewFAQ, true
	case key.Matches(msg, keys.HowToStart):
		return guard.ViewHowToStart, true
	}
	return 0, false
}

// typingNote is true while the note modal owns the keyboard
func (m *Model) typingNote() bool {
	return m.view == guard.ViewNotes && (m.mode == ModeAddNote || m.mode == ModeEditNote)
}

// updateFocused forwards non-key messages (cursor blink) to the focused input
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case guard.ViewAuth:
		m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	case guard.ViewVerify:
		m.verifyInputs[m.verifyFocus], cmd = m.verifyInputs[m.verifyFocus].Update(msg)
	case guard.ViewNotes:
		switch m.mode {
		case ModeSearch:
			m.searchIn, cmd = m.searchIn.Update(msg)
		case ModeAddNote, ModeEditNote:
			if m.focus == fieldContent {
				m.content, cmd = m.content.Update(msg)
			} else {
				m.title, cmd = m.title.Update(msg)
			}
		}
	}
	return m, cmd
}

// Auth screen

func (m *Model) authFields() []int {
	if m.registering {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *Model) moveAuthFocus(delta int) {
	fields := m.authFields()
	pos := 0
	for i, f := range fields {
		if f == m.authFocus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.focusAuth(fields[pos])
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ToggleForm):
		m.registering = !m.registering
		m.session.ClearMessages()
		m.focusAuth(m.firstAuthField())
		return m, textinput.Blink

	case key.Matches(msg, keys.Verify):
		m.route(guard.PathVerify)
		return m, textinput.Blink

	case key.Matches(msg, keys.Tab), msg.Type == tea.KeyDown:
		m.moveAuthFocus(1)
		return m, nil

	case key.Matches(msg, keys.BackTab), msg.Type == tea.KeyUp:
		m.moveAuthFocus(-1)
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.authFocus != fieldPassword {
			m.moveAuthFocus(1)
			return m, nil
		}
		return m.submitAuth()
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	username := m.authInputs[fieldUsername].Value()
	email := m.authInputs[fieldEmail].Value()
	password := m.authInputs[fieldPassword].Value()

	if m.registering {
		logger.Debug("Submitting registration", logger.F("email", email))
		return m, m.dispatch(registerCmd(m.session, username, email, password))
	}
	logger.Debug("Submitting login", logger.F("email", email))
	return m, m.dispatch(loginCmd(m.session, email, password))
}

// Verify screen

func (m Model) updateVerify(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.session.State().Pending()

	switch {
	case key.Matches(msg, keys.Escape):
		m.route(guard.PathAuth)
		return m, textinput.Blink

	case key.Matches(msg, keys.Resend):
		if !pending {
			if err := m.session.StartVerification(m.verifyInputs[fieldVerifyEmail].Value()); err != nil {
				return m, nil
			}
		}
		return m, m.dispatch(resendCmd(m.session))

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.BackTab), msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		if pending {
			return m, nil
		}
		m.focusVerify(1 - m.verifyFocus)
		return m, nil

	case key.Matches(msg, keys.Enter):
		if !pending {
			if err := m.session.StartVerification(m.verifyInputs[fieldVerifyEmail].Value()); err != nil {
				return m, nil
			}
			if m.verifyFocus == fieldVerifyEmail {
				m.focusVerify(fieldCode)
				return m, nil
			}
		}
		return m, m.dispatch(verifyCmd(m.session, m.verifyInputs[fieldCode].Value()))
	}

	if pending && m.verifyFocus == fieldVerifyEmail {
		m.focusVerify(fieldCode)
	}
	var cmd tea.Cmd
	m.verifyInputs[m.verifyFocus], cmd = m.verifyInputs[m.verifyFocus].Update(msg)
	return m, cmd
}

// Info screens

func (m Model) updateInfo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Quit), msg.Type == tea.KeyBackspace:
		back := m.back
		if back == "" {
			back = guard.PathNotes
		}
		m.route(back)
		return m, tea.Batch(textinput.Blink, m.enterView())
	}
	return m, nil
}

// Notes screen

func (m Model) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch:
		return m.updateSearch(msg)
	case ModeAddNote, ModeEditNote:
		return m.updateNoteModal(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case msg.String() == "G":
		m.cursor = len(m.visible()) - 1
		m.clampCursor()

	case msg.String() == "g":
		m.cursor = 0

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.searchIn.SetValue(m.search)
		m.searchIn.CursorEnd()
		m.searchIn.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.TagNext):
		m.tagFilter = nextTag(m.tagFilter)
		m.cursor = 0
		m.message = "Фильтр: " + string(m.tagFilter)

	case key.Matches(msg, keys.Add):
		return m.startAddNote()

	case key.Matches(msg, keys.Edit):
		return m.startEditNote()

	case key.Matches(msg, keys.Delete):
		return m.startDelete()

	case key.Matches(msg, keys.Refresh):
		m.message = ""
		return m, m.dispatch(refreshCmd(m.notes))

	case key.Matches(msg, keys.Escape):
		if m.search != "" || m.tagFilter != model.TagAll {
			m.search = ""
			m.tagFilter = model.TagAll
			m.message = "Фильтр сброшен"
		}
		m.notes.ClearErr()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Logout):
		if err := m.session.Logout(); err != nil {
			m.message = fmt.Sprintf("Ошибка выхода: %v", err)
		}
		m.notes.Reset()
		m.search = ""
		m.tagFilter = model.TagAll
		m.cursor = 0
		m.route(guard.PathNotes)
		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.search = ""
		m.searchIn.Blur()
		m.cursor = 0
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.searchIn.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchIn, cmd = m.searchIn.Update(msg)
	// live filter as user types
	m.search = m.searchIn.Value()
	m.cursor = 0
	return m, cmd
}

func (m Model) startAddNote() (tea.Model, tea.Cmd) {
	d := m.notes.Draft()
	m.mode = ModeAddNote
	m.editID = 0
	m.title.SetValue(d.Title)
	m.content.SetValue(d.Content)
	m.noteTag = d.Tag
	if !m.noteTag.Valid() {
		m.noteTag = model.DefaultTag
	}
	m.focusNoteField(fieldTitle)
	return m, textinput.Blink
}

func (m Model) startEditNote() (tea.Model, tea.Cmd) {
	n, ok := m.currentNote()
	if !ok {
		return m, nil
	}
	m.mode = ModeEditNote
	m.editID = n.ID
	m.title.SetValue(n.Title)
	m.title.CursorEnd()
	m.content.SetValue(n.Content)
	m.noteTag = n.Tag
	m.focusNoteField(fieldTitle)
	return m, textinput.Blink
}

func (m Model) startDelete() (tea.Model, tea.Cmd) {
	n, ok := m.currentNote()
	if !ok {
		return m, nil
	}
	if !m.opts.ConfirmDelete {
		return m, m.dispatch(removeNoteCmd(m.notes, n.ID))
	}
	m.mode = ModeConfirmDelete
	m.deleteID = n.ID
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = ModeNormal
		return m, m.dispatch(removeNoteCmd(m.notes, m.deleteID))
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
		m.message = "Удаление отменено"
	}
	return m, nil
}

func (m *Model) saveDraft() {
	if m.mode != ModeAddNote {
		return
	}
	m.notes.SetDraft(notes.Draft{Title: m.title.Value(), Content: m.content.Value(), Tag: m.noteTag})
}

func (m Model) updateNoteModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.saveDraft()
		m.mode = ModeNormal
		m.notes.ClearErr()
		return m, nil

	case key.Matches(msg, keys.Save):
		m.saveDraft()
		if m.mode == ModeAddNote {
			return m, m.dispatch(addNoteCmd(m.notes, m.title.Value(), m.content.Value(), m.noteTag))
		}
		return m, m.dispatch(updateNoteCmd(m.notes, m.editID, m.title.Value(), m.content.Value(), m.noteTag))

	case key.Matches(msg, keys.Tab):
		m.focusNoteField((m.focus + 1) % 3)
		return m, textinput.Blink

	case key.Matches(msg, keys.BackTab):
		m.focusNoteField((m.focus + 2) % 3)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		if key.Matches(msg, keys.Enter) {
			m.focusNoteField(fieldContent)
			return m, nil
		}
		m.title, cmd = m.title.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	case fieldTag:
		switch msg.String() {
		case "left", "right", " ", "t", "h", "l":
			m.noteTag = nextNoteTag(m.noteTag)
		case "enter":
			return m.updateNoteModal(tea.KeyMsg{Type: tea.KeyCtrlS})
		}
	}
	m.saveDraft()
	return m, cmd
}
