package tui

import (
	"context"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/diary/internal/api"
	"github.com/existflow/diary/internal/credentials"
	"github.com/existflow/diary/internal/guard"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
	"github.com/existflow/diary/internal/notes"
	"github.com/existflow/diary/internal/session"
	"github.com/existflow/diary/server"
)

type harness struct {
	srv     *server.Server
	store   *credentials.Memory
	session *session.Machine
	notes   *notes.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := server.New(server.WithSecret([]byte("tui")), server.WithLogger(logger.Nop()))
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(hs.Close)

	store := credentials.NewMemory()
	client := api.New(hs.URL, store, api.WithLogger(logger.Nop()))
	return &harness{
		srv:     srv,
		store:   store,
		session: session.New(client, store, logger.Nop()),
		notes:   notes.NewStore(client, logger.Nop()),
	}
}

// signUp registers and verifies a user without going through the UI
func (h *harness) signUp(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.session.Register(ctx, "user", email, "Secret1!"))
	code, ok := h.srv.LastCode(email)
	require.True(t, ok)
	require.NoError(t, h.session.SubmitCode(ctx, code))
}

func (h *harness) model(t *testing.T, confirm bool) Model {
	t.Helper()
	m := NewModel(h.session, h.notes, Options{ServerURL: "test", ConfirmDelete: confirm})
	m = drain(t, m, m.Init())
	return step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

// drain runs request commands synchronously and feeds their results back
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case notesRefreshedMsg, noteSavedMsg, noteRemovedMsg,
		loginDoneMsg, registerDoneMsg, verifyDoneMsg, resendDoneMsg:
		m = step(t, m, msg)
	}
	return m
}

var namedKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"esc":       tea.KeyEsc,
	"down":      tea.KeyDown,
	"up":        tea.KeyUp,
	"right":     tea.KeyRight,
	"ctrl+s":    tea.KeyCtrlS,
	"ctrl+r":    tea.KeyCtrlR,
	"ctrl+e":    tea.KeyCtrlE,
	"ctrl+v":    tea.KeyCtrlV,
	"f1":        tea.KeyF1,
	"f2":        tea.KeyF2,
	"f3":        tea.KeyF3,
}

func keyMsg(k string) tea.KeyMsg {
	if t, ok := namedKeys[k]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = step(t, m, keyMsg(k))
	}
	return m
}

// typeText sends runes to the focused input; cursor blink commands are dropped
func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func TestLoggedOutStartsOnAuth(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, true)

	assert.Equal(t, guard.ViewAuth, m.view)
	assert.Equal(t, guard.PathAuth, m.path)
	assert.Contains(t, m.View(), "Вход")
}

func TestRegisterAndVerifyThroughForms(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, true)

	m = press(t, m, "ctrl+r")
	require.True(t, m.registering)
	assert.Equal(t, fieldUsername, m.authFocus)

	m = typeText(m, "bob")
	m = press(t, m, "tab")
	m = typeText(m, "bob@x.io")
	m = press(t, m, "tab")
	m = typeText(m, "Secret1!")
	m = press(t, m, "enter")

	require.Equal(t, guard.ViewVerify, m.view)
	assert.Equal(t, session.PendingVerification, h.session.State().State)
	assert.Equal(t, fieldCode, m.verifyFocus)
	assert.Contains(t, m.View(), "bob@x.io")
	assert.Zero(t, m.busy)

	code, ok := h.srv.LastCode("bob@x.io")
	require.True(t, ok)
	m = typeText(m, code)
	m = press(t, m, "enter")

	assert.Equal(t, guard.ViewNotes, m.view)
	assert.True(t, h.notes.Loaded())
	assert.True(t, credentials.Authenticated(h.store))
}

func TestLoginFailureStaysOnAuth(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, true)

	m = typeText(m, "nobody@x.io")
	m = press(t, m, "tab")
	m = typeText(m, "Wrong1!!")
	m = press(t, m, "enter")

	assert.Equal(t, guard.ViewAuth, m.view)
	require.Error(t, h.session.LoginError())
	assert.Contains(t, m.View(), api.MsgInvalidLogin)
}

func TestLeavingVerifyCancelsRegistration(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Register(context.Background(), "eve", "eve@x.io", "Secret1!"))
	m := h.model(t, true)

	m = press(t, m, "ctrl+v")
	require.Equal(t, guard.ViewVerify, m.view)
	assert.Equal(t, "eve@x.io", m.verifyInputs[fieldVerifyEmail].Value())

	m = press(t, m, "esc")
	assert.Equal(t, guard.ViewAuth, m.view)
	assert.Equal(t, session.LoggedOut, h.session.State().State)
}

func TestResendFromVerify(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Register(context.Background(), "kim", "kim@x.io", "Secret1!"))
	m := h.model(t, true)

	m = press(t, m, "ctrl+v", "ctrl+e")
	assert.Equal(t, session.MsgResendOK, h.session.ResendMessage())
	assert.Equal(t, guard.ViewVerify, m.view)
	assert.Zero(t, m.busy)
}

func TestNoteLifecycle(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ann@x.io")
	m := h.model(t, true)
	require.Equal(t, guard.ViewNotes, m.view)
	require.True(t, h.notes.Loaded())

	// add
	m = press(t, m, "a")
	require.Equal(t, ModeAddNote, m.mode)
	m = typeText(m, "Groceries")
	m = press(t, m, "tab")
	m = typeText(m, "milk")
	m = press(t, m, "tab", "right")
	assert.Equal(t, model.TagReminders, m.noteTag)
	m = press(t, m, "ctrl+s")

	require.Equal(t, ModeNormal, m.mode)
	require.Equal(t, 1, h.notes.Len())
	n := h.notes.Notes()[0]
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, model.TagReminders, n.Tag)
	assert.Equal(t, notes.Draft{Tag: model.DefaultTag}, h.notes.Draft())
	assert.Contains(t, m.View(), "Groceries")

	// edit
	m = press(t, m, "e")
	require.Equal(t, ModeEditNote, m.mode)
	m = typeText(m, " and bread")
	m = press(t, m, "ctrl+s")
	got, ok := h.notes.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "Groceries and bread", got.Title)

	// delete with confirmation
	m = press(t, m, "d")
	require.Equal(t, ModeConfirmDelete, m.mode)
	m = press(t, m, "n")
	assert.Equal(t, 1, h.notes.Len())

	m = press(t, m, "d", "y")
	assert.Zero(t, h.notes.Len())
	assert.Zero(t, m.busy)
}

func TestEmptyNoteKeepsModalOpen(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "val@x.io")
	m := h.model(t, false)

	m = press(t, m, "a", "ctrl+s")
	assert.Equal(t, ModeAddNote, m.mode)
	assert.Equal(t, notes.MsgTitleContentRequired, m.message)
	assert.Zero(t, h.notes.Len())
}

func TestDraftSurvivesCancel(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "dan@x.io")
	m := h.model(t, false)

	m = press(t, m, "a")
	m = typeText(m, "Half written")
	m = press(t, m, "esc")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "Half written", h.notes.Draft().Title)

	m = press(t, m, "a")
	assert.Equal(t, "Half written", m.title.Value())
}

func TestSearchAndTagFilter(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "sam@x.io")
	ctx := context.Background()
	_, err := h.notes.Add(ctx, "Standup", "daily sync", model.TagWork)
	require.NoError(t, err)
	_, err = h.notes.Add(ctx, "Birthday", "buy cake", model.TagPersonal)
	require.NoError(t, err)
	m := h.model(t, false)

	m = press(t, m, "/")
	require.Equal(t, ModeSearch, m.mode)
	m = typeText(m, "CAKE")
	assert.Equal(t, "CAKE", m.search)
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Birthday", m.visible()[0].Title)

	m = press(t, m, "esc")
	assert.Empty(t, m.search)
	assert.Len(t, m.visible(), 2)

	m = press(t, m, "t")
	assert.Equal(t, model.TagWork, m.tagFilter)
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Standup", m.visible()[0].Title)

	m = press(t, m, "esc")
	assert.Equal(t, model.TagAll, m.tagFilter)
}

func TestSearchKeepsSpaces(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "ivy@x.io")
	ctx := context.Background()
	_, err := h.notes.Add(ctx, "Two words", "body", model.TagWork)
	require.NoError(t, err)
	_, err = h.notes.Add(ctx, "Single", "word", model.TagIdeas)
	require.NoError(t, err)
	m := h.model(t, false)

	m = press(t, m, "/")
	m = typeText(m, " ")
	assert.Equal(t, " ", m.search)
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Two words", m.visible()[0].Title)
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "joe@x.io")
	_, err := h.notes.Add(context.Background(), "Temp", "x", model.TagIdeas)
	require.NoError(t, err)
	m := h.model(t, false)

	m = press(t, m, "d")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Zero(t, h.notes.Len())
}

func TestLogoutReturnsToAuth(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "lou@x.io")
	m := h.model(t, false)

	m = press(t, m, "L")
	assert.Equal(t, guard.ViewAuth, m.view)
	assert.False(t, credentials.Authenticated(h.store))
	assert.False(t, h.notes.Loaded())
}

func TestRejectedTokenRedirectsToAuth(t *testing.T) {
	srv, err := server.New(server.WithLogger(logger.Nop()))
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(hs.Close)

	store := credentials.NewMemory()
	require.NoError(t, store.SetToken("forged"))
	client := api.New(hs.URL, store, api.WithLogger(logger.Nop()))
	h := &harness{
		srv:     srv,
		store:   store,
		session: session.New(client, store, logger.Nop()),
		notes:   notes.NewStore(client, logger.Nop()),
	}
	require.Equal(t, session.Authenticated, h.session.State().State)

	m := h.model(t, false)

	assert.Equal(t, guard.ViewAuth, m.view)
	assert.False(t, credentials.Authenticated(h.store))
	assert.Equal(t, session.MsgSessionExpired, h.session.Notice())
	assert.False(t, h.notes.Loaded())
	assert.Contains(t, m.View(), session.MsgSessionExpired)
}

func TestInfoPagesReturnToPreviousScreen(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, false)

	for _, tc := range []struct {
		key  string
		view guard.View
	}{
		{"f1", guard.ViewAbout},
		{"f2", guard.ViewFAQ},
		{"f3", guard.ViewHowToStart},
	} {
		m = press(t, m, tc.key)
		assert.Equal(t, tc.view, m.view, tc.key)
		assert.Contains(t, m.View(), infoPages[tc.view].title)

		m = press(t, m, "esc")
		assert.Equal(t, guard.ViewAuth, m.view, tc.key)
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "hé...", truncate("héllo wörld", 5))
	assert.Equal(t, "first", firstLine("first\nsecond"))
	assert.Equal(t, model.TagWork, nextTag(model.TagAll))
	assert.Equal(t, model.TagAll, nextTag(model.TagReminders))
	assert.Equal(t, model.TagWork, nextNoteTag(model.TagReminders))
	assert.Equal(t, model.DefaultTag, nextNoteTag(""))
}
