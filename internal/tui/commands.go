package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/diary/internal/model"
	"github.com/existflow/diary/internal/notes"
	"github.com/existflow/diary/internal/session"
)

// Results of background requests. The stores have already been updated when
// these arrive; the messages only tell the model to redraw and re-route.
type (
	notesRefreshedMsg struct{ err error }
	noteSavedMsg      struct {
		note    model.Note
		created bool
		err     error
	}
	noteRemovedMsg struct {
		id  int64
		err error
	}
	loginDoneMsg    struct{ err error }
	registerDoneMsg struct{ err error }
	verifyDoneMsg   struct{ err error }
	resendDoneMsg   struct{ err error }
)

func refreshCmd(store *notes.Store) tea.Cmd {
	return func() tea.Msg {
		return notesRefreshedMsg{err: store.Refresh(context.Background())}
	}
}

func addNoteCmd(store *notes.Store, title, content string, tag model.Tag) tea.Cmd {
	return func() tea.Msg {
		n, err := store.Add(context.Background(), title, content, tag)
		return noteSavedMsg{note: n, created: true, err: err}
	}
}

func updateNoteCmd(store *notes.Store, id int64, title, content string, tag model.Tag) tea.Cmd {
	return func() tea.Msg {
		n, err := store.Update(context.Background(), id, title, content, tag)
		return noteSavedMsg{note: n, err: err}
	}
}

func removeNoteCmd(store *notes.Store, id int64) tea.Cmd {
	return func() tea.Msg {
		return noteRemovedMsg{id: id, err: store.Remove(context.Background(), id)}
	}
}

func loginCmd(sess *session.Machine, email, password string) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: sess.Login(context.Background(), email, password)}
	}
}

func registerCmd(sess *session.Machine, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg{err: sess.Register(context.Background(), username, email, password)}
	}
}

func verifyCmd(sess *session.Machine, code string) tea.Cmd {
	return func() tea.Msg {
		return verifyDoneMsg{err: sess.SubmitCode(context.Background(), code)}
	}
}

func resendCmd(sess *session.Machine) tea.Cmd {
	return func() tea.Msg {
		return resendDoneMsg{err: sess.Resend(context.Background())}
	}
}
