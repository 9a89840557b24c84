package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/existflow/diary/internal/model"
)

// ListNotes returns the caller's notes in server order
func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	err := c.doProtected(ctx, request{
		op:       OpListNotes,
		method:   http.MethodGet,
		path:     "/notes",
		fallback: MsgListFailed,
	}, &notes)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

// CreateNote stores a new note and returns it with the server-assigned fields
func (c *Client) CreateNote(ctx context.Context, in model.NoteInput) (model.Note, error) {
	var note model.Note
	err := c.doProtected(ctx, request{
		op:       OpCreateNote,
		method:   http.MethodPost,
		path:     "/notes",
		body:     in,
		fallback: MsgCreateFailed,
	}, &note)
	if err != nil {
		return model.Note{}, err
	}
	if note.ID == 0 {
		return model.Note{}, &Error{Kind: KindRequestFailed, Op: OpCreateNote, Status: http.StatusOK, Message: MsgUnexpectedFormat}
	}
	return note, nil
}

// UpdateNote replaces title, content and tag of note id
func (c *Client) UpdateNote(ctx context.Context, id int64, in model.NoteInput) (model.Note, error) {
	var note model.Note
	err := c.doProtected(ctx, request{
		op:         OpUpdateNote,
		method:     http.MethodPut,
		path:       "/notes/{id}",
		pathParams: map[string]string{"id": strconv.FormatInt(id, 10)},
		body:       in,
		fallback:   MsgUpdateFailed,
		notFound:   true,
	}, &note)
	if err != nil {
		return model.Note{}, err
	}
	return note, nil
}

// DeleteNote removes note id
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.doProtected(ctx, request{
		op:         OpDeleteNote,
		method:     http.MethodDelete,
		path:       "/notes/{id}",
		pathParams: map[string]string{"id": strconv.FormatInt(id, 10)},
		fallback:   MsgDeleteFailed,
		notFound:   true,
	}, nil)
}
