// Package notes keeps the local copy of the user's notes and the filtered
// view shown to the user.
package notes

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/existflow/diary/internal/api"
	"github.com/existflow/diary/internal/inflight"
	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
)

// Messages for input rejected before any request
const (
	MsgTitleContentRequired = "Заполните заголовок и текст заметки."
)

// NoteAPI is the part of the transport the store needs
type NoteAPI interface {
	ListNotes(ctx context.Context) ([]model.Note, error)
	CreateNote(ctx context.Context, in model.NoteInput) (model.Note, error)
	UpdateNote(ctx context.Context, id int64, in model.NoteInput) (model.Note, error)
	DeleteNote(ctx context.Context, id int64) error
}

// Draft is the unsaved content of the new-note form
type Draft struct {
	Title   string
	Content string
	Tag     model.Tag
}

// Filter selects notes for display
type Filter struct {
	Search string
	Tag    model.Tag // model.TagAll matches every tag
}

// Store holds the authoritative list as last confirmed by the server
type Store struct {
	client NoteAPI
	log    *logger.Logger
	busy   *inflight.Guard

	mu    sync.RWMutex
	notes []model.Note
	err   error
	draft Draft
	// loaded is false until the first successful refresh
	loaded bool
}

// NewStore creates an empty store
func NewStore(client NoteAPI, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		client: client,
		log:    log,
		busy:   inflight.New(),
		notes:  []model.Note{},
		draft:  Draft{Tag: model.DefaultTag},
	}
}

// Refresh replaces the list with the server's. On failure the current list is
// kept and the error slot is set.
func (s *Store) Refresh(ctx context.Context) error {
	notes, err := s.client.ListNotes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("Failed to refresh notes", logger.F("error", err))
		s.err = err
		return err
	}

	s.notes = append([]model.Note(nil), notes...)
	s.err = nil
	s.loaded = true
	s.log.Debug("Notes refreshed", logger.F("count", len(notes)))
	return nil
}

// Add creates a note. An empty or unknown tag becomes the default tag. On
// success the note is prepended and the draft cleared.
func (s *Store) Add(ctx context.Context, title, content string, tag model.Tag) (model.Note, error) {
	in, err := s.input(api.OpCreateNote, title, content, tag)
	if err != nil {
		return model.Note{}, err
	}

	release, err := s.busy.Acquire(api.OpCreateNote)
	if err != nil {
		return model.Note{}, err
	}
	defer release()

	note, err := s.client.CreateNote(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("Failed to create note", logger.F("error", err))
		s.err = err
		return model.Note{}, err
	}

	// a refresh that finished first may already hold the note
	rest := make([]model.Note, 0, len(s.notes)+1)
	rest = append(rest, note)
	for _, n := range s.notes {
		if n.ID != note.ID {
			rest = append(rest, n)
		}
	}
	s.notes = rest
	s.draft = Draft{Tag: model.DefaultTag}
	s.err = nil
	s.log.Info("Note created", logger.F("id", note.ID), logger.F("tag", note.Tag))
	return note, nil
}

// Update replaces title, content and tag of note id once the server has
// confirmed the change
func (s *Store) Update(ctx context.Context, id int64, title, content string, tag model.Tag) (model.Note, error) {
	in, err := s.input(api.OpUpdateNote, title, content, tag)
	if err != nil {
		return model.Note{}, err
	}

	release, err := s.busy.Acquire(noteKey(id))
	if err != nil {
		return model.Note{}, err
	}
	defer release()

	note, err := s.client.UpdateNote(ctx, id, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("Failed to update note", logger.F("id", id), logger.F("error", err))
		s.err = err
		return model.Note{}, err
	}

	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes[i] = note
			break
		}
	}
	s.err = nil
	s.log.Info("Note updated", logger.F("id", id))
	return note, nil
}

// Remove deletes note id on the server, then locally
func (s *Store) Remove(ctx context.Context, id int64) error {
	release, err := s.busy.Acquire(noteKey(id))
	if err != nil {
		return err
	}
	defer release()

	err = s.client.DeleteNote(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("Failed to delete note", logger.F("id", id), logger.F("error", err))
		s.err = err
		return err
	}

	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
			break
		}
	}
	s.err = nil
	s.log.Info("Note deleted", logger.F("id", id))
	return nil
}

// Project returns the notes matching search and tag, in list order
func (s *Store) Project(search string, tag model.Tag) []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.notes, Filter{Search: search, Tag: tag})
}

// Project filters notes without touching them. An empty tag matches every
// note.
func Project(notes []model.Note, f Filter) []model.Note {
	if f.Tag == "" {
		f.Tag = model.TagAll
	}
	out := make([]model.Note, 0, len(notes))
	for i := range notes {
		if notes[i].Matches(f.Search, f.Tag) {
			out = append(out, notes[i])
		}
	}
	return out
}

// Notes returns a copy of the full list
func (s *Store) Notes() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Note(nil), s.notes...)
}

// Get looks a note up by id
func (s *Store) Get(id int64) (model.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Loaded reports whether a refresh has succeeded since the store was created
// or reset
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err is the last operation error, nil after a success
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearErr empties the error slot
func (s *Store) ClearErr() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}

func (s *Store) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *Store) SetDraft(d Draft) {
	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
}

// Busy reports whether a create is in flight, or a delete/update of id
func (s *Store) Busy(id int64) bool {
	return s.busy.Busy(api.OpCreateNote) || s.busy.Busy(noteKey(id))
}

// Reset forgets everything, used after logout
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = []model.Note{}
	s.err = nil
	s.loaded = false
	s.draft = Draft{Tag: model.DefaultTag}
}

func (s *Store) input(op, title, content string, tag model.Tag) (model.NoteInput, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		err := api.NewValidationError(op, MsgTitleContentRequired)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return model.NoteInput{}, err
	}
	if t, ok := model.ParseTag(string(tag)); ok {
		tag = t
	} else {
		tag = model.DefaultTag
	}
	return model.NoteInput{Title: title, Content: content, Tag: tag}, nil
}

func noteKey(id int64) string {
	return "note:" + strconv.FormatInt(id, 10)
}
