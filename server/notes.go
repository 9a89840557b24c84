package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/internal/model"
)

const (
	msgNoteNotFound = "Заметка не найдена или не принадлежит пользователю"
	msgBadNoteID    = "Неверный ID заметки"
	msgNoteRequired = "Заголовок и текст заметки обязательны"
)

func noteID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func bindNote(c echo.Context) (model.NoteInput, string) {
	var in model.NoteInput
	if err := c.Bind(&in); err != nil {
		return in, msgBadRequest
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" || in.Content == "" {
		return in, msgNoteRequired
	}
	if t, ok := model.ParseTag(string(in.Tag)); ok {
		in.Tag = t
	} else {
		in.Tag = model.DefaultTag
	}
	return in, ""
}

// handleListNotes returns the caller's notes, newest first
func (s *Server) handleListNotes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.listNotes(userID(c)))
}

func (s *Server) handleCreateNote(c echo.Context) error {
	in, msg := bindNote(c)
	if msg != "" {
		return c.String(http.StatusBadRequest, msg)
	}

	n := s.db.createNote(userID(c), in, s.now())
	s.log.Debug("Note created", logger.F("user_id", userID(c)), logger.F("id", n.ID))
	return c.JSON(http.StatusCreated, n)
}

func (s *Server) handleGetNote(c echo.Context) error {
	id, ok := noteID(c)
	if !ok {
		return c.String(http.StatusBadRequest, msgBadNoteID)
	}
	n, ok := s.db.note(userID(c), id)
	if !ok {
		return c.String(http.StatusNotFound, msgNoteNotFound)
	}
	return c.JSON(http.StatusOK, n)
}

func (s *Server) handleUpdateNote(c echo.Context) error {
	id, ok := noteID(c)
	if !ok {
		return c.String(http.StatusBadRequest, msgBadNoteID)
	}
	in, msg := bindNote(c)
	if msg != "" {
		return c.String(http.StatusBadRequest, msg)
	}

	n, ok := s.db.updateNote(userID(c), id, in, s.now())
	if !ok {
		return c.String(http.StatusNotFound, msgNoteNotFound)
	}
	return c.JSON(http.StatusOK, n)
}

// handleDeleteNote answers 404 for missing notes and for notes of other users
func (s *Server) handleDeleteNote(c echo.Context) error {
	id, ok := noteID(c)
	if !ok {
		return c.String(http.StatusBadRequest, msgBadNoteID)
	}
	if !s.db.deleteNote(userID(c), id) {
		return c.String(http.StatusNotFound, msgNoteNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}
