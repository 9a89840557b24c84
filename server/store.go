package server

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/existflow/diary/internal/model"
)

var errDuplicateUser = errors.New("user already exists")

type user struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Verified     bool
	Code         string
	CodeExpires  time.Time
	CreatedAt    time.Time
}

type storedNote struct {
	model.Note
	UserID int64
}

// memDB holds users and notes. Accessors return copies.
type memDB struct {
	mu         sync.RWMutex
	nextUserID int64
	nextNoteID int64
	users      map[int64]*user
	byEmail    map[string]int64
	byUsername map[string]int64
	notes      map[int64]*storedNote
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[int64]*user{},
		byEmail:    map[string]int64{},
		byUsername: map[string]int64{},
		notes:      map[int64]*storedNote{},
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (db *memDB) createUser(u user) (user, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.byEmail[emailKey(u.Email)]; ok {
		return user{}, errDuplicateUser
	}
	if _, ok := db.byUsername[u.Username]; ok {
		return user{}, errDuplicateUser
	}

	db.nextUserID++
	u.ID = db.nextUserID
	db.users[u.ID] = &u
	db.byEmail[emailKey(u.Email)] = u.ID
	db.byUsername[u.Username] = u.ID
	return u, nil
}

func (db *memDB) userByEmail(email string) (user, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	id, ok := db.byEmail[emailKey(email)]
	if !ok {
		return user{}, false
	}
	return *db.users[id], true
}

func (db *memDB) userByID(id int64) (user, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	u, ok := db.users[id]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (db *memDB) setCode(id int64, code string, expires time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u, ok := db.users[id]; ok {
		u.Code = code
		u.CodeExpires = expires
	}
}

func (db *memDB) markVerified(id int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u, ok := db.users[id]; ok {
		u.Verified = true
		u.Code = ""
		u.CodeExpires = time.Time{}
	}
}

func (db *memDB) createNote(userID int64, in model.NoteInput, now time.Time) model.Note {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.nextNoteID++
	n := &storedNote{
		Note: model.Note{
			ID:        db.nextNoteID,
			Title:     in.Title,
			Content:   in.Content,
			Tag:       in.Tag,
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID: userID,
	}
	db.notes[n.ID] = n
	return n.Note
}

// listNotes returns the user's notes, newest first
func (db *memDB) listNotes(userID int64) []model.Note {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := []model.Note{}
	for _, n := range db.notes {
		if n.UserID == userID {
			out = append(out, n.Note)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (db *memDB) note(userID, id int64) (model.Note, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n, ok := db.notes[id]
	if !ok || n.UserID != userID {
		return model.Note{}, false
	}
	return n.Note, true
}

func (db *memDB) updateNote(userID, id int64, in model.NoteInput, now time.Time) (model.Note, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.notes[id]
	if !ok || n.UserID != userID {
		return model.Note{}, false
	}
	n.Title = in.Title
	n.Content = in.Content
	n.Tag = in.Tag
	n.UpdatedAt = now
	return n.Note, true
}

func (db *memDB) deleteNote(userID, id int64) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.notes[id]
	if !ok || n.UserID != userID {
		return false
	}
	delete(db.notes, id)
	return true
}
