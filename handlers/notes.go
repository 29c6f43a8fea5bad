package handlers

import (
	"io"
	"net/http"
	"time"

	"notes-api/config"
	"notes-api/db"
	appmw "notes-api/middleware"
	"notes-api/models"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NoteHandlers struct {
	Notes        db.NoteRepository
	Users        db.UserRepository
	UserIDPolicy config.UserIDPolicy
}

func NewNoteHandlers(store *db.Store, policy config.UserIDPolicy) *NoteHandlers {
	return &NoteHandlers{Notes: store.Notes, Users: store.Users, UserIDPolicy: policy}
}

func (h *NoteHandlers) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Notes.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandlers) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.Notes.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &NotFoundError{Resource: "note"}
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type createNoteRequest struct {
	Content   string `json:"content"`
	Important bool   `json:"important"`
	UserID    string `json:"userId"`
}

// CreateNote validates the body before looking at the token, then stores the
// note and appends it to its owner's list. The two writes are not atomic: a
// failure in between leaves a note its owner does not list.
func (h *NoteHandlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Content == "" || req.UserID == "" {
		writeError(w, r, invalid("content and userId are required"))
		return
	}

	claims, err := appmw.Authenticated(r)
	if err != nil {
		writeError(w, r, &AuthenticationError{Err: err})
		return
	}
	subject, err := claims.Subject()
	if err != nil {
		writeError(w, r, &AuthenticationError{Err: err})
		return
	}
	if h.UserIDPolicy == config.UserIDMatch {
		if bodyID, err := primitive.ObjectIDFromHex(req.UserID); err != nil || bodyID != subject {
			writeError(w, r, invalid("userId does not match token"))
			return
		}
	}

	// The owner is always the token subject, never the body's userId.
	user, err := h.Users.FindByID(r.Context(), subject.Hex())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			err = &AuthenticationError{Err: err}
		}
		writeError(w, r, err)
		return
	}

	note, err := h.Notes.Create(r.Context(), &models.Note{
		Content:   req.Content,
		Important: req.Important,
		Date:      time.Now(),
		User:      user.ID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Users.AppendNote(r.Context(), user.ID, note.ID); err != nil {
		writeError(w, r, errors.Wrapf(err, "linking note %s to user %s", note.ID.Hex(), user.ID.Hex()))
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote removes a note whoever asks and whether or not it exists. The
// owner's note list keeps the reference.
func (h *NoteHandlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.Notes.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateNote replaces the provided fields. An unknown id answers 200 with
// a null body; a missing body changes nothing.
func (h *NoteHandlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var update models.NoteUpdate
	if err := decodeJSON(r, &update); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, err)
		return
	}

	note, err := h.Notes.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
