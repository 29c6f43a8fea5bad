package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	Name         string               `json:"name" bson:"name"`
	PasswordHash string               `json:"-" bson:"passwordHash"`
	Notes        []primitive.ObjectID `json:"notes" bson:"notes"`
}

type Note struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Important bool               `json:"important" bson:"important"`
	Date      time.Time          `json:"date" bson:"date"`
	User      primitive.ObjectID `json:"user" bson:"user"`
}

// UserSummary is the part of a user embedded into listed notes.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Name     string             `json:"name" bson:"name"`
}

// NoteWithUser is a note whose owner reference has been expanded.
// User is nil when the owner no longer exists.
type NoteWithUser struct {
	ID        primitive.ObjectID `json:"id"`
	Content   string             `json:"content"`
	Important bool               `json:"important"`
	Date      time.Time          `json:"date"`
	User      *UserSummary       `json:"user"`
}

type NoteSummary struct {
	ID      primitive.ObjectID `json:"id" bson:"_id"`
	Content string             `json:"content" bson:"content"`
	Date    time.Time          `json:"date" bson:"date"`
}

// UserWithNotes is a user whose note references have been expanded.
type UserWithNotes struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Name     string             `json:"name"`
	Notes    []NoteSummary      `json:"notes"`
}

// NoteUpdate carries the fields of a PUT body; nil fields are left untouched.
type NoteUpdate struct {
	Content   *string `json:"content"`
	Important *bool   `json:"important"`
}

func (u NoteUpdate) IsEmpty() bool {
	return u.Content == nil && u.Important == nil
}

func (n *Note) WithUser(u *UserSummary) *NoteWithUser {
	return &NoteWithUser{
		ID:        n.ID,
		Content:   n.Content,
		Important: n.Important,
		Date:      n.Date,
		User:      u,
	}
}
