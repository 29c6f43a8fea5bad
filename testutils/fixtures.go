package testutils

import (
	"context"
	"testing"
	"time"

	"notes-api/db"
	"notes-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var InitialNotes = []models.Note{
	{Content: "HTML is easy", Important: false},
	{Content: "Browser can execute only Javascript", Important: true},
}

// CreateTestUser stores a user with a bcrypt hash of password. An empty
// username gets a random one.
func CreateTestUser(t *testing.T, store *db.Store, username, password string) *models.User {
	t.Helper()
	if username == "" {
		username = "user-" + uuid.New().String()[:8]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := store.Users.Create(context.Background(), &models.User{
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
	})
	require.NoError(t, err)
	return user
}

// SeedNotes stores InitialNotes owned by owner, in order.
func SeedNotes(t *testing.T, store *db.Store, owner *models.User) []*models.Note {
	t.Helper()
	var created []*models.Note
	for _, n := range InitialNotes {
		note := n
		note.User = owner.ID
		note.Date = time.Now()
		saved, err := store.Notes.Create(context.Background(), &note)
		require.NoError(t, err)
		require.NoError(t, store.Users.AppendNote(context.Background(), owner.ID, saved.ID))
		created = append(created, saved)
	}
	return created
}

// NonExistingID returns a well-formed id that no note has.
func NonExistingID(t *testing.T, store *db.Store, owner *models.User) string {
	t.Helper()
	note, err := store.Notes.Create(context.Background(), &models.Note{Content: "Will be deleted soon", User: owner.ID})
	require.NoError(t, err)
	require.NoError(t, store.Notes.DeleteByID(context.Background(), note.ID.Hex()))
	return note.ID.Hex()
}

func NotesInDB(t *testing.T, store *db.Store) []*models.NoteWithUser {
	t.Helper()
	notes, err := store.Notes.FindAll(context.Background())
	require.NoError(t, err)
	return notes
}

func UsersInDB(t *testing.T, store *db.Store) []*models.UserWithNotes {
	t.Helper()
	users, err := store.Users.FindAll(context.Background())
	require.NoError(t, err)
	return users
}
