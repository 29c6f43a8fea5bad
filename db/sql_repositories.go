package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"notes-api/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SQLNoteRepository implements NoteRepository on database/sql. The queries
// are valid for both the MySQL and the SQLite dialect.
type SQLNoteRepository struct {
	db *sql.DB
}

func NewSQLNoteRepository(db *sql.DB) *SQLNoteRepository {
	return &SQLNoteRepository{db: db}
}

const noteColumns = "n.id, n.content, n.important, n.created_at, n.user_id"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner, extra ...any) (*models.Note, error) {
	var (
		note      models.Note
		id, owner string
		createdAt int64
	)
	dest := append([]any{&id, &note.Content, &note.Important, &createdAt, &owner}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if note.ID, err = primitive.ObjectIDFromHex(id); err != nil {
		return nil, errors.Wrapf(err, "corrupt note id %q", id)
	}
	if note.User, err = primitive.ObjectIDFromHex(owner); err != nil {
		return nil, errors.Wrapf(err, "corrupt owner id %q", owner)
	}
	note.Date = time.UnixMilli(createdAt).UTC()
	return &note, nil
}

func (r *SQLNoteRepository) FindAll(ctx context.Context) ([]*models.NoteWithUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+noteColumns+`, u.username, u.name
		FROM notes n
		LEFT JOIN users u ON u.id = n.user_id
		ORDER BY n.seq`)
	if err != nil {
		return nil, errors.Wrap(err, "error finding notes")
	}
	defer rows.Close()

	notes := []*models.NoteWithUser{}
	for rows.Next() {
		var username, name sql.NullString
		note, err := scanNote(rows, &username, &name)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning note")
		}
		var owner *models.UserSummary
		if username.Valid {
			owner = &models.UserSummary{ID: note.User, Username: username.String, Name: name.String}
		}
		notes = append(notes, note.WithUser(owner))
	}
	return notes, errors.Wrap(rows.Err(), "error iterating notes")
}

func (r *SQLNoteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes n WHERE n.id = ?", objectID.Hex())
	note, err := scanNote(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "error finding note")
	}
	return note, nil
}

func (r *SQLNoteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	if note.ID.IsZero() {
		note.ID = primitive.NewObjectID()
	}
	if note.Date.IsZero() {
		note.Date = time.Now()
	}
	note.Date = note.Date.Truncate(time.Millisecond).UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (id, content, important, created_at, user_id) VALUES (?, ?, ?, ?, ?)",
		note.ID.Hex(), note.Content, note.Important, note.Date.UnixMilli(), note.User.Hex())
	if err != nil {
		return nil, errors.Wrap(err, "error inserting note")
	}
	return note, nil
}

func (r *SQLNoteRepository) Update(ctx context.Context, id string, update models.NoteUpdate) (*models.Note, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if !update.IsEmpty() {
		var (
			set  []string
			args []any
		)
		if update.Content != nil {
			set = append(set, "content = ?")
			args = append(args, *update.Content)
		}
		if update.Important != nil {
			set = append(set, "important = ?")
			args = append(args, *update.Important)
		}
		args = append(args, objectID.Hex())

		// MySQL reports zero affected rows for a no-op update, so existence
		// is decided by the read below.
		_, err = r.db.ExecContext(ctx, "UPDATE notes SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return nil, errors.Wrap(err, "error updating note")
		}
	}

	note, err := r.FindByID(ctx, objectID.Hex())
	if err == ErrNotFound {
		return nil, nil
	}
	return note, err
}

func (r *SQLNoteRepository) DeleteByID(ctx context.Context, id string) error {
	objectID, err := parseID(id)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", objectID.Hex())
	return errors.Wrap(err, "error deleting note")
}

// SQLUserRepository implements UserRepository on database/sql. A user's
// note references live in user_notes, ordered by insertion.
type SQLUserRepository struct {
	db *sql.DB
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) FindAll(ctx context.Context) ([]*models.UserWithNotes, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, username, name FROM users ORDER BY seq")
	if err != nil {
		return nil, errors.Wrap(err, "error finding users")
	}
	defer rows.Close()

	users := []*models.UserWithNotes{}
	byID := map[string]*models.UserWithNotes{}
	for rows.Next() {
		var id string
		u := &models.UserWithNotes{Notes: []models.NoteSummary{}}
		if err := rows.Scan(&id, &u.Username, &u.Name); err != nil {
			return nil, errors.Wrap(err, "error scanning user")
		}
		if u.ID, err = primitive.ObjectIDFromHex(id); err != nil {
			return nil, errors.Wrapf(err, "corrupt user id %q", id)
		}
		users = append(users, u)
		byID[id] = u
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating users")
	}

	// The inner join drops references to deleted notes.
	noteRows, err := r.db.QueryContext(ctx, `
		SELECT un.user_id, n.id, n.content, n.created_at
		FROM user_notes un
		JOIN notes n ON n.id = un.note_id
		ORDER BY un.seq`)
	if err != nil {
		return nil, errors.Wrap(err, "error finding user notes")
	}
	defer noteRows.Close()

	for noteRows.Next() {
		var (
			userID, noteID string
			createdAt      int64
			summary        models.NoteSummary
		)
		if err := noteRows.Scan(&userID, &noteID, &summary.Content, &createdAt); err != nil {
			return nil, errors.Wrap(err, "error scanning user note")
		}
		u, ok := byID[userID]
		if !ok {
			continue
		}
		if summary.ID, err = primitive.ObjectIDFromHex(noteID); err != nil {
			return nil, errors.Wrapf(err, "corrupt note id %q", noteID)
		}
		summary.Date = time.UnixMilli(createdAt).UTC()
		u.Notes = append(u.Notes, summary)
	}
	return users, errors.Wrap(noteRows.Err(), "error iterating user notes")
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "id = ?", objectID.Hex())
}

func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *SQLUserRepository) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		user models.User
		id   string
	)
	err := r.db.QueryRowContext(ctx, "SELECT id, username, name, password_hash FROM users WHERE "+where, arg).
		Scan(&id, &user.Username, &user.Name, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "error finding user")
	}
	if user.ID, err = primitive.ObjectIDFromHex(id); err != nil {
		return nil, errors.Wrapf(err, "corrupt user id %q", id)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT note_id FROM user_notes WHERE user_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, errors.Wrap(err, "error finding user notes")
	}
	defer rows.Close()

	user.Notes = []primitive.ObjectID{}
	for rows.Next() {
		var noteID string
		if err := rows.Scan(&noteID); err != nil {
			return nil, errors.Wrap(err, "error scanning user note")
		}
		oid, err := primitive.ObjectIDFromHex(noteID)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt note id %q", noteID)
		}
		user.Notes = append(user.Notes, oid)
	}
	return &user, errors.Wrap(rows.Err(), "error iterating user notes")
}

func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Notes == nil {
		user.Notes = []primitive.ObjectID{}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error starting transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, username, name, password_hash) VALUES (?, ?, ?, ?)",
		user.ID.Hex(), user.Username, user.Name, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, errors.Wrap(err, "error inserting user")
	}
	for _, noteID := range user.Notes {
		_, err = tx.ExecContext(ctx, "INSERT INTO user_notes (user_id, note_id) VALUES (?, ?)", user.ID.Hex(), noteID.Hex())
		if err != nil {
			return nil, errors.Wrap(err, "error inserting user note")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "error committing user")
	}
	return user, nil
}

func (r *SQLUserRepository) AppendNote(ctx context.Context, userID, noteID primitive.ObjectID) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user_notes (user_id, note_id) SELECT id, ? FROM users WHERE id = ?",
		noteID.Hex(), userID.Hex())
	if err != nil {
		return errors.Wrap(err, "error appending note to user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error appending note to user")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
