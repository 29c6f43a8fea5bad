package db

import (
	"context"
	"time"

	"notes-api/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNoteRepository implements NoteRepository for MongoDB
type MongoNoteRepository struct {
	client          *mongo.Client
	database        string
	collection      string
	usersCollection string
}

func NewMongoNoteRepository(client *mongo.Client, database, collection, usersCollection string) *MongoNoteRepository {
	return &MongoNoteRepository{
		client:          client,
		database:        database,
		collection:      collection,
		usersCollection: usersCollection,
	}
}

func (r *MongoNoteRepository) notes() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

// FindAll returns every note in natural order with its owner expanded.
// Owners are loaded with one extra query, the way a populate would.
func (r *MongoNoteRepository) FindAll(ctx context.Context) ([]*models.NoteWithUser, error) {
	cursor, err := r.notes().Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error finding notes")
	}
	defer cursor.Close(ctx)

	var notes []*models.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, errors.Wrap(err, "error decoding notes")
	}

	ownerIDs := make([]primitive.ObjectID, 0, len(notes))
	for _, n := range notes {
		ownerIDs = append(ownerIDs, n.User)
	}
	owners := map[primitive.ObjectID]*models.UserSummary{}
	if len(ownerIDs) > 0 {
		opts := options.Find().SetProjection(bson.M{"name": 1, "username": 1})
		cursor, err := r.client.Database(r.database).Collection(r.usersCollection).
			Find(ctx, bson.M{"_id": bson.M{"$in": ownerIDs}}, opts)
		if err != nil {
			return nil, errors.Wrap(err, "error finding note owners")
		}
		defer cursor.Close(ctx)

		var summaries []*models.UserSummary
		if err = cursor.All(ctx, &summaries); err != nil {
			return nil, errors.Wrap(err, "error decoding note owners")
		}
		for _, s := range summaries {
			owners[s.ID] = s
		}
	}

	result := make([]*models.NoteWithUser, 0, len(notes))
	for _, n := range notes {
		result = append(result, n.WithUser(owners[n.User]))
	}
	return result, nil
}

func (r *MongoNoteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var note models.Note
	err = r.notes().FindOne(ctx, bson.M{"_id": objectID}).Decode(&note)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "error finding note")
	}
	return &note, nil
}

func (r *MongoNoteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	if note.ID.IsZero() {
		note.ID = primitive.NewObjectID()
	}
	if note.Date.IsZero() {
		note.Date = time.Now()
	}
	// BSON dates keep millisecond precision; match what a later read returns.
	note.Date = note.Date.Truncate(time.Millisecond).UTC()

	if _, err := r.notes().InsertOne(ctx, note); err != nil {
		return nil, errors.Wrap(err, "error inserting note")
	}
	return note, nil
}

func (r *MongoNoteRepository) Update(ctx context.Context, id string, update models.NoteUpdate) (*models.Note, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if update.IsEmpty() {
		note, err := r.FindByID(ctx, id)
		if err == ErrNotFound {
			return nil, nil
		}
		return note, err
	}

	set := bson.M{}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if update.Important != nil {
		set["important"] = *update.Important
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note models.Note
	err = r.notes().FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&note)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "error updating note")
	}
	return &note, nil
}

func (r *MongoNoteRepository) DeleteByID(ctx context.Context, id string) error {
	objectID, err := parseID(id)
	if err != nil {
		return err
	}

	_, err = r.notes().DeleteOne(ctx, bson.M{"_id": objectID})
	return errors.Wrap(err, "error deleting note")
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	client          *mongo.Client
	database        string
	collection      string
	notesCollection string
}

func NewMongoUserRepository(client *mongo.Client, database, collection, notesCollection string) *MongoUserRepository {
	return &MongoUserRepository{
		client:          client,
		database:        database,
		collection:      collection,
		notesCollection: notesCollection,
	}
}

func (r *MongoUserRepository) users() *mongo.Collection {
	return r.client.Database(r.database).Collection(r.collection)
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]*models.UserWithNotes, error) {
	cursor, err := r.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error finding users")
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "error decoding users")
	}

	var noteIDs []primitive.ObjectID
	for _, u := range users {
		noteIDs = append(noteIDs, u.Notes...)
	}
	notes := map[primitive.ObjectID]models.NoteSummary{}
	if len(noteIDs) > 0 {
		opts := options.Find().SetProjection(bson.M{"content": 1, "date": 1})
		cursor, err := r.client.Database(r.database).Collection(r.notesCollection).
			Find(ctx, bson.M{"_id": bson.M{"$in": noteIDs}}, opts)
		if err != nil {
			return nil, errors.Wrap(err, "error finding user notes")
		}
		defer cursor.Close(ctx)

		var summaries []models.NoteSummary
		if err = cursor.All(ctx, &summaries); err != nil {
			return nil, errors.Wrap(err, "error decoding user notes")
		}
		for _, s := range summaries {
			notes[s.ID] = s
		}
	}

	result := make([]*models.UserWithNotes, 0, len(users))
	for _, u := range users {
		expanded := &models.UserWithNotes{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Notes:    []models.NoteSummary{},
		}
		// References to deleted notes are dropped, as a populate would.
		for _, id := range u.Notes {
			if n, ok := notes[id]; ok {
				expanded.Notes = append(expanded.Notes, n)
			}
		}
		result = append(result, expanded)
	}
	return result, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.users().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "error finding user")
	}
	if user.Notes == nil {
		user.Notes = []primitive.ObjectID{}
	}
	return &user, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Notes == nil {
		user.Notes = []primitive.ObjectID{}
	}

	if _, err := r.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, errors.Wrap(err, "error inserting user")
	}
	return user, nil
}

func (r *MongoUserRepository) AppendNote(ctx context.Context, userID, noteID primitive.ObjectID) error {
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"notes": noteID}})
	if err != nil {
		return errors.Wrap(err, "error appending note to user")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
