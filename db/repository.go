package db

import (
	"context"
	"database/sql"

	"notes-api/config"
	"notes-api/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("malformatted id")
	ErrDuplicateUsername = errors.New("username must be unique")
)

// NoteRepository defines the note operations the routers need
type NoteRepository interface {
	FindAll(ctx context.Context) ([]*models.NoteWithUser, error)
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	// Update returns (nil, nil) when no note has the given id.
	Update(ctx context.Context, id string, update models.NoteUpdate) (*models.Note, error)
	// DeleteByID succeeds whether or not the note exists.
	DeleteByID(ctx context.Context, id string) error
}

// UserRepository defines the user operations the routers need
type UserRepository interface {
	FindAll(ctx context.Context) ([]*models.UserWithNotes, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	AppendNote(ctx context.Context, userID, noteID primitive.ObjectID) error
}

// Store bundles the repositories of one backend with the connection that
// backs them. It is opened once and closed on shutdown.
type Store struct {
	Notes NoteRepository
	Users UserRepository
	close func(ctx context.Context) error
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	SQLDB       *sql.DB
	MongoClient *mongo.Client
	DBName      string
}

func NewRepositoryFactory(sqlDB *sql.DB, mongoClient *mongo.Client, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLDB:       sqlDB,
		MongoClient: mongoClient,
		DBName:      dbName,
	}
}

func (f *RepositoryFactory) NewNoteRepository() NoteRepository {
	if f.SQLDB != nil {
		return NewSQLNoteRepository(f.SQLDB)
	}
	return NewMongoNoteRepository(f.MongoClient, f.DBName, "notes", "users")
}

func (f *RepositoryFactory) NewUserRepository() UserRepository {
	if f.SQLDB != nil {
		return NewSQLUserRepository(f.SQLDB)
	}
	return NewMongoUserRepository(f.MongoClient, f.DBName, "users", "notes")
}

// Store returns a Store whose Close releases the factory's connection.
func (f *RepositoryFactory) Store() *Store {
	s := &Store{
		Notes: f.NewNoteRepository(),
		Users: f.NewUserRepository(),
	}
	if f.SQLDB != nil {
		s.close = func(context.Context) error { return f.SQLDB.Close() }
	} else {
		s.close = f.MongoClient.Disconnect
	}
	return s
}

// Open connects to the backend selected by cfg and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.DatabaseType {
	case config.MongoDB:
		client, err := ConnectToMongo(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		if err := EnsureMongoIndexes(ctx, client.Database(cfg.DatabaseName)); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
		return NewRepositoryFactory(nil, client, cfg.DatabaseName).Store(), nil
	case config.MySQL, config.SQLite:
		dialect := MySQLDialect
		if cfg.DatabaseType == config.SQLite {
			dialect = SQLiteDialect
		}
		sqlDB, err := ConnectToSQL(ctx, dialect, cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		return NewRepositoryFactory(sqlDB, nil, cfg.DatabaseName).Store(), nil
	}
	return nil, errors.Errorf("unsupported database type %q", cfg.DatabaseType)
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return objectID, nil
}
