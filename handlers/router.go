package handlers

import (
	"net/http"

	"notes-api/auth"
	"notes-api/config"
	"notes-api/db"
	appmw "notes-api/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every endpoint to the given store and token service.
func NewRouter(store *db.Store, tokens *auth.TokenService, policy config.UserIDPolicy) http.Handler {
	notes := NewNoteHandlers(store, policy)
	users := NewUserHandlers(store)
	login := NewLoginHandler(store, tokens)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(appmw.Logger(logrus.StandardLogger()))
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS)
	r.Use(appmw.Authenticate(tokens))

	r.Route("/api/notes", func(r chi.Router) {
		r.Get("/", notes.GetNotes)
		r.Post("/", notes.CreateNote)
		r.Get("/{id}", notes.GetNote)
		r.Put("/{id}", notes.UpdateNote)
		r.Delete("/{id}", notes.DeleteNote)
	})
	r.Get("/api/users", users.GetUsers)
	r.Post("/api/users", users.CreateUser)
	r.Post("/api/login", login.Login)

	r.NotFound(UnknownEndpoint)
	return r
}
