package handlers

import (
	"net/http"

	"notes-api/auth"
	"notes-api/db"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type LoginHandler struct {
	Users  db.UserRepository
	Tokens *auth.TokenService
}

func NewLoginHandler(store *db.Store, tokens *auth.TokenService) *LoginHandler {
	return &LoginHandler{Users: store.Users, Tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Users.FindByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, r, &AuthenticationError{Err: errInvalidCredentials})
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: user.Username, Name: user.Name})
}
