package handlers

import (
	"net/http"

	"notes-api/db"
	"notes-api/models"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for new accounts.
const passwordCost = 10

type UserHandlers struct {
	Users db.UserRepository
}

func NewUserHandlers(store *db.Store) *UserHandlers {
	return &UserHandlers{Users: store.Users}
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username == "" {
		writeError(w, r, invalid("username is required"))
		return
	}
	if req.Password == "" {
		writeError(w, r, invalid("password is required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			err = invalid("password is too long")
		}
		writeError(w, r, err)
		return
	}

	user, err := h.Users.Create(r.Context(), &models.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
