package handlers

import (
	"encoding/json"
	"net/http"

	"notes-api/auth"
	"notes-api/db"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ValidationError reports missing or malformed input. Err, when set, is
// the decoding failure behind it.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// AuthenticationError wraps the reason a request could not be
// authenticated: a token sentinel or bad credentials.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string { return e.Err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.Err }

var errInvalidCredentials = errors.New("invalid username or password")

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// writeError is the single place errors become responses. Anything it
// cannot classify is logged and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *ValidationError
		authErr       *AuthenticationError
		notFoundErr   *NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorBody(validationErr.Msg))
	case errors.Is(err, db.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorBody(db.ErrInvalidID.Error()))
	case errors.Is(err, db.ErrDuplicateUsername):
		writeJSON(w, http.StatusBadRequest, errorBody(db.ErrDuplicateUsername.Error()))
	case errors.As(err, &authErr):
		logrus.Debugf("%s %s: authentication failed: %v", r.Method, r.URL.Path, authErr.Err)
		writeJSON(w, http.StatusUnauthorized, errorBody(authMessage(authErr.Err)))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorBody(notFoundErr.Error()))
	default:
		logrus.WithError(err).Errorf("%s %s", r.Method, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
	}
}

func authMessage(err error) string {
	for _, known := range []error{auth.ErrMissingToken, auth.ErrInvalidToken, auth.ErrTokenExpired, errInvalidCredentials} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return auth.ErrInvalidToken.Error()
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ValidationError{Msg: "malformed JSON body", Err: err}
	}
	return nil
}

// UnknownEndpoint answers routes that do not exist.
func UnknownEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody("unknown endpoint"))
}
