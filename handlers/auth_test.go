package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-api/testutils"
)

func login(h *LoginHandler, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, _ := http.NewRequest("POST", "/api/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.Login).ServeHTTP(rr, req)
	return rr
}

func TestLogin(t *testing.T) {
	store := testutils.SetupTestStore(t)
	user := testutils.CreateTestUser(t, store, "root", "sekret")
	h := NewLoginHandler(store, testTokens)

	t.Run("Valid credentials", func(t *testing.T) {
		rr := login(h, "root", "sekret")

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("Handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}

		var response map[string]string
		json.Unmarshal(rr.Body.Bytes(), &response)

		if response["username"] != "root" || response["name"] != "root" {
			t.Errorf("Unexpected login response %v", response)
		}
		claims, err := testTokens.Verify(response["token"])
		if err != nil {
			t.Fatalf("Issued token does not verify: %v", err)
		}
		if claims.UserID != user.ID.Hex() || claims.Username != "root" {
			t.Errorf("Unexpected claims %+v", claims)
		}
	})

	t.Run("Wrong password", func(t *testing.T) {
		rr := login(h, "root", "wrong")

		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}
		var response map[string]string
		json.Unmarshal(rr.Body.Bytes(), &response)
		if response["error"] != "invalid username or password" {
			t.Errorf("Unexpected error body %v", response)
		}
	})

	t.Run("Unknown user", func(t *testing.T) {
		rr := login(h, "nobody", "sekret")

		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}
	})

	t.Run("Malformed body", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/login", bytes.NewBufferString("not json"))
		rr := httptest.NewRecorder()
		http.HandlerFunc(h.Login).ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})
}
