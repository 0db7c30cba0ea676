package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/scribeworks/blog-backend/internal/auth"
	"github.com/scribeworks/blog-backend/internal/middleware"
	"github.com/scribeworks/blog-backend/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-test-secret"

func newAuthHandler(db *sql.DB) *AuthHandler {
	return &AuthHandler{
		Users:    repo.NewUserRepo(db),
		Secret:   []byte(testSecret),
		TokenTTL: 7 * 24 * time.Hour,
	}
}

var userCols = []string{"id", "username", "description", "profile_image", "created_at", "updated_at"}

func TestAuthHandler_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users \(username\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "", "", now, now))
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(1, "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	h := newAuthHandler(db)
	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status: got %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Token == "" || out.User.Username != "alice" {
		t.Errorf("unexpected response: %+v", out)
	}

	// The issued token must verify immediately against the same secret.
	claims, err := auth.VerifyToken(out.Token, []byte(testSecret))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users \(username\)`).
		WithArgs("alice").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	h := newAuthHandler(db)
	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("Register status: got %d, want 409", rr.Code)
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || out.Message != "Username already exists" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)
	tests := []struct {
		name    string
		payload map[string]string
		message string
	}{
		{"missing fields", map[string]string{"username": "alice"}, "Username and password are required"},
		{"short username", map[string]string{"username": "ab", "password": "secret123"}, "Username must be at least 3 characters long"},
		{"short password", map[string]string{"username": "alice", "password": "12345"}, "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			h.Register(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
			var out struct {
				Message string `json:"message"`
			}
			json.NewDecoder(rr.Body).Decode(&out)
			if out.Message != tt.message {
				t.Errorf("message: got %q, want %q", out.Message, tt.message)
			}
		})
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

var credCols = []string{"id", "user_id", "login_username", "password_hash", "created_at", "updated_at"}

func TestAuthHandler_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, login_username, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(credCols).AddRow(1, 1, "alice", string(hash), now, now))
	mock.ExpectQuery(`SELECT id, username, description`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "hi there", "", now, now))

	h := newAuthHandler(db)
	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username    string `json:"username"`
			Description string `json:"description"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Token == "" || out.User.Username != "alice" || out.User.Description != "hi there" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_GenericFailureMessage(t *testing.T) {
	// Unknown username and wrong password must be indistinguishable.
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, login_username, password_hash`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT id, user_id, login_username, password_hash`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(credCols).AddRow(1, 1, "alice", string(hash), now, now))

	h := newAuthHandler(db)
	var messages []string
	for _, payload := range []map[string]string{
		{"username": "nobody", "password": "whatever1"},
		{"username": "alice", "password": "wrongpass"},
	} {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		h.Login(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Login status for %v: got %d, want 401", payload, rr.Code)
		}
		var out struct {
			Message string `json:"message"`
		}
		json.NewDecoder(rr.Body).Decode(&out)
		messages = append(messages, out.Message)
	}

	if messages[0] != messages[1] {
		t.Errorf("failure messages differ: %q vs %q", messages[0], messages[1])
	}
	if messages[0] != "Invalid username or password" {
		t.Errorf("unexpected message: %q", messages[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("alice-renamed", 4).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(4, "alice-renamed", "new bio", nil).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(4, "alice-renamed", "new bio", "", now, now))

	h := newAuthHandler(db)
	body, _ := json.Marshal(map[string]string{"username": "alice-renamed", "description": "new bio"})
	req := httptest.NewRequest("PUT", "/api/auth/profile", bytes.NewReader(body))
	claims := &auth.Claims{UserID: 4, Username: "alice"}
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateProfile status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Success bool `json:"success"`
		User    struct {
			Username    string `json:"username"`
			Description string `json:"description"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.User.Username != "alice-renamed" || out.User.Description != "new bio" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_UpdateProfile_NameCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("taken", 4).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	h := newAuthHandler(db)
	body, _ := json.Marshal(map[string]string{"username": "taken"})
	req := httptest.NewRequest("PUT", "/api/auth/profile", bytes.NewReader(body))
	req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{UserID: 4, Username: "alice"}))
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("UpdateProfile status: got %d, want 409", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_UpdateProfile_NoClaims(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)
	body, _ := json.Marshal(map[string]string{"description": "x"})
	req := httptest.NewRequest("PUT", "/api/auth/profile", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("UpdateProfile status: got %d, want 401", rr.Code)
	}
}
