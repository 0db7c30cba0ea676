package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/scribeworks/blog-backend/internal/auth"
	"github.com/scribeworks/blog-backend/internal/middleware"
	"github.com/scribeworks/blog-backend/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users    *repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if input.Username == "" || input.Password == "" {
		JSONError(w, "Username and password are required", http.StatusBadRequest)
		return
	}
	if len(input.Username) < 3 {
		JSONError(w, "Username must be at least 3 characters long", http.StatusBadRequest)
		return
	}
	if len(input.Password) < 6 {
		JSONError(w, "Password must be at least 6 characters long", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		slog.Error("register: hash password", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Register(r.Context(), input.Username, hash)
	if err != nil {
		if isUniqueViolation(err) {
			JSONError(w, "Username already exists", http.StatusConflict)
			return
		}
		slog.Error("register: create user", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	token, err := auth.IssueToken(user.ID, user.Username, h.Secret, h.TokenTTL)
	if err != nil {
		slog.Error("register: issue token", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if input.Username == "" || input.Password == "" {
		JSONError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	// Unknown username and wrong password answer identically so the response
	// never reveals which one was wrong.
	cred, err := h.Users.GetCredentialByLogin(r.Context(), input.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		slog.Error("login: fetch credential", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPassword(cred.PasswordHash, input.Password) {
		JSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetByID(r.Context(), cred.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("login: fetch profile", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	token, err := auth.IssueToken(cred.UserID, cred.LoginUsername, h.Secret, h.TokenTTL)
	if err != nil {
		slog.Error("login: issue token", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// ==========================
// Update Profile (authenticated, partial)
// ==========================
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		JSONError(w, "Authorization token required", http.StatusUnauthorized)
		return
	}

	var input struct {
		Username     *string `json:"username"`
		Description  *string `json:"description"`
		ProfileImage *string `json:"profileImageBase64"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if input.Username != nil && len(*input.Username) < 3 {
		JSONError(w, "Username must be at least 3 characters long", http.StatusBadRequest)
		return
	}

	// The token's stable user id is the authoritative identity; the display
	// username may have diverged from the login username.
	if input.Username != nil {
		taken, err := h.Users.UsernameTaken(r.Context(), *input.Username, claims.UserID)
		if err != nil {
			slog.Error("update profile: check username", "err", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if taken {
			JSONError(w, "Username already exists", http.StatusConflict)
			return
		}
	}

	user, err := h.Users.UpdateProfile(r.Context(), claims.UserID, input.Username, input.Description, input.ProfileImage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		if isUniqueViolation(err) {
			JSONError(w, "Username already exists", http.StatusConflict)
			return
		}
		slog.Error("update profile: update", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}
