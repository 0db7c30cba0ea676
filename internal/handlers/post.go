package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/scribeworks/blog-backend/internal/middleware"
	"github.com/scribeworks/blog-backend/internal/models"
	"github.com/scribeworks/blog-backend/internal/repo"
	"github.com/scribeworks/blog-backend/internal/slug"
)

// ==========================
// Post Handler
// ==========================
type PostHandler struct {
	Posts *repo.PostRepo
}

var validate = validator.New()

type createPostInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=300"`
	Content     string `json:"content" validate:"required,max=50000"`
	Published   bool   `json:"published"`
}

type updatePostInput struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=300"`
	Content     *string `json:"content" validate:"omitempty,max=50000"`
	Published   *bool   `json:"published"`
}

// postValidationMessage maps the first validator failure to the message the
// API has always returned for that field.
func postValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Field() {
		case "Title":
			if fe.Tag() == "required" {
				return "Title is required"
			}
			return "Title must be 200 characters or less"
		case "Description":
			return "Description must be 300 characters or less"
		case "Content":
			if fe.Tag() == "required" {
				return "Content is required"
			}
			return "Content must be 50,000 characters or less"
		}
	}
	return "Invalid input"
}

// ==========================
// List Published Posts (paginated)
// ==========================
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 10
	if p := r.URL.Query().Get("page"); p != "" {
		if val, err := strconv.Atoi(p); err == nil && val > 0 {
			page = val
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	offset := (page - 1) * limit

	posts, err := h.Posts.ListPublished(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list posts", "err", err)
		JSONError(w, "Failed to retrieve posts", http.StatusInternalServerError)
		return
	}
	total, err := h.Posts.CountPublished(r.Context())
	if err != nil {
		slog.Error("count posts", "err", err)
		JSONError(w, "Failed to retrieve posts", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Posts retrieved successfully",
		"posts":   posts,
		"total":   total,
	})
}

// ==========================
// List Published Posts By Author
// ==========================
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	// Drafts stay invisible here even for the author's own listing; only the
	// authenticated edit paths can see unpublished posts.
	posts, err := h.Posts.ListPublishedByAuthor(r.Context(), username)
	if err != nil {
		slog.Error("list posts by author", "author", username, "err", err)
		JSONError(w, "Failed to retrieve user posts", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Posts by " + username + " retrieved successfully",
		"posts":   posts,
		"total":   len(posts),
	})
}

// ==========================
// Get Post By ID
// ==========================
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.Posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		slog.Error("get post", "id", id, "err", err)
		JSONError(w, "Failed to retrieve post", http.StatusInternalServerError)
		return
	}

	// An unpublished post answers exactly like a missing one so the public
	// path cannot be used to probe for drafts.
	if !post.Published {
		JSONError(w, "Post not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Post retrieved successfully",
		"post":    post,
	})
}

// ==========================
// Create Post (authenticated)
// ==========================
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		JSONError(w, "Authorization token required", http.StatusUnauthorized)
		return
	}

	var input createPostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONError(w, postValidationMessage(err), http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		JSONError(w, "Title is required", http.StatusBadRequest)
		return
	}
	if content == "" {
		JSONError(w, "Content is required", http.StatusBadRequest)
		return
	}

	uniqueSlug, err := slug.Unique(slug.Make(title), func(s string) (bool, error) {
		return h.Posts.SlugExists(r.Context(), s, 0)
	})
	if err != nil {
		slog.Error("create post: slug probe", "err", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	post, err := h.Posts.Create(r.Context(), title, strings.TrimSpace(input.Description), content,
		claims.Username, uniqueSlug, input.Published)
	if err != nil {
		// A concurrent writer can win the slug between probe and insert; the
		// unique constraint turns that race into a conflict instead of a
		// duplicate slug.
		if isUniqueViolation(err) {
			JSONError(w, "Slug already in use", http.StatusConflict)
			return
		}
		slog.Error("create post", "err", err)
		JSONError(w, "Failed to create post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Post created successfully",
		"post":    post,
	})
}

// ==========================
// Update Post (author only, partial)
// ==========================
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		JSONError(w, "Authorization token required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	existing, err := h.Posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		slog.Error("update post: fetch", "id", id, "err", err)
		JSONError(w, "Failed to update post", http.StatusInternalServerError)
		return
	}

	if existing.Author != claims.Username {
		JSONError(w, "Not authorized to edit this post", http.StatusForbidden)
		return
	}

	var input updatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONError(w, postValidationMessage(err), http.StatusBadRequest)
		return
	}

	var title, description, content, newSlug *string
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			JSONError(w, "Title is required", http.StatusBadRequest)
			return
		}
		title = &trimmed

		// Title changed: regenerate the slug, excluding this post from the
		// collision probe so an unchanged base stays stable.
		if trimmed != existing.Title {
			s, err := slug.Unique(slug.Make(trimmed), func(s string) (bool, error) {
				return h.Posts.SlugExists(r.Context(), s, id)
			})
			if err != nil {
				slog.Error("update post: slug probe", "id", id, "err", err)
				JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
				return
			}
			newSlug = &s
		}
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		description = &trimmed
	}
	if input.Content != nil {
		trimmed := strings.TrimSpace(*input.Content)
		if trimmed == "" {
			JSONError(w, "Content is required", http.StatusBadRequest)
			return
		}
		content = &trimmed
	}

	post, err := h.Posts.Update(r.Context(), id, title, description, content, newSlug, input.Published)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		if isUniqueViolation(err) {
			JSONError(w, "Slug already in use", http.StatusConflict)
			return
		}
		slog.Error("update post", "id", id, "err", err)
		JSONError(w, "Failed to update post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Post updated successfully",
		"post":    post,
	})
}

// ==========================
// Delete Post (author only)
// ==========================
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		JSONError(w, "Authorization token required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	existing, err := h.Posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		slog.Error("delete post: fetch", "id", id, "err", err)
		JSONError(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}

	if existing.Author != claims.Username {
		JSONError(w, "Not authorized to delete this post", http.StatusForbidden)
		return
	}

	if err := h.Posts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		slog.Error("delete post", "id", id, "err", err)
		JSONError(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Post deleted successfully",
	})
}
