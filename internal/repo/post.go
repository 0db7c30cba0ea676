package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/scribeworks/blog-backend/internal/models"
)

// ErrNotFound is returned when a write targets a post id that does not exist.
var ErrNotFound = errors.New("post not found")

// ==========================
// PostRepo
// ==========================
type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

const postColumns = `id, title, description, content, author, slug, published, created_at, updated_at`

func scanPost(row *sql.Row) (models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Content,
		&p.Author,
		&p.Slug,
		&p.Published,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.Content,
			&p.Author,
			&p.Slug,
			&p.Published,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ==========================
// Create Post
// ==========================
func (r *PostRepo) Create(ctx context.Context, title, description, content, author, slug string, published bool) (models.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx,
		`INSERT INTO posts (title, description, content, author, slug, published)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+postColumns,
		title, description, content, author, slug, published))
}

// ==========================
// Get Post By ID
// ==========================
func (r *PostRepo) GetByID(ctx context.Context, id int) (models.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

// ==========================
// List Published (paginated, newest first)
// ==========================
func (r *PostRepo) ListPublished(ctx context.Context, limit, offset int) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE published = TRUE
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// ==========================
// List Published By Author (newest first)
// ==========================
func (r *PostRepo) ListPublishedByAuthor(ctx context.Context, author string) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE author = $1 AND published = TRUE
		 ORDER BY created_at DESC`,
		author,
	)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// ==========================
// Counts
// ==========================
func (r *PostRepo) CountPublished(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE published = TRUE`).Scan(&n)
	return n, err
}

func (r *PostRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

// ==========================
// Slug Exists (optionally excluding one post during updates)
// ==========================
func (r *PostRepo) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

// ==========================
// Update Post (partial)
// ==========================

// Update applies only the provided fields; nil pointers leave the stored value
// untouched. slug is set by the caller only when the title changed.
func (r *PostRepo) Update(ctx context.Context, id int, title, description, content, slug *string, published *bool) (models.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx,
		`UPDATE posts
		 SET title = COALESCE($2, title),
		     description = COALESCE($3, description),
		     content = COALESCE($4, content),
		     slug = COALESCE($5, slug),
		     published = COALESCE($6, published),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+postColumns,
		id, title, description, content, slug, published))
}

// ==========================
// Delete Post
// ==========================
func (r *PostRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
