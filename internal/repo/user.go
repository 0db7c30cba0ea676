package repo

import (
	"context"
	"database/sql"

	"github.com/scribeworks/blog-backend/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `id, username, description, COALESCE(profile_image, ''), created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Description,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ==========================
// Register (profile + credential in one transaction)
// ==========================

// Register inserts the profile row and the credential row atomically. The
// login username starts equal to the display username and never changes
// afterwards.
func (r *UserRepo) Register(ctx context.Context, username, passwordHash string) (*models.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (username)
		 VALUES ($1)
		 RETURNING `+userColumns,
		username,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Description,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credentials (user_id, login_username, password_hash)
		 VALUES ($1, $2, $3)`,
		user.ID, username, passwordHash,
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// ==========================
// Get Credential By Login Username
// ==========================
func (r *UserRepo) GetCredentialByLogin(ctx context.Context, loginUsername string) (*models.Credential, error) {
	cred := &models.Credential{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, login_username, password_hash, created_at, updated_at
		 FROM credentials
		 WHERE login_username = $1`,
		loginUsername,
	).Scan(
		&cred.ID,
		&cred.UserID,
		&cred.LoginUsername,
		&cred.PasswordHash,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// ==========================
// Username Taken (display-name collision check)
// ==========================
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, excludeID int) (bool, error) {
	var taken bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username, excludeID,
	).Scan(&taken)
	return taken, err
}

// ==========================
// Update Profile (partial)
// ==========================

// UpdateProfile applies only the provided fields; nil pointers leave the
// stored value untouched. updated_at is always refreshed.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int, username, description, profileImage *string) (*models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`UPDATE users
		 SET username = COALESCE($2, username),
		     description = COALESCE($3, description),
		     profile_image = COALESCE($4, profile_image),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, username, description, profileImage))
}

// ==========================
// Count Users
// ==========================
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
