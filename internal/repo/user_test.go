package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRepo_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users \(username\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "description", "profile_image", "created_at", "updated_at"}).
			AddRow(1, "alice", "", "", now, now))
	mock.ExpectExec(`INSERT INTO credentials \(user_id, login_username, password_hash\)`).
		WithArgs(1, "alice", "hashed-password").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewUserRepo(db)
	user, err := repo.Register(context.Background(), "alice", "hashed-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Description != "" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Register_RollbackOnCredentialFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	boom := errors.New("credential insert failed")
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users \(username\)`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "description", "profile_image", "created_at", "updated_at"}).
			AddRow(2, "bob", "", "", now, now))
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(2, "bob", "h").
		WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewUserRepo(db)
	_, err = repo.Register(context.Background(), "bob", "h")
	if !errors.Is(err, boom) {
		t.Fatalf("expected credential insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetCredentialByLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, login_username, password_hash`).
		WithArgs("charlie").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "login_username", "password_hash", "created_at", "updated_at"}).
			AddRow(5, 3, "charlie", "$2a$12$hash", now, now))

	repo := NewUserRepo(db)
	cred, err := repo.GetCredentialByLogin(context.Background(), "charlie")
	if err != nil {
		t.Fatalf("GetCredentialByLogin: %v", err)
	}
	if cred.UserID != 3 || cred.LoginUsername != "charlie" || cred.PasswordHash != "$2a$12$hash" {
		t.Errorf("unexpected credential: %+v", cred)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetCredentialByLogin_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, login_username, password_hash`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetCredentialByLogin(context.Background(), "nobody")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_UsernameTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("dora", 7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewUserRepo(db)
	taken, err := repo.UsernameTaken(context.Background(), "dora", 7)
	if err != nil {
		t.Fatalf("UsernameTaken: %v", err)
	}
	if !taken {
		t.Error("expected taken = true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_UpdateProfile_Partial(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	// Only the description changes; username and image stay NULL in the query.
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(4, nil, "new bio", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "description", "profile_image", "created_at", "updated_at"}).
			AddRow(4, "erin", "new bio", "", now, now))

	repo := NewUserRepo(db)
	desc := "new bio"
	user, err := repo.UpdateProfile(context.Background(), 4, nil, &desc, nil)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Username != "erin" || user.Description != "new bio" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
