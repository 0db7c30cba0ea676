package models

import "time"

// User is the author-facing profile record. The display username is mutable;
// login identity lives in Credential.
type User struct {
	ID           int       `json:"-"`
	Username     string    `json:"username"`
	Description  string    `json:"description"`
	ProfileImage string    `json:"profileImageBase64,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Credential pairs an immutable login username with its password hash.
// Created once at registration; never updated or deleted. Joined to the
// profile on UserID, never on a username.
type Credential struct {
	ID            int
	UserID        int
	LoginUsername string
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
