package models

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID           int
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type Group struct {
	ID          int
	Title       string
	Slug        string
	Description string
}

type Post struct {
	ID        int
	Text      string
	AuthorID  int
	Author    string
	GroupID   *int
	GroupName string
	GroupSlug string
	Image     string
	CreatedAt time.Time
}

type Comment struct {
	ID        int
	PostID    int
	AuthorID  int
	Author    string
	Text      string
	CreatedAt time.Time
}
