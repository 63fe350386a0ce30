package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	IsBlocked    bool      `json:"isBlocked"`
	Registered   time.Time `json:"registered"`
	BestCPM      float64   `json:"bestCpm"`
	// Certificate ids ordered by issue time.
	Certificates []string `json:"certificates"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return errors.New("invalid role")
	}
	return nil
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserRef is the populated owner shown next to typing tests.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserUpdate carries the admin-editable fields; nil means unchanged.
type UserUpdate struct {
	Name       *string
	Email      *string
	IsVerified *bool
}
