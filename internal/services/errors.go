package services

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserBlocked         = errors.New("user is blocked")
	ErrNotAdmin            = errors.New("unauthorized")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTextNotFound        = errors.New("no matching texts found")
	ErrCertificateNotFound = errors.New("certificate not found")
)
