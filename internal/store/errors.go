// Package store implements the credential store and the post repository
// on top of gorm. All expected failures are sentinel errors so that the
// api layer can translate them with errors.Is.
package store

import "errors"

var (
	// ErrInvalidCredentials deliberately covers both an unknown email
	// and a wrong password so login can't be used to enumerate accounts
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrDuplicateUsername = errors.New("that username is taken")
	ErrDuplicateEmail    = errors.New("that email is already registered")
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("only the owner may do that")
	ErrEmptyTitle        = errors.New("title can't be empty")
	ErrEmptyContent      = errors.New("content can't be empty")
)
