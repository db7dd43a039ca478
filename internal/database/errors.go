package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a link with a shortened code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when no link matches the given
	// shortened code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrEmailExists is returned when an attempt is made to create a
	// user with an email that is already registered.
	ErrEmailExists = errors.New("email exists")
	// ErrUserNotFound is returned when no user matches the given
	// identifier or email.
	ErrUserNotFound = errors.New("user not found")
)
