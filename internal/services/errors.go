package services

import "errors"

var (
	// ErrEmailTaken rejects a signup for an email that already has a row.
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so a caller cannot probe which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTitleRequired = errors.New("title is required")
	ErrTaskNotFound  = errors.New("task not found")

	// ErrNotTaskOwner enforces owner scoping on mutation: only the user
	// that created a task may update or delete it.
	ErrNotTaskOwner = errors.New("task belongs to another user")
)
