// Package services coordinates writes (login, registration, message send,
// profile update) and the read-side fetch registry over the authorized
// client, session store, and query cache.
//
// This file centralizes the local-validation error values returned before
// any network call is attempted. They are sentinel errors so callers can
// branch with errors.Is and render field-level feedback.
package services

import "errors"

var (
	// ErrEmptyMessage is returned when a message send contains no text after
	// trimming whitespace. The request is rejected locally.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrMissingCredentials is returned when a login is attempted with an
	// empty username or password.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrIncompleteRegistration is returned when a registration is missing
	// the username, email, or password.
	ErrIncompleteRegistration = errors.New("username, email and password are required")

	// ErrEmptyProfileUpdate is returned when a profile update carries no
	// fields to change.
	ErrEmptyProfileUpdate = errors.New("no profile fields to update")

	// ErrMissingChatID is returned when a message send names no chat.
	ErrMissingChatID = errors.New("chat id is required")
)
