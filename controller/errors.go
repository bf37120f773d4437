package controller

import "errors"

// Custom error types for better error handling
// These errors can be checked using errors.Is() instead of string comparison
var (
	ErrLinkNotFound     = errors.New("link not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNoFieldsProvided = errors.New("at least one field (title, url, icon, active, or embedType) must be provided")
	ErrInvalidURL       = errors.New("url must start with http:// or https://")
	ErrReorderMismatch  = errors.New("reorder payload must contain every link exactly once")
	ErrEmailInUse       = errors.New("email already in use")
	ErrUsernameInUse    = errors.New("username already taken")
	ErrInvalidLogin     = errors.New("invalid email or password")
)
