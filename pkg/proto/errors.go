package proto

import (
	"errors"
)

var (
	// ErrInvalidParameter is returned when a request is malformed or is
	// missing a required value.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrAuthorizationRequired is returned when no credentials are presented
	// for an operation that is not allowed anonymously.
	ErrAuthorizationRequired = errors.New("authorization required")
	// ErrInvalidUserOrPassword is returned when the identity provider rejects
	// the presented credentials.
	ErrInvalidUserOrPassword = errors.New("invalid user or password")
	// ErrNotImplemented is returned for protocol features this server does
	// not provide.
	ErrNotImplemented = errors.New("not implemented")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExist is returned when a user already exists.
	ErrUserExist = errors.New("user already exists")
)
