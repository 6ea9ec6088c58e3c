package service

import (
	"errors"

	"filehost/internal/storage"
)

// Domain errors returned by the services. Handlers match them with errors.Is.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUsernameTaken         = errors.New("username already exists")
	ErrRequestAlreadyPending = errors.New("registration request already pending")
	ErrRequestNotFound       = errors.New("registration request not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrProtectedAccount      = errors.New("account is protected")
	ErrPayloadTooLarge       = errors.New("payload too large")
	ErrUploadFailed          = errors.New("upload failed")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidUsername       = errors.New("invalid username")
	ErrEmptyPassword         = errors.New("password is empty")
	ErrPasswordTooLong       = errors.New("password is longer than 72 bytes")
	ErrInvalidEmail          = errors.New("invalid email")

	// ErrFileNotFound and ErrInvalidFileName come straight from the storage layer.
	ErrFileNotFound    = storage.ErrFileNotFound
	ErrInvalidFileName = storage.ErrInvalidName
)
