package entity

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidTaskData  = errors.New("invalid task data")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidUserData    = errors.New("invalid user data")

	// Ошибки проверки токена: expired -> 401, invalid -> 403
	ErrTokenMissing = errors.New("authentication token required")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid or malformed token")
)
