package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive indicates a deactivated account attempting to log in.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrUnauthorized indicates a missing, malformed or expired bearer token.
	ErrUnauthorized = errors.New("invalid token")
	// ErrForbidden indicates a valid token without the required role.
	ErrForbidden = errors.New("admin access required")
	// ErrDuplicate indicates a unique-key collision.
	ErrDuplicate = errors.New("already exists")
	// ErrUnsupportedType indicates an upload outside the allow-lists.
	ErrUnsupportedType = errors.New("file type not allowed")
	// ErrPayloadTooLarge indicates an upload exceeding the size ceiling.
	ErrPayloadTooLarge = errors.New("file size exceeds limit")
	// ErrTooManyAttempts indicates the login throttle tripped for an email.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)
