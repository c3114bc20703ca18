package homespace

import "errors"

// Error values returned by the stores and services. Handlers map these to
// HTTP outcomes; registration errors double as user-facing messages.
var (
	// ErrNotFound indicates a referenced username or filename does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the access policy denied the request. It carries
	// no detail about the item's owner or visibility.
	ErrForbidden = errors.New("forbidden")

	// ErrNotOwned indicates an attempt to use an image outside the caller's
	// own collection, e.g. as a page background.
	ErrNotOwned = errors.New("image not owned by user")

	// ErrInvalidFile indicates a missing filename or a disallowed extension.
	ErrInvalidFile = errors.New("invalid file")

	ErrEmptyField       = errors.New("all fields are required")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("password must be at least 3 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUsernameTaken    = errors.New("username is already registered")
	ErrUsernamePending  = errors.New("username is already awaiting approval")

	// ErrSelfDemotion indicates an admin tried to remove their own admin role.
	ErrSelfDemotion = errors.New("admins cannot demote themselves")
)
