package messenger

import "errors"

var (
	// ErrInvalidMessage rejects a message with neither content nor attachment.
	ErrInvalidMessage = errors.New("messenger: message needs content or an attachment")

	// ErrNotFound is returned when an edit or delete target does not exist.
	ErrNotFound = errors.New("messenger: message not found")

	// ErrUnauthenticated is returned at the boundary when no caller identity
	// can be resolved.
	ErrUnauthenticated = errors.New("messenger: no authenticated user")

	// ErrAttachmentRejected is returned by the upload boundary when an
	// attachment violates the size or type policy.
	ErrAttachmentRejected = errors.New("messenger: attachment rejected")

	// ErrSameUser rejects a conversation between a user and themselves.
	ErrSameUser = errors.New("messenger: conversation needs two distinct users")
)
