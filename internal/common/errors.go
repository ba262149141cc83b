// Package common defines sentinel errors shared by the bot's services,
// repositories and chat adapter. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Command validation.
	ErrorValidation = errors.New("validation error")

	// Delivery to a party was refused by the chat platform (DMs disabled).
	ErrorDeliveryRefused = errors.New("delivery refused")

	// A pending reply was not answered in time.
	ErrReplyTimeout = errors.New("reply timed out")

	// External services.
	ErrorSinkDisabled    = errors.New("log sink disabled")
	ErrorArchiveDisabled = errors.New("document archive disabled")
	ErrorSealDisabled    = errors.New("document seal disabled")

	ErrInvalidToken = errors.New("invalid token")

	ErrorInternal = errors.New("internal error")
)

// ValidationError carries a message meant for the invoking player. It
// matches ErrorValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}

// NewValidationError returns a *ValidationError with the given player-facing text.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// UserMessage extracts the player-facing text of a validation error, or
// returns fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return fallback
}
