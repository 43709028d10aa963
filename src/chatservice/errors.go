package chatservice

import "errors"

var (
	// ErrEmptyMessage is returned when a chat message has no content after trimming.
	ErrEmptyMessage = errors.New("message content is empty")

	// ErrModelUnavailable is returned when the model could not be reached after retries.
	ErrModelUnavailable = errors.New("model unavailable")
)
