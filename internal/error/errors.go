package error

import "errors"

// Sentinels for errors.Is matching. The typed constructors below wrap
// the corresponding sentinel, so callers can branch on the category
// without depending on *AppError.
var (
	ErrMessageEmpty = errors.New("message cannot be empty")
	ErrSessionBusy  = errors.New("a message is already being processed")
	ErrUpstream     = errors.New("completion provider unavailable")
	ErrPersistence  = errors.New("failed to persist conversation state")
)
