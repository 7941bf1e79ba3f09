package chat

import "errors"

// Sentinel errors returned by the chat services. Handlers map these to
// HTTP statuses; anything else is treated as an internal error.
var (
	ErrSelfSend             = errors.New("cannot send a message to yourself")
	ErrSelfBlock            = errors.New("cannot block yourself")
	ErrEmptyContent         = errors.New("message content cannot be empty")
	ErrBlocked              = errors.New("messaging between these users is blocked")
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
)
