package service

import "errors"

// Domain errors surfaced by ChatService. Handlers map them to HTTP statuses;
// the error text doubles as the response body's error message.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrContactNotFound      = errors.New("no account exists for that contact")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrDuplicateEmail       = errors.New("this email is already registered")
	ErrDuplicateChat        = errors.New("a conversation with this contact already exists")
	ErrBadCredentials       = errors.New("incorrect email or password")
	ErrSelfContact          = errors.New("you cannot add yourself as a contact")
)
