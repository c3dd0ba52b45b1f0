package common

import "errors"

var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrNotParticipant        = errors.New("user is not a participant of this conversation")
	ErrInvalidConversation   = errors.New("invalid conversation id")
	ErrInvalidUser           = errors.New("invalid user id")
	ErrEmptyBody             = errors.New("message body cannot be empty")
	ErrBodyTooLong           = errors.New("message body too long")
	ErrNotFound              = errors.New("not found")
	ErrUnsupportedAttachment = errors.New("only images and PDF files are allowed")
	ErrUnknownEvent          = errors.New("unknown event")
)
