package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to transport statuses with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrSelfFollow         = errors.New("you cannot follow yourself")
	ErrNotFollowing       = errors.New("you are not following this user")
	ErrNotLiked           = errors.New("you have not liked this post")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
)

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound         = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound      = fmt.Errorf("comment %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrDuplicateEmail    = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrDuplicateUsername = fmt.Errorf("username already taken: %w", ErrConflict)

	ErrMediaNotAllowed = fmt.Errorf("only verified accounts can attach media: %w", ErrForbidden)
	ErrNotAuthor       = fmt.Errorf("you can only modify your own content: %w", ErrForbidden)
	ErrNotRecipient    = fmt.Errorf("notification belongs to another user: %w", ErrForbidden)

	ErrEmptyContent = fmt.Errorf("content must not be empty: %w", ErrInvalidInput)
)
