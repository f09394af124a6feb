package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicatePhone     = errors.New("models: duplicate phone number")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInvalidPassword    = errors.New("models: invalid password")
)

// Named outcomes of the request/offer flow. Call sites branch on these
// to map them to specific user-facing responses.
var (
	ErrRequestNotFound       = errors.New("request not found")
	ErrRequestClosed         = errors.New("request is not open")
	ErrCannotOfferOwnRequest = errors.New("cannot offer on own request")
	ErrAlreadyOffered        = errors.New("already offered on this request")
	ErrNotRequestAuthor      = errors.New("caller is not the request author")
)

var (
	ErrTaskNotFound          = errors.New("task not found")
	ErrTaskNotOpen           = errors.New("task is not open")
	ErrNotTaskOwner          = errors.New("caller is not the task owner")
	ErrAlreadyResponded      = errors.New("already responded to this task")
	ErrCannotRespondOwnTask  = errors.New("cannot respond to own task")
	ErrResponseNotFound      = errors.New("task response not found")
	ErrChatNotFound          = errors.New("chat not found")
	ErrReviewNotFound        = errors.New("review not found")
	ErrDuplicateReview       = errors.New("review already exists for this task")
	ErrTaskNotCompleted      = errors.New("task is not completed")
	ErrNotTaskParticipant    = errors.New("caller did not participate in this task")
	ErrInvalidStatusChange   = errors.New("invalid status transition")
	ErrOfferNotFound         = errors.New("offer not found")
	ErrInvalidVerification   = errors.New("invalid verification code")
	ErrSessionNotFound       = errors.New("session not found")
	ErrGeocodeNoResult       = errors.New("geocoder returned no result")
	ErrPushTokenNotFound     = errors.New("push token not found")
	ErrContactNotAccessible  = errors.New("contact is not visible to caller")
)

// ValidationError carries the first violated constraint of a write request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
