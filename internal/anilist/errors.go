package anilist

import (
	"errors"
	"fmt"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

// Sentinel errors for AniList API operations.
var (
	ErrNotFound         = errors.New("anilist: not found")
	ErrRateLimited      = errors.New("anilist: rate limited by server")
	ErrBadRequest       = errors.New("anilist: bad request")
	ErrServer           = errors.New("anilist: server error")
	ErrGraphQL          = errors.New("anilist: graphql error")
	ErrMalformed        = errors.New("anilist: malformed response")
	ErrInvalidMediaType = errors.New("anilist: invalid media type")
)

// unknownAPIError is reported when AniList flags an error without a message.
const unknownAPIError = "Unknown error from AniList API"

// Error wraps an underlying error with operation context.
type Error struct {
	Op        string // Operation: "fetchCompleted"
	Username  string
	MediaType challenge.MediaType // If applicable
	Message   string              // First message reported by AniList, if any
	Err       error
}

func (e *Error) Error() string {
	detail := e.Err.Error()
	if e.Message != "" {
		detail = fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	if e.MediaType != "" {
		return fmt.Sprintf("anilist %s [%s/%s]: %s", e.Op, e.Username, e.MediaType, detail)
	}
	return fmt.Sprintf("anilist %s [%s]: %s", e.Op, e.Username, detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reason returns the human-readable cause of err: the message AniList sent
// when there is one, otherwise the error text itself.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// responseError pairs a sentinel with the message found in a response body.
type responseError struct {
	err     error
	message string
}

func (e *responseError) Error() string {
	if e.message == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.message
}

func (e *responseError) Unwrap() error {
	return e.err
}

// wrapError creates an Error with context, lifting any response message.
func wrapError(op, username string, mediaType challenge.MediaType, err error) error {
	wrapped := &Error{
		Op:        op,
		Username:  username,
		MediaType: mediaType,
		Err:       err,
	}
	var respErr *responseError
	if errors.As(err, &respErr) {
		wrapped.Message = respErr.message
		wrapped.Err = respErr.err
	}
	return wrapped
}
