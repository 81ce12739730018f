package api

import (
	"errors"
	"fmt"
)

// Error codes returned by the Identity and Lobby services in the "error"
// field of a failed response.
const (
	CodeIdentityExists          = "identity_exists"
	CodeIdentityNeedsActivation = "identity_needs_activation"
	CodeInvalidCredentials      = "invalid_credentials"
	CodeInvalidRequest          = "invalid_request"
	CodeInvalidActivationCode   = "invalid_activation_code"
	CodeNoEmailAddress          = "no_email_address"
	CodePopupBlocked            = "popup_blocked_by_browser"
	CodeTryAgain                = "try_again"

	// CodeNoAvatarWithThisName is produced locally when an avatar search
	// returns no targets.
	CodeNoAvatarWithThisName = "noAvatarWithThisName"
)

// ErrorBody is the JSON document the services send with a failed response.
type ErrorBody struct {
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Sign    string `json:"sign,omitempty"`
	Message string `json:"message,omitempty"`
	// At is the end of a cooldown, sent with try_again.
	At string `json:"at,omitempty"`
}

// Error is a non-2xx response.
type Error struct {
	// Message is body.message, then body.error, then a generic status line.
	Message string
	// Status is the HTTP status code.
	Status int
	// Body is nil when the response carried no JSON object.
	Body *ErrorBody
}

func (e *Error) Error() string {
	return e.Message
}

// newError builds the error for a failed response.
func newError(status int, body *ErrorBody) *Error {
	msg := fmt.Sprintf("Request failed with status %d", status)
	if body != nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return &Error{Message: msg, Status: status, Body: body}
}

// NewCodeError builds an *Error carrying code without a server response.
func NewCodeError(code string) *Error {
	return &Error{Message: code, Body: &ErrorBody{Error: code}}
}

// AsError returns the *Error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// BodyOf returns the decoded error body wrapped in err, or nil.
func BodyOf(err error) *ErrorBody {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Body
	}
	return nil
}

// Code returns the service error code wrapped in err, or "".
func Code(err error) string {
	if body := BodyOf(err); body != nil {
		return body.Error
	}
	return ""
}

// IsCode reports whether err carries the given service error code.
func IsCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

// StatusOf returns the HTTP status wrapped in err, or 0 for transport errors.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

// Message picks the text shown to a user for err: the server's message when
// there is one, otherwise fallback.
func Message(err error, fallback string) string {
	if body := BodyOf(err); body != nil && body.Message != "" {
		return body.Message
	}
	return fallback
}
