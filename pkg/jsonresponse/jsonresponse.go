// Package jsonresponse enables consistent responses across all handlers.
package jsonresponse

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// jsonError provides type for explicit json encoded error response.
type jsonError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) jsonError {
	return jsonError{Error: err.Error()}
}

// jsonMessage provides the error shape of the interbank wire contract.
type jsonMessage struct {
	Message string `json:"message"`
}

// Message wraps a given err into the interbank error shape.
func Message(err error) jsonMessage {
	return jsonMessage{Message: err.Error()}
}

// Response holds the common response type for session issuing APIs.
type Response struct {
	AccessToken           string    `json:"access_token,omitempty"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
	Data                  any       `json:"data,omitempty"`
	Error                 string    `json:"error,omitempty"`
}

// GetErrorMsg translates a binding validation failure into a human readable
// suffix for the offending field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "email":
		return " must be a valid email address"
	case "alphanum":
		return " must contain only letters and numbers"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "currency":
		return " must be a supported currency"
	}

	return " is invalid"
}
