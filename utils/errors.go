package utils

import (
	"errors"
	"net/http"

	"community-bot/ratelimit"

	"github.com/bwmarrin/discordgo"
)

// ErrorClass groups failures by how they are reported to the member.
type ErrorClass int

const (
	ErrorOther ErrorClass = iota
	ErrorPermission
	ErrorRateLimited
	ErrorNotFound
	ErrorInvalidInput
)

// ErrInvalidInput marks input rejected before any API call.
var ErrInvalidInput = errors.New("invalid input")

// ClassifyError sorts err into one of the reporting classes.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorOther
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidDuration) {
		return ErrorInvalidInput
	}
	if ratelimit.IsRetryExhausted(err) {
		return ErrorRateLimited
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrorPermission
		case http.StatusNotFound:
			return ErrorNotFound
		case http.StatusTooManyRequests:
			return ErrorRateLimited
		}
	}
	return ErrorOther
}

// IsNotFound reports whether Discord answered 404 for err.
func IsNotFound(err error) bool {
	return ClassifyError(err) == ErrorNotFound
}

// UserMessage is the text shown to a member for a failed action.
func UserMessage(err error) string {
	switch ClassifyError(err) {
	case ErrorPermission:
		return "I am missing the permissions needed to do that."
	case ErrorRateLimited:
		return "Discord is busy right now, please try again in a moment."
	case ErrorNotFound:
		return "That no longer exists."
	case ErrorInvalidInput:
		return err.Error()
	default:
		return "Something went wrong, the error has been logged."
	}
}
