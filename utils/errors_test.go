package utils

import (
	"fmt"
	"net/http"
	"testing"

	"community-bot/ratelimit"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func TestClassifyError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorOther},
		{"forbidden", fmt.Errorf("ban: %w", restError(http.StatusForbidden)), ErrorPermission},
		{"unauthorized", restError(http.StatusUnauthorized), ErrorPermission},
		{"not found", restError(http.StatusNotFound), ErrorNotFound},
		{"retry exhausted", fmt.Errorf("post: %w", &ratelimit.RetryError{Attempts: 6, LastStatus: 429}), ErrorRateLimited},
		{"bad duration", fmt.Errorf("mute: %w", ErrInvalidDuration), ErrorInvalidInput},
		{"server error", restError(http.StatusInternalServerError), ErrorOther},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(restError(http.StatusForbidden)), "missing the permissions")
	assert.Contains(t, UserMessage(&ratelimit.RetryError{}), "try again")
	assert.Equal(t, "invalid input: date", UserMessage(fmt.Errorf("%w: date", ErrInvalidInput)))
}
