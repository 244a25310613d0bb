package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMessage(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"phrase table: duplicate key", `pq: duplicate key value violates unique constraint "idx_users_username"`, "That value is already in use."},
		{"phrase table: username taken", "username already taken", "That value is already in use."},
		{"phrase table: not found", "record not found", "The requested record was not found."},
		{"phrase table: timeout", "context deadline exceeded", "The request timed out. Please try again."},
		{"phrase table: expired session", "invalid token", "Your session has expired. Please sign in again."},
		{"blocklist: sql fragment", "SELECT id FROM users WHERE email = $1 failed", GenericErrorMessage},
		{"blocklist: stack trace", "goroutine 42 [running]: main.handle()", GenericErrorMessage},
		{"blocklist: source location", "handler.go:118: nil pointer", GenericErrorMessage},
		{"blocklist: internal path", "open /srv/app/secrets/config.yaml: permission denied", GenericErrorMessage},
		{"clean message passes through", "Meal name must be one of Breakfast, Lunch, Dinner, Snack", "Meal name must be one of Breakfast, Lunch, Dinner, Snack"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeMessage(tc.in))
		})
	}
}
