package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name             string
		authenticated    bool
		loading          bool
		profileCompleted bool
		route            string
		want             Decision
	}{
		{"loading wins over everything", false, true, false, "/home", Loading},
		{"loading even when authenticated", true, true, true, "/home", Loading},
		{"unauthenticated goes to welcome", false, false, false, "/home", RedirectToWelcome},
		{"unauthenticated on profile setup still goes to welcome", false, false, false, ProfileSetupRoute, RedirectToWelcome},
		{"incomplete profile confined to setup", true, false, false, "/home", RedirectToProfileSetup},
		{"profile setup route never redirect-loops", true, false, false, ProfileSetupRoute, AllowChildren},
		{"completed profile allowed through", true, false, true, "/home", AllowChildren},
		{"completed profile may revisit setup", true, false, true, ProfileSetupRoute, AllowChildren},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.authenticated, tc.loading, tc.profileCompleted, tc.route)
			assert.Equal(t, tc.want, got)
		})
	}
}
