package store

import (
	"errors"
	"strings"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
)

// AuthErrorClass buckets provider failures for presentation. The provider
// exposes no stable error codes, so this matches message text: best-effort
// UX sugar, not a contract. The only control-flow use of classification is
// the expired-session logout in CheckAuth.
type AuthErrorClass int

const (
	AuthErrorGeneric AuthErrorClass = iota
	AuthErrorInvalidCredentials
	AuthErrorNotVerified
	AuthErrorRateLimited
)

func (c AuthErrorClass) String() string {
	switch c {
	case AuthErrorInvalidCredentials:
		return "invalid-credentials"
	case AuthErrorNotVerified:
		return "not-verified"
	case AuthErrorRateLimited:
		return "rate-limited"
	default:
		return "generic"
	}
}

var (
	invalidCredentialPhrases = []string{
		"invalid login credentials",
		"invalid email or password",
		"incorrect password",
		"invalid credentials",
	}
	notVerifiedPhrases = []string{
		"email not confirmed",
		"not verified",
		"verify your email",
		"confirm your email",
	}
	rateLimitedPhrases = []string{
		"rate limit",
		"too many requests",
		"try again later",
	}
)

func ClassifyAuthError(err error) AuthErrorClass {
	if err == nil {
		return AuthErrorGeneric
	}
	msg := err.Error()
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
		if apiErr.StatusCode == 429 {
			return AuthErrorRateLimited
		}
	}
	msg = strings.ToLower(msg)

	for _, p := range invalidCredentialPhrases {
		if strings.Contains(msg, p) {
			return AuthErrorInvalidCredentials
		}
	}
	for _, p := range notVerifiedPhrases {
		if strings.Contains(msg, p) {
			return AuthErrorNotVerified
		}
	}
	for _, p := range rateLimitedPhrases {
		if strings.Contains(msg, p) {
			return AuthErrorRateLimited
		}
	}
	return AuthErrorGeneric
}
