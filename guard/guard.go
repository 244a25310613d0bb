// Package guard decides which screen graph is reachable for the current auth
// state. It is a pure function; the composition layer applies the decision.
package guard

// ProfileSetupRoute must always be allowed once authenticated, otherwise the
// profile-incomplete redirect would loop onto itself.
const ProfileSetupRoute = "/profile-setup"

type Decision int

const (
	Loading Decision = iota
	RedirectToWelcome
	RedirectToProfileSetup
	AllowChildren
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectToWelcome:
		return "redirect-to-welcome"
	case RedirectToProfileSetup:
		return "redirect-to-profile-setup"
	default:
		return "allow-children"
	}
}

// Decide never redirects while loading: during startup the auth state is
// transiently unknown and a redirect there would bounce a valid session.
func Decide(authenticated, loading, profileCompleted bool, route string) Decision {
	if loading {
		return Loading
	}
	if !authenticated {
		return RedirectToWelcome
	}
	if route == ProfileSetupRoute {
		return AllowChildren
	}
	if !profileCompleted {
		return RedirectToProfileSetup
	}
	return AllowChildren
}
