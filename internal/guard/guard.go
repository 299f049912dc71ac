// Package guard decides which destination a navigation may reach based on
// session state. RouteFor is a pure function with no I/O; callers must
// re-evaluate it on every navigation and on every session transition, never
// cache its result.
package guard

import "strings"

// Well-known destinations.
const (
	LoginPath        = "/login"
	RegistrationPath = "/registration"
	ChatsPath        = "/chats"
	ProfilePath      = "/profile"
)

// Outcome classifies a routing decision.
type Outcome int

const (
	// Allow renders the requested destination.
	Allow Outcome = iota
	// Redirect sends the navigation to Decision.Target instead.
	Redirect
	// NotFound means the path matches no known route.
	NotFound
)

// Decision is the result of a routing evaluation.
type Decision struct {
	Outcome Outcome
	// Target is the redirect destination when Outcome is Redirect.
	Target string
}

// RouteFor resolves a requested path against the session state.
//
//   - Logged-out users asking for an authenticated-only destination are
//     redirected to the login destination.
//   - Logged-in users asking for login or registration are redirected to the
//     default authenticated destination (the chat list).
//   - Known destinations otherwise pass through; unknown paths are NotFound.
func RouteFor(isLoggedIn bool, path string) Decision {
	switch {
	case isPublicOnly(path):
		if isLoggedIn {
			return Decision{Outcome: Redirect, Target: ChatsPath}
		}
		return Decision{Outcome: Allow}
	case isPrivate(path):
		if !isLoggedIn {
			return Decision{Outcome: Redirect, Target: LoginPath}
		}
		return Decision{Outcome: Allow}
	default:
		return Decision{Outcome: NotFound}
	}
}

// isPublicOnly reports whether path is reachable only without a session.
func isPublicOnly(path string) bool {
	return path == LoginPath || path == RegistrationPath
}

// isPrivate reports whether path is a known authenticated destination:
// the root, the chat list, a single chat, or the profile screen.
func isPrivate(path string) bool {
	switch path {
	case "/", ChatsPath, ProfilePath:
		return true
	}
	if rest, ok := strings.CutPrefix(path, ChatsPath+"/"); ok {
		return rest != "" && !strings.Contains(rest, "/")
	}
	return false
}
