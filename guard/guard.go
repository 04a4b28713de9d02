// Package guard decides whether a protected view may render for the current
// session state. The decision is deliberately three-way: while the session
// is still initializing the guard defers instead of redirecting, so a page
// reload never flash-redirects an already-authenticated user before the
// persisted session has been read.
package guard

import (
	"strings"

	"github.com/whwar9739/WhiskeyTracker/session"
)

type Decision uint8

const (
	// DecisionDefer means the session is undetermined; render a neutral
	// placeholder and re-evaluate on the next transition.
	DecisionDefer Decision = iota
	// DecisionAllow renders the protected view.
	DecisionAllow
	// DecisionRedirect sends the user to the entry route.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionDefer:
		return "defer"
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Guard is a pure function of session snapshots.
type Guard struct {
	EntryRoute string
}

func New(entryRoute string) *Guard {
	if strings.TrimSpace(entryRoute) == "" {
		entryRoute = "/"
	}
	return &Guard{EntryRoute: entryRoute}
}

// Evaluate maps a snapshot to a decision and, for redirects, the target
// route. Cached user or token values are ignored unless the state itself is
// Authenticated.
func (g *Guard) Evaluate(snapshot session.Snapshot) (Decision, string) {
	switch snapshot.State {
	case session.StateAuthenticated:
		return DecisionAllow, ""
	case session.StateUnauthenticated:
		entry := "/"
		if g != nil && strings.TrimSpace(g.EntryRoute) != "" {
			entry = g.EntryRoute
		}
		return DecisionRedirect, entry
	default:
		return DecisionDefer, ""
	}
}
