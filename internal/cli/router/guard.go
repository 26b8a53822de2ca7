package router

import "fmt"

// Outcome is the result of a guard check
type Outcome int

const (
	Allow Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is what a transition resolves to. Target is set for redirects.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Allowed is the decision to proceed
func Allowed() Decision {
	return Decision{Outcome: Allow}
}

// RedirectTo is the decision to go to target instead
func RedirectTo(target string) Decision {
	return Decision{Outcome: Redirect, Target: target}
}

// CredentialChecker reports whether a credential is present
type CredentialChecker interface {
	HasCredential() bool
}

// Guard sends transitions into protected routes to the login page
// when no credential is present. It checks presence only: an expired
// token still passes, and the server rejects it on the next request.
type Guard struct {
	creds     CredentialChecker
	loginPath string
}

// NewGuard returns a guard redirecting to loginPath
func NewGuard(creds CredentialChecker, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = LoginPath
	}
	return &Guard{creds: creds, loginPath: loginPath}
}

// Check decides a transition into route
func (g *Guard) Check(route Route) Decision {
	if route.RequiresAuth && (g.creds == nil || !g.creds.HasCredential()) {
		return RedirectTo(g.loginPath)
	}
	return Allowed()
}

// Hook adapts the guard to a router pre-transition hook
func (g *Guard) Hook() Hook {
	return func(to, from Location) Decision {
		return g.Check(to.Route)
	}
}
