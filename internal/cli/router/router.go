package router

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hook runs before every transition. Returning a redirect stops the
// remaining hooks.
type Hook func(to, from Location) Decision

// Transition records one navigation request and how it was resolved
type Transition struct {
	From     Location
	To       Location
	Decision Decision
	// Final is where navigation ended up
	Final Location
}

// maxRedirects bounds redirect chains between hooks
const maxRedirects = 5

// Router resolves paths and runs hooks before each transition
type Router struct {
	mu      sync.Mutex
	table   *Table
	hooks   []Hook
	current Location
	log     zerolog.Logger
}

// New creates a router positioned at "/"
func New(table *Table, log zerolog.Logger) *Router {
	return &Router{
		table:   table,
		current: table.Resolve("/"),
		log:     log,
	}
}

// BeforeEach registers a hook. Hooks run in registration order.
func (r *Router) BeforeEach(hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Current returns the location of the last completed transition
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Table returns the router's route table
func (r *Router) Table() *Table {
	return r.table
}

// Navigate requests a transition to path. Every call resolves to
// exactly one decision; on a redirect the router moves to the
// redirect target instead.
func (r *Router) Navigate(path string) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.current
	to := r.table.Resolve(path)
	decision := r.runHooks(to, from)

	final := to
	if decision.Outcome == Redirect {
		final = r.table.Resolve(decision.Target)
		// The redirect target goes through the hooks too
		for i := 0; i < maxRedirects; i++ {
			next := r.runHooks(final, from)
			if next.Outcome != Redirect || next.Target == final.Path {
				break
			}
			final = r.table.Resolve(next.Target)
		}
		r.log.Debug().Str("to", to.Path).Str("redirect", final.Path).Msg("Navigation redirected")
	}

	r.current = final
	return Transition{From: from, To: to, Decision: decision, Final: final}
}

func (r *Router) runHooks(to, from Location) Decision {
	for _, hook := range r.hooks {
		if d := hook(to, from); d.Outcome == Redirect {
			return d
		}
	}
	return Allowed()
}
