package client

import (
	"fmt"
	"net/http"

	"github.com/oklog/ulid/v2"
)

const (
	bearerPrefix = "Bearer "
)

// RequestTransform mutates an outbound request before it is sent.
// Transforms must not block and must not fail.
type RequestTransform func(req *http.Request)

// Chain is an ordered list of transforms applied before every dispatch
type Chain []RequestTransform

// Apply runs every transform in order
func (c Chain) Apply(req *http.Request) {
	for _, transform := range c {
		transform(req)
	}
}

// TokenSource yields the current credential, if any
type TokenSource interface {
	Token() (string, bool)
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func() (string, bool)

func (f TokenSourceFunc) Token() (string, bool) { return f() }

// Authorizer attaches the current bearer token to each request. The
// token is read at dispatch time; with no token the request goes out
// unauthenticated and the server decides.
func Authorizer(src TokenSource) RequestTransform {
	return func(req *http.Request) {
		if src == nil {
			return
		}
		token, ok := src.Token()
		if !ok || token == "" {
			req.Header.Del("Authorization")
			return
		}
		req.Header.Set("Authorization", bearerPrefix+token)
	}
}

// RequestID stamps each request with a fresh ULID
func RequestID() RequestTransform {
	return func(req *http.Request) {
		if req.Header.Get("X-Request-ID") != "" {
			return
		}
		req.Header.Set("X-Request-ID", ulid.Make().String())
	}
}

// UserAgent identifies the CLI build to the server
func UserAgent(version string) RequestTransform {
	ua := fmt.Sprintf("novelhub-cli/%s", version)
	return func(req *http.Request) {
		req.Header.Set("User-Agent", ua)
	}
}
