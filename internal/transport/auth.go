package transport

import (
	"net/http"

	"github.com/agentstation/flowtag/pkg/constants"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, apiKey string)
}

// NoAuth leaves requests unauthenticated.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// HeaderAuth sends the key verbatim in a named header.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, apiKey string) {
	req.Header.Set(a.Header, apiKey)
}

// N8NAuth returns the header authenticator used by the n8n public API.
func N8NAuth() Authenticator {
	return &HeaderAuth{Header: constants.APIKeyHeader}
}
