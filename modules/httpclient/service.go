package httpclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ClientService defines the interface for the HTTP client service.
// Every client it hands out sends requests through the configuration
// interceptor, so relative URLs such as "/api/users" are resolved against
// the loaded API base URL.
type ClientService interface {
	// Client returns the configured http.Client instance.
	Client() *http.Client

	// RequestModifier returns the modifier applied to every outgoing request.
	RequestModifier() RequestModifierFunc

	// WithTimeout returns a client sharing the intercepted transport but
	// using the given timeout. A non-positive timeout returns the default
	// client.
	WithTimeout(timeout time.Duration) *http.Client
}

// RequestModifierFunc is a function type that can be used to modify an HTTP request
// before it is sent by the client.
type RequestModifierFunc func(*http.Request) *http.Request

// requestIDModifier sets header to a fresh UUID unless the caller set it.
func requestIDModifier(header string) RequestModifierFunc {
	return func(req *http.Request) *http.Request {
		if header != "" && req.Header.Get(header) == "" {
			req.Header.Set(header, uuid.NewString())
		}
		return req
	}
}
