package httpserver

import "errors"

var (
	// ErrNoHandler is returned when no HTTP handler is available for the server.
	ErrNoHandler = errors.New("no HTTP handler available")
	// ErrInvalidPort is returned for a port outside 0-65535.
	ErrInvalidPort = errors.New("invalid port number")
	// ErrServerNotStarted is returned by Addr before Start.
	ErrServerNotStarted = errors.New("server not started")
)
