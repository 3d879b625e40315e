package browser

import "errors"

// Sentinel errors for session lifecycle failures. Callers branch on these
// with errors.Is; the wrapped message carries the underlying cause.
var (
	// ErrSessionCreation indicates the automation engine or browser
	// could not be started. Fatal to the request, no retry.
	ErrSessionCreation = errors.New("session creation failed")

	// ErrAuthentication indicates the login flow failed or the target
	// rejected the credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionNotFound indicates an operation referenced an unknown
	// session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrContextCorruption indicates a browser context became unusable
	// and could not be recreated.
	ErrContextCorruption = errors.New("browser context corrupted")
)
