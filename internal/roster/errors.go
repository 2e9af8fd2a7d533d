package roster

import "errors"

var (
	// ErrBindFailed reports that the roster listener could not bind its
	// address/port.
	ErrBindFailed = errors.New("roster: bind failed")

	// ErrAcceptFailed reports that the OS refused an accept while the
	// roster was still being assembled.
	ErrAcceptFailed = errors.New("roster: accept failed")

	// ErrHandshakeFailed reports a LOGIN handshake that was missing its
	// argument, carried the wrong tag, or was otherwise malformed.
	ErrHandshakeFailed = errors.New("roster: handshake failed")
)
