package wire

import "errors"

var (
	// ErrMalformedSize reports a non-digit, empty, or overflowing size field.
	ErrMalformedSize = errors.New("wire: malformed frame size")

	// ErrMissingTerminator reports a payload not followed by a NUL byte.
	ErrMissingTerminator = errors.New("wire: missing frame terminator")

	// ErrProtocolViolation reports a reply with the wrong tag, the wrong
	// RESULT header, or the wrong pixel length.
	ErrProtocolViolation = errors.New("wire: protocol violation")

	// ErrIOTimeout reports that a per-read deadline elapsed while waiting
	// for a reply.
	ErrIOTimeout = errors.New("wire: i/o timeout")
)
