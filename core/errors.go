package core

import "errors"

var (
	// ErrAttemptInFlight is returned when a transfer is triggered while
	// another one has not reached a terminal state yet.
	ErrAttemptInFlight = errors.New("another transfer attempt is in flight")

	ErrBuild     = errors.New("cannot build transaction")
	ErrSign      = errors.New("cannot sign transaction")
	ErrBroadcast = errors.New("cannot broadcast transaction")
	// ErrLookup means the node could not be asked about the transaction.
	ErrLookup = errors.New("cannot look up transaction")
	// ErrNotFound means the node answered but does not know the transaction.
	// The nonce may or may not have been consumed.
	ErrNotFound = errors.New("transaction not found after broadcast")
	// ErrNonceMismatch means the node reported a different nonce than the
	// one the transaction was built with.
	ErrNonceMismatch = errors.New("mined nonce differs from requested nonce")
)
