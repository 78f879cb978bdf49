package types

import "errors"

// Error taxonomy shared across the decode pipeline, the stores and the
// watcher. Callers classify with errors.Is and wrap with context.
var (
	// ErrConfiguration is returned when a required setting (payer key,
	// RPC endpoint, DSN) is missing at startup.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDecode marks malformed transaction or account bytes, or an
	// instruction account index pointing outside the key list.
	ErrDecode = errors.New("decode failed")

	// ErrNotFound means the transaction or account is not (yet) on
	// chain. Recoverable: callers skip and retry on a later signature.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks a required address field missing before a
	// trade is attempted. Address fields are never defaulted.
	ErrValidation = errors.New("validation failed")

	// ErrTrade marks a failed swap submission.
	ErrTrade = errors.New("trade failed")

	// ErrStorage marks a persistence failure.
	ErrStorage = errors.New("storage failed")
)
