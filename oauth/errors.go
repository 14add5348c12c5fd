package oauth

import "errors"

var (
	// ErrEntropySource indicates the system random source is unavailable.
	// The process cannot proceed without it.
	ErrEntropySource = errors.New("entropy source unavailable")

	// ErrStateMismatch indicates a callback whose state parameter does not
	// match the consent stored for the session. The exchange fails closed.
	ErrStateMismatch = errors.New("state mismatch")

	// ErrAuthorizationDenied indicates the provider returned an error
	// parameter on the callback instead of an authorization code.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrTokenExchange indicates the token endpoint call failed. Codes are
	// single-use, so the exchange is never retried.
	ErrTokenExchange = errors.New("token exchange failed")
)
