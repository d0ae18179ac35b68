package auth

import "errors"

// Authentication failures. All are terminal for the request and are
// surfaced to the caller as an unauthorized signal; all except the
// malformed-token cases (where no actor can be identified) produce an
// audit entry before being returned.
var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password, deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a bearer token cannot be parsed
	// or its signature does not validate.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the encoded expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrUnknownActor is returned when the token references a user id
	// that does not exist.
	ErrUnknownActor = errors.New("unknown actor")

	// ErrInactiveActor is returned for deactivated accounts.
	ErrInactiveActor = errors.New("account is inactive")

	// ErrLockedActor is returned for accounts locked after repeated
	// failed attempts.
	ErrLockedActor = errors.New("account is locked")

	// ErrPasswordExpired is returned when the password predates the
	// configured maximum age. Checked only after the password itself
	// verifies, so account state is not leaked to a guesser.
	ErrPasswordExpired = errors.New("password expired")

	// ErrSessionExpired is returned when the idle window has elapsed
	// since the session's last activity.
	ErrSessionExpired = errors.New("session expired")
)
