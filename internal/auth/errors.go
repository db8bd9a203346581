package auth

import "errors"

var (
	// ErrUnauthenticated is the single externally observable error for every
	// token validation failure. Callers must not be able to distinguish a
	// missing header from a bad signature, wrong issuer, or expired token.
	ErrUnauthenticated = errors.New("auth: not authorized")

	// ErrInvalidCredential covers both username-not-found and wrong-password
	// login failures, and malformed stored hashes during verification.
	ErrInvalidCredential = errors.New("auth: invalid credential")

	// ErrUsernameTaken is returned by registration on a username conflict.
	ErrUsernameTaken = errors.New("auth: username already taken")

	ErrMissingSigningKey  = errors.New("auth: missing token signing key")
	ErrMissingPepper      = errors.New("auth: missing password pepper")
	ErrCredentialNotFound = errors.New("auth: credential not found")
)

// LoginFailedMessage is the uniform user-facing message for any failed login,
// regardless of whether the username exists.
const LoginFailedMessage = "incorrect username or password"
