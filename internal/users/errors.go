package users

import "errors"

var (
	// ErrMissingEmail: identity claims carried no email. Unrecoverable; the
	// login attempt must be rejected.
	ErrMissingEmail = errors.New("identity claims missing email")

	// ErrInvalidProviderToken: the external token verification produced no
	// usable claims.
	ErrInvalidProviderToken = errors.New("invalid provider token")

	// ErrDuplicate is returned by repositories when an insert violates a
	// unique index (email or username).
	ErrDuplicate = errors.New("user already exists")

	// ErrInvalidCredentials covers unknown email, wrong password and
	// attempts to password-login to a provider-only account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
