package client

import "errors"

var (
	// ErrInvalidCredentials: the backend rejected username/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized: the access token was rejected on an authenticated call.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRefreshToken: the refresh token was rejected or has expired.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUnavailable: the backend could not be reached.
	ErrUnavailable = errors.New("server unavailable")
	// ErrServer: the backend answered with an unexpected failure.
	ErrServer = errors.New("server error")
	// ErrMalformedResponse: the backend answered with a payload we cannot use.
	ErrMalformedResponse = errors.New("malformed response")
)
