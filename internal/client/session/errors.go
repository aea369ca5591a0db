package session

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginInProgress is returned by Login while another login is in flight.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrSessionSuperseded is returned when the session an operation started
	// for was cleared or replaced before the operation finished.
	ErrSessionSuperseded = errors.New("session superseded")
	// ErrNotAuthenticated is returned by authenticated operations without a session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when a refresh failed and the session was
	// cleared as a consequence.
	ErrSessionExpired = errors.New("session expired")
)

// AuthErrorKind classifies a failed login.
type AuthErrorKind int

const (
	// KindInvalidCredentials is user-correctable: wrong username or password.
	KindInvalidCredentials AuthErrorKind = iota
	// KindNetworkFailure means the backend could not be reached.
	KindNetworkFailure
	// KindServerError means the backend answered with something unusable.
	KindServerError
	// KindStorageFailure means the session could not be persisted locally.
	KindStorageFailure
)

func (k AuthErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindNetworkFailure:
		return "network failure"
	case KindServerError:
		return "server error"
	case KindStorageFailure:
		return "storage failure"
	default:
		return "unknown"
	}
}

// AuthError is returned by Login. Match it with errors.As and inspect Kind;
// the underlying transport error stays reachable through errors.Is.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("login failed: %s", e.Kind)
	}
	return fmt.Sprintf("login failed: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same login later may succeed.
func (e *AuthError) Transient() bool {
	return e.Kind == KindNetworkFailure || e.Kind == KindServerError
}
