package models

// Status is the lifecycle state of the session.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Tokens is the credential pair issued by the backend.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Snapshot is an immutable view of the session at one point in time.
// Identity is nil unless Status is StatusAuthenticated.
type Snapshot struct {
	Status   Status
	Identity *Identity
	// SessionID correlates log lines of one login; it is never sent anywhere.
	SessionID string
}

// Authenticated reports Status == StatusAuthenticated.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// PersistedSession is what survives a restart: identity and both tokens.
type PersistedSession struct {
	Identity     *Identity
	AccessToken  string
	RefreshToken string
}
