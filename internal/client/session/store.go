package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// AuthService is the part of the remote auth service the Store talks to.
// client.Client satisfies it.
type AuthService interface {
	ExchangeCredentials(ctx context.Context, username, password string) (models.Tokens, error)
	FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	NotifyLogout(ctx context.Context, accessToken string) error
}

// Storage persists the session between runs. storage.SessionStorage
// satisfies it.
type Storage interface {
	// Load returns (nil, nil) when no complete session is stored.
	Load(ctx context.Context) (*models.PersistedSession, error)
	Save(ctx context.Context, s models.PersistedSession) error
	SaveAccessToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l.With("module", "session") }
}

// WithExpirySkew enables proactive refresh: an access token whose JWT exp
// falls within skew of now is refreshed before it is used.
func WithExpirySkew(skew time.Duration) Option {
	return func(s *Store) { s.skew = skew }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	auth    AuthService
	storage Storage
	log     logging.Logger
	skew    time.Duration
	now     func() time.Time

	refreshGroup singleflight.Group

	mu        sync.Mutex
	status    models.Status
	identity  *models.Identity
	tokens    models.Tokens
	sessionID string
	epoch     uint64

	// deliverMu orders deliveries; notifyMu guards the subscriber set only.
	deliverMu   sync.Mutex
	notifyMu    sync.Mutex
	subscribers map[int]func(models.Snapshot)
	nextSub     int
}

// New returns an unauthenticated Store. Call Hydrate to restore a
// persisted session.
func New(auth AuthService, storage Storage, opts ...Option) *Store {
	s := &Store{
		auth:        auth,
		storage:     storage,
		log:         logging.Nop{},
		now:         time.Now,
		subscribers: map[int]func(models.Snapshot){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Hydrate restores the persisted session. Incomplete or unreadable data is
// discarded and the store stays unauthenticated.
func (s *Store) Hydrate(ctx context.Context) models.Snapshot {
	s.mu.Lock()
	p, err := s.storage.Load(ctx)
	switch {
	case err != nil:
		s.log.Warn(ctx, "discarding persisted session", "error", err)
		s.resetLocked(ctx)
	case p == nil:
		// Partial leftovers are removed so the next Load is clean.
		if err := s.storage.Clear(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear session storage", "error", err)
		}
	default:
		s.status = models.StatusAuthenticated
		s.identity = p.Identity
		s.tokens = models.Tokens{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
		s.sessionID = uuid.NewString()
		s.log.Info(ctx, "session restored", "session_id", s.sessionID, "username", p.Identity.Username)
	}
	s.mu.Unlock()

	s.publish()
	return s.Snapshot()
}

// Login exchanges credentials for a token pair, fetches the identity with
// the new access token and persists both. Either all of it succeeds or the
// store ends unauthenticated with nothing persisted.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	s.mu.Lock()
	if s.status == models.StatusAuthenticating {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	var replaced string
	if s.status == models.StatusAuthenticated {
		// The new login replaces the current session wholesale.
		replaced = s.tokens.AccessToken
		s.resetLocked(ctx)
	}
	s.status = models.StatusAuthenticating
	s.epoch++
	epoch := s.epoch
	sessionID := uuid.NewString()
	s.mu.Unlock()
	s.publish()

	if replaced != "" {
		if err := s.auth.NotifyLogout(ctx, replaced); err != nil {
			s.log.Warn(ctx, "logout notification for replaced session failed", "error", err)
		}
	}

	log := s.log.With("session_id", sessionID)
	log.Debug(ctx, "login started", "username", username)

	tokens, err := s.auth.ExchangeCredentials(ctx, username, password)
	if err != nil {
		return nil, s.failLogin(ctx, log, epoch, classifyExchange(err))
	}

	identity, err := s.auth.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		return nil, s.failLogin(ctx, log, epoch, classifyIdentity(err))
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		log.Info(ctx, "login result discarded, session changed meanwhile")
		return nil, ErrSessionSuperseded
	}

	err = s.storage.Save(ctx, models.PersistedSession{
		Identity:     identity,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	if err != nil {
		s.resetLocked(ctx)
		s.mu.Unlock()
		s.publish()
		log.Error(ctx, "failed to persist session", "error", err)
		return nil, &AuthError{Kind: KindStorageFailure, Err: err}
	}

	s.status = models.StatusAuthenticated
	s.identity = identity
	s.tokens = tokens
	s.sessionID = sessionID
	s.mu.Unlock()
	s.publish()

	log.Info(ctx, "login succeeded", "username", identity.Username, "roles", len(identity.Roles), "superuser", identity.IsSuperuser)
	return identity.Clone(), nil
}

func (s *Store) failLogin(ctx context.Context, log logging.Logger, epoch uint64, authErr *AuthError) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionSuperseded
	}
	s.status = models.StatusUnauthenticated
	s.mu.Unlock()
	s.publish()

	log.Warn(ctx, "login failed", "kind", authErr.Kind.String(), "error", authErr.Err)
	return authErr
}

func classifyExchange(err error) *AuthError {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return &AuthError{Kind: KindInvalidCredentials, Err: err}
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &AuthError{Kind: KindNetworkFailure, Err: err}
	default:
		return &AuthError{Kind: KindServerError, Err: err}
	}
}

func classifyIdentity(err error) *AuthError {
	switch {
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &AuthError{Kind: KindNetworkFailure, Err: err}
	default:
		// Includes a just-issued access token being rejected.
		return &AuthError{Kind: KindServerError, Err: err}
	}
}

// Logout notifies the backend, best-effort, and then clears the session in
// memory and on disk. It always succeeds locally.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.tokens.AccessToken
	sessionID := s.sessionID
	s.mu.Unlock()

	if token != "" {
		if err := s.auth.NotifyLogout(ctx, token); err != nil {
			s.log.Warn(ctx, "logout notification failed", "session_id", sessionID, "error", err)
		}
	}

	s.mu.Lock()
	s.resetLocked(ctx)
	s.mu.Unlock()
	s.publish()

	s.log.Info(ctx, "logged out", "session_id", sessionID)
}

// resetLocked drops the session and its persisted copy. Caller holds s.mu.
func (s *Store) resetLocked(ctx context.Context) {
	s.status = models.StatusUnauthenticated
	s.identity = nil
	s.tokens = models.Tokens{}
	s.sessionID = ""
	s.epoch++

	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear session storage", "error", err)
	}
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == models.StatusAuthenticated
}

// Identity returns a copy of the current identity, nil without a session.
func (s *Store) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.StatusAuthenticated {
		return nil
	}
	return s.identity.Clone()
}

func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{Status: s.status, SessionID: s.sessionID}
	if s.status == models.StatusAuthenticated {
		snap.Identity = s.identity.Clone()
	}
	return snap
}

// Subscribe registers fn to be called with the current snapshot after every
// session change. The returned func unsubscribes. fn must not block.
func (s *Store) Subscribe(fn func(models.Snapshot)) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		delete(s.subscribers, id)
	}
}

// publish delivers the snapshot current at delivery time, so subscribers
// always end on the latest state even when changes race. Callbacks run
// without notifyMu held and may subscribe or unsubscribe.
func (s *Store) publish() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.notifyMu.Lock()
	fns := make([]func(models.Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.notifyMu.Unlock()
	if len(fns) == 0 {
		return
	}

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
