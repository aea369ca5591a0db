package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
)

type memStorage struct {
	mu        sync.Mutex
	session   *models.PersistedSession
	loadErr   error
	saveErr   error
	saveCalls int
}

func (m *memStorage) Load(ctx context.Context) (*models.PersistedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.session == nil {
		return nil, nil
	}
	c := *m.session
	c.Identity = m.session.Identity.Clone()
	return &c, nil
}

func (m *memStorage) Save(ctx context.Context, s models.PersistedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	s.Identity = s.Identity.Clone()
	m.session = &s
	return nil
}

func (m *memStorage) SaveAccessToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.AccessToken = token
	}
	return nil
}

func (m *memStorage) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.loadErr = nil
	return nil
}

func (m *memStorage) stored() *models.PersistedSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// fakeAuth is a scriptable AuthService. Gates, when set, block the matching
// call until closed so tests can act while it is in flight.
type fakeAuth struct {
	tokens      models.Tokens
	identity    *models.Identity
	exchangeErr error
	identityErr error
	refreshed   string
	refreshErr  error
	logoutErr   error

	exchangeGate chan struct{}
	exchangeSeen chan struct{}

	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32

	mu        sync.Mutex
	loggedOut []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		tokens:    models.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"},
		identity:  &models.Identity{ID: 1, Username: "ana", Roles: []models.RoleRef{{ID: 2, Name: "Instructor"}}},
		refreshed: "access-2",
	}
}

func (f *fakeAuth) ExchangeCredentials(ctx context.Context, username, password string) (models.Tokens, error) {
	if f.exchangeSeen != nil {
		close(f.exchangeSeen)
	}
	if f.exchangeGate != nil {
		<-f.exchangeGate
	}
	if f.exchangeErr != nil {
		return models.Tokens{}, f.exchangeErr
	}
	return f.tokens, nil
}

func (f *fakeAuth) FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.identity.Clone(), nil
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	f.refreshCalls.Add(1)
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.refreshed, nil
}

func (f *fakeAuth) NotifyLogout(ctx context.Context, accessToken string) error {
	f.logoutCalls.Add(1)
	f.mu.Lock()
	f.loggedOut = append(f.loggedOut, accessToken)
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeAuth) loggedOutTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loggedOut...)
}
