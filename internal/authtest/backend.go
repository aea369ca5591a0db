package authtest

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

var (
	errBadCredentials = errors.New("no active account found with the given credentials")
	errDown           = errors.New("backend down")
	errInternal       = errors.New("internal error")
)

// User is an account known to the Backend. Identity is returned verbatim by
// the identity endpoint, so tests can shape it freely (singular "role",
// empty "roles", missing fields).
type User struct {
	Username string
	Password string
	Identity map[string]any
}

// Backend is a fake auth service. The zero value is not usable; call New.
type Backend struct {
	secret    []byte
	accessTTL time.Duration

	mu            sync.Mutex
	users         map[string]User
	refreshTokens map[string]string
	generation    int
	down          bool
	identityFails bool
	logoutFails   bool

	// RefreshHook, when set, runs inside every refresh call before the
	// answer is produced. Tests use it to hold a refresh in flight.
	RefreshHook func()

	exchangeCalls atomic.Int32
	identityCalls atomic.Int32
	refreshCalls  atomic.Int32
	logoutCalls   atomic.Int32
}

// Option tweaks a Backend.
type Option func(*Backend)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(d time.Duration) Option {
	return func(b *Backend) { b.accessTTL = d }
}

func New(opts ...Option) *Backend {
	b := &Backend{
		secret:        []byte("authtest-secret"),
		accessTTL:     15 * time.Minute,
		users:         map[string]User{},
		refreshTokens: map[string]string{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// AddUser registers an account.
func (b *Backend) AddUser(u User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[u.Username] = u
}

// SetDown makes every endpoint answer as unavailable.
func (b *Backend) SetDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *Backend) isDown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.down
}

// SetIdentityFails makes the identity endpoint answer with a server error.
func (b *Backend) SetIdentityFails(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identityFails = fail
}

// SetLogoutFails makes the logout endpoint answer with a server error.
func (b *Backend) SetLogoutFails(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logoutFails = fail
}

// ExpireAccessTokens invalidates every access token issued so far.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens = map[string]string{}
}

// IssueAccessToken signs a currently valid access token for username.
func (b *Backend) IssueAccessToken(username string) (string, error) {
	b.mu.Lock()
	gen := b.generation
	b.mu.Unlock()
	return generateToken(username, gen, b.secret, b.accessTTL)
}

func (b *Backend) ExchangeCalls() int { return int(b.exchangeCalls.Load()) }
func (b *Backend) IdentityCalls() int { return int(b.identityCalls.Load()) }
func (b *Backend) RefreshCalls() int  { return int(b.refreshCalls.Load()) }
func (b *Backend) LogoutCalls() int   { return int(b.logoutCalls.Load()) }

func (b *Backend) exchange(username, password string) (access, refresh string, err error) {
	b.exchangeCalls.Add(1)

	b.mu.Lock()
	u, ok := b.users[username]
	down := b.down
	b.mu.Unlock()

	if down {
		return "", "", errDown
	}
	if !ok || u.Password != password {
		return "", "", errBadCredentials
	}

	access, err = b.IssueAccessToken(username)
	if err != nil {
		return "", "", errInternal
	}
	refresh = randomToken()

	b.mu.Lock()
	b.refreshTokens[refresh] = username
	b.mu.Unlock()
	return access, refresh, nil
}

func (b *Backend) identity(accessToken string) (map[string]any, error) {
	b.identityCalls.Add(1)

	b.mu.Lock()
	down, fails := b.down, b.identityFails
	b.mu.Unlock()

	if down {
		return nil, errDown
	}
	username, err := b.authenticate(accessToken)
	if err != nil {
		return nil, err
	}
	if fails {
		return nil, errInternal
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.users[username].Identity, nil
}

func (b *Backend) refresh(refreshToken string) (string, error) {
	b.refreshCalls.Add(1)
	if b.RefreshHook != nil {
		b.RefreshHook()
	}

	b.mu.Lock()
	username, ok := b.refreshTokens[refreshToken]
	down := b.down
	b.mu.Unlock()

	if down {
		return "", errDown
	}
	if !ok {
		return "", common.ErrInvalidToken
	}
	access, err := b.IssueAccessToken(username)
	if err != nil {
		return "", errInternal
	}
	return access, nil
}

func (b *Backend) logout(accessToken string) error {
	b.logoutCalls.Add(1)

	b.mu.Lock()
	down, fails := b.down, b.logoutFails
	b.mu.Unlock()

	if down {
		return errDown
	}
	if _, err := b.authenticate(accessToken); err != nil {
		return err
	}
	if fails {
		return errInternal
	}
	return nil
}

func (b *Backend) authenticate(accessToken string) (string, error) {
	claims, err := parseToken(accessToken, b.secret)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if claims.Generation != b.generation {
		return "", common.ErrInvalidToken
	}
	if _, ok := b.users[claims.Subject]; !ok {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

func randomToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
