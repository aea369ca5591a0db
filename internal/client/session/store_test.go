package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	auth, st := newFakeAuth(), &memStorage{}
	s := New(auth, st)

	id, err := s.Login(ctx, "ana", "secret")
	require.NoError(t, err)
	require.Equal(t, "ana", id.Username)

	require.True(t, s.IsAuthenticated())
	snap := s.Snapshot()
	require.Equal(t, models.StatusAuthenticated, snap.Status)
	require.NotEmpty(t, snap.SessionID)

	p := st.stored()
	require.NotNil(t, p)
	require.Equal(t, "access-1", p.AccessToken)
	require.Equal(t, "refresh-1", p.RefreshToken)
	require.Equal(t, "ana", p.Identity.Username)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeAuth)
		kind  AuthErrorKind
	}{
		{"bad credentials", func(f *fakeAuth) { f.exchangeErr = client.ErrInvalidCredentials }, KindInvalidCredentials},
		{"backend unreachable", func(f *fakeAuth) { f.exchangeErr = client.ErrUnavailable }, KindNetworkFailure},
		{"backend error", func(f *fakeAuth) { f.exchangeErr = client.ErrServer }, KindServerError},
		{"identity unreachable", func(f *fakeAuth) { f.identityErr = client.ErrUnavailable }, KindNetworkFailure},
		{"identity malformed", func(f *fakeAuth) { f.identityErr = client.ErrMalformedResponse }, KindServerError},
		{"fresh token rejected", func(f *fakeAuth) { f.identityErr = client.ErrUnauthorized }, KindServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, st := newFakeAuth(), &memStorage{}
			tt.setup(auth)
			s := New(auth, st)

			id, err := s.Login(context.Background(), "ana", "secret")
			require.Nil(t, id)

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.kind, authErr.Kind)

			assert.False(t, s.IsAuthenticated())
			assert.Equal(t, models.StatusUnauthenticated, s.Snapshot().Status)
			assert.Nil(t, st.stored())
			assert.Zero(t, st.saveCalls)
		})
	}
}

func TestLogin_InvalidCredentialsLeavesStorageUntouched(t *testing.T) {
	auth := newFakeAuth()
	auth.exchangeErr = client.ErrInvalidCredentials
	st := &memStorage{}
	s := New(auth, st)

	_, err := s.Login(context.Background(), "ana", "wrong")
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	require.Zero(t, st.saveCalls)
	require.Nil(t, s.Identity())
}

func TestLogin_PersistenceFailure(t *testing.T) {
	auth := newFakeAuth()
	st := &memStorage{saveErr: errors.New("disk full")}
	s := New(auth, st)

	_, err := s.Login(context.Background(), "ana", "secret")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, KindStorageFailure, authErr.Kind)
	require.False(t, s.IsAuthenticated())
}

func TestLogin_SecondLoginWhileInFlight(t *testing.T) {
	auth := newFakeAuth()
	auth.exchangeGate = make(chan struct{})
	auth.exchangeSeen = make(chan struct{})
	s := New(auth, &memStorage{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "ana", "secret")
		done <- err
	}()
	<-auth.exchangeSeen

	require.Equal(t, models.StatusAuthenticating, s.Snapshot().Status)
	_, err := s.Login(context.Background(), "ana", "secret")
	require.ErrorIs(t, err, ErrLoginInProgress)

	close(auth.exchangeGate)
	require.NoError(t, <-done)
	require.True(t, s.IsAuthenticated())
}

func TestLogin_LogoutDuringLoginSupersedes(t *testing.T) {
	auth := newFakeAuth()
	auth.exchangeGate = make(chan struct{})
	auth.exchangeSeen = make(chan struct{})
	st := &memStorage{}
	s := New(auth, st)

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(context.Background(), "ana", "secret")
		done <- err
	}()
	<-auth.exchangeSeen

	s.Logout(context.Background())
	close(auth.exchangeGate)

	require.ErrorIs(t, <-done, ErrSessionSuperseded)
	require.False(t, s.IsAuthenticated())
	require.Nil(t, st.stored())
}

func TestLogin_ReplacesExistingSession(t *testing.T) {
	ctx := context.Background()
	auth, st := newFakeAuth(), &memStorage{}
	s := New(auth, st)

	_, err := s.Login(ctx, "ana", "secret")
	require.NoError(t, err)
	first := s.Snapshot().SessionID

	auth.identity = &models.Identity{ID: 2, Username: "bea", IsSuperuser: true}
	id, err := s.Login(ctx, "bea", "secret")
	require.NoError(t, err)
	require.Equal(t, "bea", id.Username)
	require.NotEqual(t, first, s.Snapshot().SessionID)
	require.Equal(t, "bea", st.stored().Identity.Username)
	require.Equal(t, []string{"access-1"}, auth.loggedOutTokens())
}

func TestLogin_ReplacingSessionSurvivesLogoutFailure(t *testing.T) {
	ctx := context.Background()
	auth, st := newFakeAuth(), &memStorage{}
	s := New(auth, st)

	_, err := s.Login(ctx, "ana", "secret")
	require.NoError(t, err)

	auth.logoutErr = client.ErrUnavailable
	_, err = s.Login(ctx, "ana", "secret")
	require.NoError(t, err)
	require.True(t, s.IsAuthenticated())
	require.Equal(t, int32(1), auth.logoutCalls.Load())
}

func TestLogout_ClearsEvenIfBackendFails(t *testing.T) {
	ctx := context.Background()
	auth, st := newFakeAuth(), &memStorage{}
	auth.logoutErr = client.ErrUnavailable
	s := New(auth, st)

	_, err := s.Login(ctx, "ana", "secret")
	require.NoError(t, err)

	s.Logout(ctx)
	require.Equal(t, int32(1), auth.logoutCalls.Load())
	require.False(t, s.IsAuthenticated())
	require.Nil(t, s.Identity())
	require.Nil(t, st.stored())
}

func TestLogout_WithoutSessionSkipsBackend(t *testing.T) {
	auth := newFakeAuth()
	s := New(auth, &memStorage{})

	s.Logout(context.Background())
	require.Zero(t, auth.logoutCalls.Load())
}

func TestHydrate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	auth, st := newFakeAuth(), &memStorage{}

	first := New(auth, st)
	want, err := first.Login(ctx, "ana", "secret")
	require.NoError(t, err)

	second := New(auth, st)
	snap := second.Hydrate(ctx)
	require.True(t, snap.Authenticated())
	require.Equal(t, want, snap.Identity)

	var seen string
	require.NoError(t, second.Do(ctx, func(ctx context.Context, token string) error {
		seen = token
		return nil
	}))
	require.Equal(t, "access-1", seen)
}

func TestHydrate_NothingStored(t *testing.T) {
	s := New(newFakeAuth(), &memStorage{})
	require.False(t, s.Hydrate(context.Background()).Authenticated())
}

func TestHydrate_CorruptedDataIsDiscarded(t *testing.T) {
	st := &memStorage{
		session: &models.PersistedSession{Identity: &models.Identity{ID: 1, Username: "ana"}},
		loadErr: common.ErrCorruptedValue,
	}
	s := New(newFakeAuth(), st)

	require.NotPanics(t, func() {
		snap := s.Hydrate(context.Background())
		require.False(t, snap.Authenticated())
	})
	require.Nil(t, st.stored())
}

func TestIdentity_ReturnsCopy(t *testing.T) {
	s := New(newFakeAuth(), &memStorage{})
	_, err := s.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)

	id := s.Identity()
	id.Roles[0].Name = "SuperAdmin"
	require.Equal(t, "Instructor", s.Identity().Roles[0].Name)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeAuth(), &memStorage{})

	var mu sync.Mutex
	var statuses []models.Status
	unsubscribe := s.Subscribe(func(snap models.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, snap.Status)
	})

	_, err := s.Login(ctx, "ana", "secret")
	require.NoError(t, err)
	s.Logout(ctx)

	unsubscribe()
	_, err = s.Login(ctx, "ana", "secret")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []models.Status{
		models.StatusAuthenticating,
		models.StatusAuthenticated,
		models.StatusUnauthenticated,
	}, statuses)
}

func TestSubscribe_CallbackMayResubscribe(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeAuth(), &memStorage{})

	var mu sync.Mutex
	var late []models.Status
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(snap models.Snapshot) {
		if snap.Status != models.StatusAuthenticated {
			return
		}
		unsubscribe()
		s.Subscribe(func(snap models.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			late = append(late, snap.Status)
		})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Login(ctx, "ana", "secret")
		s.Logout(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber callback deadlocked the store")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []models.Status{models.StatusUnauthenticated}, late)
}

func TestAuthError(t *testing.T) {
	err := &AuthError{Kind: KindNetworkFailure, Err: client.ErrUnavailable}
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.Contains(t, err.Error(), "network failure")
	require.True(t, err.Transient())
	require.False(t, (&AuthError{Kind: KindInvalidCredentials}).Transient())
	require.Equal(t, "login failed: invalid credentials", (&AuthError{Kind: KindInvalidCredentials}).Error())
}
