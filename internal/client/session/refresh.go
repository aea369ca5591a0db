package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// AuthenticatedCall performs one request with the given access token.
type AuthenticatedCall func(ctx context.Context, accessToken string) error

// Do runs call with the current access token. If the backend answers
// client.ErrUnauthorized, Do waits for the single shared refresh and runs
// call once more; a second failure is returned as is.
func (s *Store) Do(ctx context.Context, call AuthenticatedCall) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	err = call(ctx, token)
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	s.log.Debug(ctx, "access token rejected, refreshing")
	token, err = s.refresh(ctx, token)
	if err != nil {
		return err
	}
	return call(ctx, token)
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// Any failure clears the session. It reports whether the session survived.
func (s *Store) RefreshAccessToken(ctx context.Context) bool {
	s.mu.Lock()
	token := s.tokens.AccessToken
	s.mu.Unlock()

	_, err := s.refresh(ctx, token)
	return err == nil
}

// accessToken returns the token to use for the next call, refreshing it
// first when it is about to expire.
func (s *Store) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.status != models.StatusAuthenticated {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	token := s.tokens.AccessToken
	s.mu.Unlock()

	if s.skew > 0 && expiresWithin(token, s.skew, s.now()) {
		s.log.Debug(ctx, "access token about to expire, refreshing")
		return s.refresh(ctx, token)
	}
	return token, nil
}

// refresh replaces rejected, the access token the caller saw fail, with a
// fresh one. Concurrent callers share one in-flight refresh; a caller whose
// token was already replaced gets the new one without another round trip.
func (s *Store) refresh(ctx context.Context, rejected string) (string, error) {
	ch := s.refreshGroup.DoChan("refresh", func() (any, error) {
		return s.doRefresh(context.WithoutCancel(ctx), rejected)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Store) doRefresh(ctx context.Context, rejected string) (string, error) {
	s.mu.Lock()
	if s.status != models.StatusAuthenticated {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	if s.tokens.AccessToken != rejected {
		token := s.tokens.AccessToken
		s.mu.Unlock()
		return token, nil
	}
	refreshToken := s.tokens.RefreshToken
	epoch := s.epoch
	sessionID := s.sessionID
	s.mu.Unlock()

	access, err := s.auth.Refresh(ctx, refreshToken)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return "", ErrSessionSuperseded
	}
	if err != nil {
		s.resetLocked(ctx)
		s.mu.Unlock()
		s.publish()
		s.log.Warn(ctx, "refresh failed, session cleared", "session_id", sessionID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	s.tokens.AccessToken = access
	if err := s.storage.SaveAccessToken(ctx, access); err != nil {
		s.log.Warn(ctx, "failed to persist refreshed access token", "session_id", sessionID, "error", err)
	}
	s.mu.Unlock()
	s.publish()

	s.log.Debug(ctx, "access token refreshed", "session_id", sessionID)
	return access, nil
}

// expiresWithin reads the exp claim of a JWT without verifying it. Tokens
// that are not JWTs, or carry no exp, never count as expiring.
func expiresWithin(token string, skew time.Duration, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now.Add(skew))
}
