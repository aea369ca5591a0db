package authtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// Handler serves the REST flavour of the auth service. While the Backend is
// down every request, whatever its method, gets 503.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(common.PathToken, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "method not allowed"})
			return
		}
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "bad request"})
			return
		}
		access, refresh, err := b.exchange(req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": access, "refresh": refresh})
	})

	mux.HandleFunc(common.PathTokenRefresh, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Refresh string `json:"refresh"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "bad request"})
			return
		}
		access, err := b.refresh(req.Refresh)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": access})
	})

	mux.HandleFunc(common.PathUserInfo, func(w http.ResponseWriter, r *http.Request) {
		identity, err := b.identity(common.TokenFromBearer(r.Header.Get("Authorization")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, identity)
	})

	mux.HandleFunc(common.PathLogout, func(w http.ResponseWriter, r *http.Request) {
		if err := b.logout(common.TokenFromBearer(r.Header.Get("Authorization"))); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.isDown() {
			writeError(w, errDown)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// StartHTTP serves the Backend on an httptest server closed at test end.
func (b *Backend) StartHTTP(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadCredentials), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": err.Error()})
	case errors.Is(err, errDown):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"detail": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
