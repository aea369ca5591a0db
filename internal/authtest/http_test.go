package authtest

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func TestHandler_DownAnswers503ForEveryMethod(t *testing.T) {
	b := New()
	srv := b.StartHTTP(t)

	get := func() int {
		resp, err := http.Get(srv.URL + common.PathToken)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	post := func() int {
		resp, err := http.Post(srv.URL+common.PathToken, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusMethodNotAllowed, get())

	b.SetDown(true)
	require.Equal(t, http.StatusServiceUnavailable, get())
	require.Equal(t, http.StatusServiceUnavailable, post())

	b.SetDown(false)
	require.Equal(t, http.StatusMethodNotAllowed, get())
}
