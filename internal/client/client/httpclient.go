package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

// maxBody caps how much of a response we read.
const maxBody = 1 << 20

// HTTPClient is the Client for the console backend's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(addr string, timeout time.Duration) *HTTPClient {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &HTTPClient{baseURL: base, http: &http.Client{Timeout: timeout}}
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *HTTPClient) ExchangeCredentials(ctx context.Context, username, password string) (models.Tokens, error) {
	body := map[string]string{"username": username, "password": password}

	status, data, err := c.do(ctx, http.MethodPost, common.PathToken, "", body)
	if err != nil {
		return models.Tokens{}, err
	}

	switch {
	case status == http.StatusBadRequest, status == http.StatusUnauthorized:
		return models.Tokens{}, ErrInvalidCredentials
	case !isSuccess(status):
		return models.Tokens{}, statusError(status)
	}

	var resp tokenPairResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.Tokens{}, fmt.Errorf("%w: token pair: %v", ErrMalformedResponse, err)
	}
	if resp.Access == "" || resp.Refresh == "" {
		return models.Tokens{}, fmt.Errorf("%w: token pair is incomplete", ErrMalformedResponse)
	}
	return models.Tokens{AccessToken: resp.Access, RefreshToken: resp.Refresh}, nil
}

func (c *HTTPClient) FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	status, data, err := c.do(ctx, http.MethodGet, common.PathUserInfo, accessToken, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return nil, ErrUnauthorized
	case !isSuccess(status):
		return nil, statusError(status)
	}
	return DecodeIdentity(data)
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{"refresh": refreshToken}

	status, data, err := c.do(ctx, http.MethodPost, common.PathTokenRefresh, "", body)
	if err != nil {
		return "", err
	}

	switch {
	case status == http.StatusBadRequest, status == http.StatusUnauthorized:
		return "", ErrInvalidRefreshToken
	case !isSuccess(status):
		return "", statusError(status)
	}

	var resp tokenPairResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: refresh: %v", ErrMalformedResponse, err)
	}
	if resp.Access == "" {
		return "", fmt.Errorf("%w: refresh without access token", ErrMalformedResponse)
	}
	return resp.Access, nil
}

func (c *HTTPClient) NotifyLogout(ctx context.Context, accessToken string) error {
	status, _, err := c.do(ctx, http.MethodPost, common.PathLogout, accessToken, nil)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrUnauthorized
	}
	if !isSuccess(status) {
		return statusError(status)
	}
	return nil
}

// Ping treats any HTTP answer, even 405, as "the API is up", except for the
// gateway statuses a proxy returns when the backend behind it is gone.
func (c *HTTPClient) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, common.PathToken, "", nil)
	if err != nil {
		return err
	}
	if status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout {
		return statusError(status)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do performs one request. A non-nil error means no HTTP answer was
// received and is always ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path, accessToken string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", common.BearerToken(accessToken))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func statusError(status int) error {
	if status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout {
		return fmt.Errorf("%w: http %d", ErrUnavailable, status)
	}
	return fmt.Errorf("%w: http %d", ErrServer, status)
}

var _ Client = (*HTTPClient)(nil)

// IsTransient reports whether err is worth retrying later without user
// input (network trouble or a server-side failure).
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
