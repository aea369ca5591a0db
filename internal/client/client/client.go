package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
)

// Client is the remote authentication service as seen by the session core.
type Client interface {
	// ExchangeCredentials trades username/password for a token pair.
	ExchangeCredentials(ctx context.Context, username, password string) (models.Tokens, error)
	// FetchIdentity returns the profile of the user owning accessToken.
	FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error)
	// Refresh trades a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// NotifyLogout tells the backend the session is over. Best-effort.
	NotifyLogout(ctx context.Context, accessToken string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Transport names accepted by New.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// New builds the Client for the given transport. For HTTP, addr may be a
// bare host:port (http:// is assumed) or a full base URL.
func New(transport, addr string, timeout time.Duration) (Client, error) {
	switch transport {
	case TransportHTTP, "":
		return NewHTTPClient(addr, timeout), nil
	case TransportGRPC:
		return NewGRPCClient(addr, timeout)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}
