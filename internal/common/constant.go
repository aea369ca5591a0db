// Package common contains shared constants and sentinel errors used across
// gatekeeper components.
package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries the access token on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the access token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// gRPC service and method names of the remote auth service. Shared by the
// gRPC transport and the in-process fake backend used in tests.
const (
	AuthServiceName = "gatekeeper.auth.v1.AuthService"

	MethodExchangeCredentials = "/" + AuthServiceName + "/ExchangeCredentials"
	MethodFetchIdentity       = "/" + AuthServiceName + "/FetchIdentity"
	MethodRefresh             = "/" + AuthServiceName + "/Refresh"
	MethodNotifyLogout        = "/" + AuthServiceName + "/NotifyLogout"
	MethodPing                = "/" + AuthServiceName + "/Ping"
)

// REST endpoints of the console backend, relative to the server base URL.
const (
	PathToken        = "/api/token/"
	PathTokenRefresh = "/api/token/refresh/"
	PathUserInfo     = "/api/user-info/"
	PathLogout       = "/api/logout/"
)
