// Package client talks to the console backend's authentication service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the four
//     calls the session core needs: ExchangeCredentials, FetchIdentity,
//     Refresh and NotifyLogout, plus Ping and Close.
//  2. HTTPClient, speaking the backend's REST API (/api/token/,
//     /api/token/refresh/, /api/user-info/, /api/logout/).
//  3. GRPCClient, speaking the same calls over gRPC with
//     google.protobuf.Struct payloads and the access token in metadata.
//
// Both transports normalise the identity payload into models.Identity (see
// DecodeIdentity) so that callers never deal with backend shape differences.
//
// # Error Handling
//
// Transport failures are mapped to sentinel errors that callers match with
// errors.Is: ErrInvalidCredentials, ErrUnauthorized, ErrInvalidRefreshToken,
// ErrUnavailable, ErrServer, ErrMalformedResponse.
//
// The client is stateless with respect to tokens: the session store owns them
// and passes them in on every call.
package client
