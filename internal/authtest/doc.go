// Package authtest provides an in-process fake of the console backend's
// authentication service for tests, in the spirit of net/http/httptest.
//
// A Backend keeps users, issues HS256-signed JWT access tokens and opaque
// refresh tokens, counts calls per operation and lets tests inject outages or
// expire tokens. It is served over HTTP (StartHTTP) and over gRPC on an
// in-memory bufconn listener (StartGRPC).
package authtest
