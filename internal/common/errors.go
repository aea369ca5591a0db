// Package common defines shared constants and sentinel errors used across
// client layers of gatekeeper. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Token validation errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Sealed-value errors.
	ErrCorruptedValue = errors.New("corrupted value")
)
