package common

import "strings"

// BearerToken formats an access token for the authorization header.
func BearerToken(token string) string {
	return BearerPrefix + token
}

// TokenFromBearer extracts the token from an authorization header value.
// The scheme match is case-insensitive; an empty string is returned when the
// value is not a bearer credential.
func TokenFromBearer(value string) string {
	if len(value) < len(BearerPrefix) || !strings.EqualFold(value[:len(BearerPrefix)], BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(value[len(BearerPrefix):])
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for passwords read from the terminal. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
