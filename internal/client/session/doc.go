// Package session owns the authentication session of the console: the token
// pair, the identity fetched with it, and every transition between
// unauthenticated and authenticated.
//
// A Store is built once per process and shared; all methods are safe for
// concurrent use. The mutex guarding its state is never held across a
// network call. Each clear (logout, failed refresh, new login) bumps an
// epoch so that a network call started for an older session cannot write
// its result into a newer one.
package session
