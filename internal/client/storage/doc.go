// Package storage owns the client's local SQLite database: opening it,
// applying the embedded migrations and persisting the session between runs.
package storage
