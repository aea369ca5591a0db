// Package cli provides the interactive gatekeeper console.
//
// It wires configuration, local session storage, the backend client and an
// interactive REPL. Typical flow: restore the persisted session, prompt for
// credentials when there is none, start a background connectivity watcher,
// and execute user commands.
//
// Commands:
//   - login / logout
//   - whoami, menu, open <path>
//   - refresh, verify, status
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
