package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/client/permissions"
	"github.com/dmitrijs2005/gatekeeper/internal/client/routing"
	"github.com/dmitrijs2005/gatekeeper/internal/client/session"
)

var errNotLoggedIn = errors.New("not logged in")

// WhoAmI prints the current identity and what it may do.
func (a *App) WhoAmI(ctx context.Context) error {
	identity, set := a.console.WhoAmI()
	if identity == nil {
		printlnFn("Not logged in.")
		return errNotLoggedIn
	}

	printlnFn(fmt.Sprintf("User:  %s (%s)", identity.DisplayName(), identity.Username))
	if identity.Email != "" {
		printlnFn(fmt.Sprintf("Email: %s", identity.Email))
	}

	switch set.Outcome() {
	case permissions.OutcomeSuperuser:
		printlnFn("Role:  superuser, all permissions")
	case permissions.OutcomeNoRole:
		printlnFn("Role:  none")
	case permissions.OutcomeUnknownRole:
		printlnFn(fmt.Sprintf("Role:  %s (not recognized)", set.Role()))
	default:
		printlnFn(fmt.Sprintf("Role:  %s", set.Role()))
		perms := make([]string, 0, len(set.Permissions()))
		for _, p := range set.Permissions() {
			perms = append(perms, string(p))
		}
		printlnFn("Permissions: " + strings.Join(perms, ", "))
	}
	return nil
}

// Menu lists the sections the current identity may open.
func (a *App) Menu(ctx context.Context) error {
	entries := a.console.Menu()
	if len(entries) == 0 {
		printlnFn("Nothing to show.")
		return nil
	}
	for _, e := range entries {
		printlnFn(fmt.Sprintf("  %-16s %s", e.Label, e.Path))
	}
	return nil
}

// Open navigates to path. Without a session it asks for credentials and
// continues to path once logged in.
func (a *App) Open(ctx context.Context, path string) error {
	res := a.console.Navigate(path)
	if res.Decision == routing.DecisionRedirectLogin {
		printlnFn("Login required.")
		return a.Login(ctx)
	}
	a.showResult(res)
	return nil
}

func (a *App) showResult(res routing.Result) {
	switch res.Decision {
	case routing.DecisionRender:
		printlnFn(fmt.Sprintf("[%s] %s", res.Path, res.Route.Title))
	case routing.DecisionAccessDenied:
		printlnFn(fmt.Sprintf("Access denied: %s requires %q.", res.Path, res.Missing))
	case routing.DecisionNoRoles:
		printlnFn(noRoleMessage)
	case routing.DecisionRedirectLogin:
		printlnFn("Login required.")
	}
}

// Refresh renews the access token. A failed refresh ends the session.
func (a *App) Refresh(ctx context.Context) error {
	if !a.console.Refresh(ctx) {
		printlnFn("Could not refresh the session.")
		return session.ErrSessionExpired
	}
	printlnFn("Session refreshed.")
	return nil
}

// Verify makes one authenticated call, refreshing the token if the server
// rejects it.
func (a *App) Verify(ctx context.Context) error {
	err := a.console.VerifySession(ctx)
	switch {
	case err == nil:
		printlnFn("Session is valid.")
	case errors.Is(err, session.ErrNotAuthenticated):
		printlnFn("Not logged in.")
	case errors.Is(err, session.ErrSessionExpired):
		printlnFn("Session expired, please log in again.")
	default:
		printlnFn(fmt.Sprintf("Could not verify the session: %v", err))
	}
	return err
}

func (a *App) Status(ctx context.Context) error {
	snap := a.console.Snapshot()
	mode := a.currentMode()
	if mode == "" {
		mode = "unknown"
	}
	printlnFn(fmt.Sprintf("Server: %s (%s, %s)", a.config.ServerAddr, a.config.Transport, mode))
	printlnFn(fmt.Sprintf("Session: %s", snap.Status))
	return nil
}
