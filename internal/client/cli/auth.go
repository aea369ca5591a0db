package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and tries to authenticate.
//
// On success it greets the user and shows where navigation lands: the page
// that asked for a login, or the home page. Failures are reported by kind;
// only invalid credentials ask the user to retype anything. The password is
// wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	res, err := a.console.Login(ctx, userName, password)
	if err != nil {
		printlnFn(loginFailureMessage(err))
		return err
	}

	a.setMode(ModeOnline)
	printlnFn(fmt.Sprintf("Welcome, %s!", res.Identity.DisplayName()))
	a.showResult(res.Landing)
	return nil
}

func loginFailureMessage(err error) string {
	var authErr *session.AuthError
	if !errors.As(err, &authErr) {
		if errors.Is(err, session.ErrLoginInProgress) {
			return "A login is already in progress."
		}
		return fmt.Sprintf("Login failed: %v", err)
	}

	switch authErr.Kind {
	case session.KindInvalidCredentials:
		return "Invalid username or password."
	case session.KindNetworkFailure:
		return "Server unreachable, try again later."
	case session.KindStorageFailure:
		return "Could not save the session locally."
	default:
		return "The server could not complete the login, try again later."
	}
}

// Logout ends the session. It never fails: the local session is cleared
// even when the server cannot be told.
func (a *App) Logout(ctx context.Context) error {
	a.console.Logout(ctx)
	return nil
}
