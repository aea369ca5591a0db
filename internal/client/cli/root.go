package cli

import (
	"bufio"
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if id := a.console.Snapshot().Identity; id != nil {
		s = id.Username + " "
	}
	if mode := a.currentMode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores the saved session, asks for credentials when there is
// none, and runs the REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the gatekeeper console (type 'help' for commands)")

	snap := a.console.Hydrate(ctx)
	a.lastStatus = snap.Status
	unsubscribe := a.console.Subscribe(a.onSessionChange)
	defer unsubscribe()

	a.checkOnline(ctx)

	if snap.Authenticated() {
		printlnFn(fmt.Sprintf("Welcome back, %s!", snap.Identity.DisplayName()))
	} else {
		_ = a.Login(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

var _ execIface = (*App)(nil)
