package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/client/permissions"
	"github.com/dmitrijs2005/gatekeeper/internal/client/routing"
	"github.com/dmitrijs2005/gatekeeper/internal/client/services"
)

type fakeConsole struct {
	snapshot models.Snapshot
	set      permissions.Set

	loginUser string
	loginPass []byte
	loginRes  *services.LoginResult
	loginErr  error

	logoutCalled bool
	refreshOK    bool
	verifyErr    error
	pingErr      error
	navigate     map[string]routing.Result
	menu         []routing.MenuEntry
	subscribers  []func(models.Snapshot)
}

func (f *fakeConsole) Hydrate(context.Context) models.Snapshot { return f.snapshot }

func (f *fakeConsole) Login(_ context.Context, user string, pass []byte) (*services.LoginResult, error) {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.snapshot = models.Snapshot{Status: models.StatusAuthenticated, Identity: f.loginRes.Identity}
	return f.loginRes, nil
}

func (f *fakeConsole) Logout(context.Context) {
	f.logoutCalled = true
	f.snapshot = models.Snapshot{}
	for _, fn := range f.subscribers {
		fn(f.snapshot)
	}
}

func (f *fakeConsole) Refresh(context.Context) bool        { return f.refreshOK }
func (f *fakeConsole) VerifySession(context.Context) error { return f.verifyErr }
func (f *fakeConsole) Navigate(path string) routing.Result { return f.navigate[path] }
func (f *fakeConsole) Menu() []routing.MenuEntry           { return f.menu }
func (f *fakeConsole) Snapshot() models.Snapshot           { return f.snapshot }
func (f *fakeConsole) Ping(context.Context) error          { return f.pingErr }
func (f *fakeConsole) Close(context.Context) error         { return nil }

func (f *fakeConsole) WhoAmI() (*models.Identity, permissions.Set) {
	return f.snapshot.Identity, f.set
}

func (f *fakeConsole) Subscribe(fn func(models.Snapshot)) func() {
	f.subscribers = append(f.subscribers, fn)
	return func() {}
}

// captureOutput replaces printlnFn and returns the printed lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}
