package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/client/config"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/client/routing"
	"github.com/dmitrijs2005/gatekeeper/internal/client/services"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

// ---- getStatus ----

func TestGetStatus_Empty(t *testing.T) {
	a, _ := newTestApp(&fakeConsole{})
	got := a.getStatus()
	if got != "" {
		t.Fatalf("want empty status, got %q", got)
	}
}

func TestGetStatus_WithUsernameOnly(t *testing.T) {
	a, _ := newTestApp(&fakeConsole{snapshot: models.Snapshot{
		Status:   models.StatusAuthenticated,
		Identity: &models.Identity{ID: 1, Username: "alice"},
	}})
	got := a.getStatus()
	want := "(alice )"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestGetStatus_WithMode(t *testing.T) {
	a, _ := newTestApp(&fakeConsole{snapshot: models.Snapshot{
		Status:   models.StatusAuthenticated,
		Identity: &models.Identity{ID: 1, Username: "alice"},
	}})
	a.setMode(ModeOffline)
	if got := a.getStatus(); got != "(alice offline)" {
		t.Fatalf("got %q", got)
	}
}

// ---- Root ----

func TestRoot_RestoredSessionSkipsLogin(t *testing.T) {
	lines := captureOutput(t)
	fc := &fakeConsole{snapshot: models.Snapshot{
		Status:   models.StatusAuthenticated,
		Identity: &models.Identity{ID: 1, Username: "ana", FirstName: "Ana", LastName: "Ruiz"},
	}}
	a, _ := newTestApp(fc)
	a.reader = bufio.NewReader(strings.NewReader("quit\n"))

	a.Root(context.Background())

	require.Empty(t, fc.loginUser)
	require.Contains(t, *lines, "Welcome back, Ana Ruiz!")
	require.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRoot_PromptsForLoginWithoutSession(t *testing.T) {
	captureOutput(t)
	fc := &fakeConsole{loginRes: &services.LoginResult{
		Identity: &models.Identity{ID: 1, Username: "ana"},
		Landing:  routing.Result{Decision: routing.DecisionRender, Path: routing.PathDashboard},
	}}
	a, _ := newTestApp(fc)
	a.reader = bufio.NewReader(strings.NewReader("exit\n"))
	stubInputs(t, "ana", []byte("secret"))

	a.Root(context.Background())

	require.Equal(t, "ana", fc.loginUser)
	require.True(t, a.isLoggedIn())
}
