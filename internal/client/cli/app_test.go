package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
)

func newTestApp(fc *fakeConsole) (*App, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(logging.Options{Level: "debug"}, &buf)
	return newApp(testConfig(), fc, nil, log), &buf
}

func TestIsLoggedIn_NoSession(t *testing.T) {
	app, _ := newTestApp(&fakeConsole{})
	if app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a session")
	}
}

func TestIsLoggedIn_Authenticated(t *testing.T) {
	app, _ := newTestApp(&fakeConsole{snapshot: models.Snapshot{Status: models.StatusAuthenticated}})
	if !app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true for an authenticated session")
	}
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	app, buf := newTestApp(&fakeConsole{})

	app.setMode(ModeOnline)
	if app.currentMode() != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.currentMode())
	}
	if got := buf.String(); !strings.Contains(got, "mode=online") {
		t.Fatalf("expected log output on mode change, got %q", got)
	}

	buf.Reset()

	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.currentMode() != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.currentMode())
	}
	if got := buf.String(); !strings.Contains(got, "mode=offline") {
		t.Fatalf("expected log output on mode change to offline, got %q", got)
	}
}

func TestCheckOnline(t *testing.T) {
	fc := &fakeConsole{}
	app, _ := newTestApp(fc)

	app.checkOnline(context.Background())
	if app.currentMode() != ModeOnline {
		t.Fatalf("want online, got %q", app.currentMode())
	}

	fc.pingErr = errors.New("down")
	app.checkOnline(context.Background())
	if app.currentMode() != ModeOffline {
		t.Fatalf("want offline, got %q", app.currentMode())
	}
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	app, _ := newTestApp(&fakeConsole{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for app.currentMode() != ModeOnline {
		select {
		case <-deadline:
			t.Fatal("watcher never pinged")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestOnSessionChange_ReportsEnd(t *testing.T) {
	lines := captureOutput(t)
	app, _ := newTestApp(&fakeConsole{})

	app.onSessionChange(models.Snapshot{Status: models.StatusAuthenticated})
	app.onSessionChange(models.Snapshot{Status: models.StatusUnauthenticated})
	app.onSessionChange(models.Snapshot{Status: models.StatusUnauthenticated})

	if len(*lines) != 1 || (*lines)[0] != "Session ended." {
		t.Fatalf("output = %q", *lines)
	}
}

func TestHasUsableRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
		want     bool
	}{
		{"no session", nil, false},
		{"no role", &models.Identity{ID: 1, Username: "x"}, false},
		{"unknown role", &models.Identity{ID: 1, Username: "x", Roles: []models.RoleRef{{Name: "Cajero"}}}, false},
		{"known role", &models.Identity{ID: 1, Username: "x", Roles: []models.RoleRef{{Name: "Instructor"}}}, true},
		{"superuser", &models.Identity{ID: 1, Username: "x", IsSuperuser: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(authenticatedConsole(tt.identity))
			if got := app.hasUsableRole(); got != tt.want {
				t.Fatalf("hasUsableRole() = %v, want %v", got, tt.want)
			}
		})
	}
}
