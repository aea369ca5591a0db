package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/config"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/client/permissions"
	"github.com/dmitrijs2005/gatekeeper/internal/client/services"
	"github.com/dmitrijs2005/gatekeeper/internal/client/session"
	"github.com/dmitrijs2005/gatekeeper/internal/client/storage"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	console services.ConsoleService
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	mu         sync.Mutex
	mode       Mode
	lastStatus models.Status
}

// NewApp opens local storage, connects the backend client and builds the
// console service described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	var secret []byte
	if c.StorageSecret != "" {
		secret = []byte(c.StorageSecret)
	}
	st, err := storage.NewSessionStorage(ctx, db, secret)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	table := permissions.DefaultTable()
	if c.RolesFile != "" {
		table, err = permissions.LoadTable(c.RolesFile)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	apiClient, err := client.New(c.Transport, c.ServerAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := session.New(apiClient, st,
		session.WithLogger(log),
		session.WithExpirySkew(c.TokenExpirySkew),
	)
	console := services.NewConsoleService(apiClient, store, table, log)

	return newApp(c, console, db, log), nil
}

func newApp(c *config.Config, console services.ConsoleService, db *sql.DB, log logging.Logger) *App {
	return &App{
		config:  c,
		console: console,
		db:      db,
		log:     log.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.console.Close(ctx)
		if a.db != nil {
			_ = a.db.Close()
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.console.Snapshot().Authenticated()
}

// hasUsableRole reports whether the identity resolved to a known role or is
// a superuser.
func (a *App) hasUsableRole() bool {
	_, set := a.console.WhoAmI()
	switch set.Outcome() {
	case permissions.OutcomeGranted, permissions.OutcomeSuperuser:
		return true
	default:
		return false
	}
}

// onSessionChange tells the user when a session ends, whether by logout
// or because it could not be refreshed.
func (a *App) onSessionChange(s models.Snapshot) {
	a.mu.Lock()
	ended := a.lastStatus == models.StatusAuthenticated && s.Status == models.StatusUnauthenticated
	a.lastStatus = s.Status
	a.mu.Unlock()

	if ended {
		printlnFn("Session ended.")
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.console.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}
