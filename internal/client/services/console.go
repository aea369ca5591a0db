package services

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/client/permissions"
	"github.com/dmitrijs2005/gatekeeper/internal/client/routing"
	"github.com/dmitrijs2005/gatekeeper/internal/client/session"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
)

// ConsoleService defines the console operations used by the CLI.
//
// Contract:
//   - Hydrate: restore the persisted session at startup.
//   - Login: authenticate and land on the path a login redirect recorded,
//     or on the home route.
//   - Logout: end the session; never fails locally.
//   - Navigate: decide a navigation attempt.
//   - Menu: the navigation entries the current identity may see.
//   - VerifySession: one authenticated round trip, refreshing if needed.
//   - Ping: check server liveness.
//
// All blocking methods honor context cancellation/timeouts.
type ConsoleService interface {
	Hydrate(ctx context.Context) models.Snapshot
	Login(ctx context.Context, username string, password []byte) (*LoginResult, error)
	Logout(ctx context.Context)
	Refresh(ctx context.Context) bool
	VerifySession(ctx context.Context) error
	Navigate(path string) routing.Result
	Menu() []routing.MenuEntry
	WhoAmI() (*models.Identity, permissions.Set)
	Snapshot() models.Snapshot
	Subscribe(fn func(models.Snapshot)) func()
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// LoginResult is the identity that logged in and where navigation lands.
type LoginResult struct {
	Identity *models.Identity
	Landing  routing.Result
}

type consoleService struct {
	client   client.Client
	store    *session.Store
	table    *permissions.Table
	resolver *permissions.Resolver
	guard    *routing.Guard
	menu     []routing.MenuEntry
	log      logging.Logger
}

// NewConsoleService wires a console over an existing session store. A nil
// table selects permissions.DefaultTable.
func NewConsoleService(c client.Client, store *session.Store, table *permissions.Table, log logging.Logger) ConsoleService {
	if table == nil {
		table = permissions.DefaultTable()
	}
	resolver := permissions.NewResolver(store, table)
	return &consoleService{
		client:   c,
		store:    store,
		table:    table,
		resolver: resolver,
		guard:    routing.NewDefaultGuard(resolver),
		menu:     routing.DefaultMenu(),
		log:      log.With("module", "console"),
	}
}

func (s *consoleService) Hydrate(ctx context.Context) models.Snapshot {
	return s.store.Hydrate(ctx)
}

// Login wipes password before returning.
func (s *consoleService) Login(ctx context.Context, username string, password []byte) (*LoginResult, error) {
	defer common.WipeByteArray(password)

	identity, err := s.store.Login(ctx, username, string(password))
	if err != nil {
		return nil, err
	}

	target, ok := s.guard.TakeReturnTo()
	if !ok {
		target = routing.PathHome
	}
	landing := s.guard.Check(target)
	s.log.Debug(ctx, "post-login navigation", "path", landing.Path, "decision", landing.Decision.String())

	return &LoginResult{Identity: identity, Landing: landing}, nil
}

func (s *consoleService) Logout(ctx context.Context) {
	s.store.Logout(ctx)
}

func (s *consoleService) Refresh(ctx context.Context) bool {
	return s.store.RefreshAccessToken(ctx)
}

func (s *consoleService) VerifySession(ctx context.Context) error {
	return s.store.Do(ctx, func(ctx context.Context, token string) error {
		_, err := s.client.FetchIdentity(ctx, token)
		return err
	})
}

func (s *consoleService) Navigate(path string) routing.Result {
	return s.guard.Check(path)
}

// Menu is empty without a session and for identities without a usable role.
func (s *consoleService) Menu() []routing.MenuEntry {
	set := s.resolver.Current()
	switch set.Outcome() {
	case permissions.OutcomeNoSession, permissions.OutcomeNoRole, permissions.OutcomeUnknownRole:
		return nil
	}
	return routing.FilterMenu(s.menu, set)
}

func (s *consoleService) WhoAmI() (*models.Identity, permissions.Set) {
	identity := s.store.Identity()
	return identity, permissions.Resolve(identity, s.table)
}

func (s *consoleService) Snapshot() models.Snapshot {
	return s.store.Snapshot()
}

func (s *consoleService) Subscribe(fn func(models.Snapshot)) func() {
	return s.store.Subscribe(fn)
}

func (s *consoleService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *consoleService) Close(ctx context.Context) error {
	return s.client.Close()
}
