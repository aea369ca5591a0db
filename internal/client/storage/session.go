package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/cryptox"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
)

// Metadata keys of the persisted session.
const (
	KeyIdentity     = "identity"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"

	keySealSalt = "seal_salt"
)

var sessionKeys = []string{KeyIdentity, KeyAccessToken, KeyRefreshToken}

// SessionStorage persists the session in the metadata table. Values are
// sealed with a key derived from the storage secret when one is configured.
type SessionStorage struct {
	db     *sql.DB
	repo   metadata.Repository
	sealer cryptox.Sealer
}

// NewSessionStorage prepares session persistence on db. An empty secret
// stores values in the clear; otherwise the sealing salt is read from the
// database, or generated and stored on first use.
func NewSessionStorage(ctx context.Context, db *sql.DB, secret []byte) (*SessionStorage, error) {
	s := &SessionStorage{
		db:     db,
		repo:   metadata.NewSQLiteRepository(db),
		sealer: cryptox.Plain{},
	}
	if len(secret) == 0 {
		return s, nil
	}

	salt, err := s.repo.Get(ctx, keySealSalt)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		if salt, err = cryptox.RandomSalt(); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := s.repo.Set(ctx, keySealSalt, salt); err != nil {
			return nil, err
		}
	}

	sealer, err := cryptox.NewSealer(secret, salt)
	if err != nil {
		return nil, err
	}
	s.sealer = sealer
	return s, nil
}

// Load returns the persisted session, or (nil, nil) when any of the three
// entries is missing. Entries that cannot be opened or parsed yield an
// error wrapping common.ErrCorruptedValue.
func (s *SessionStorage) Load(ctx context.Context) (*models.PersistedSession, error) {
	values, err := s.repo.GetMany(ctx, sessionKeys...)
	if err != nil {
		return nil, err
	}
	for _, k := range sessionKeys {
		if len(values[k]) == 0 {
			return nil, nil
		}
	}

	plain := make(map[string][]byte, len(sessionKeys))
	for _, k := range sessionKeys {
		v, err := s.sealer.Open(values[k])
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", k, err)
		}
		plain[k] = v
	}

	var identity models.Identity
	if err := json.Unmarshal(plain[KeyIdentity], &identity); err != nil {
		return nil, fmt.Errorf("%w: identity: %v", common.ErrCorruptedValue, err)
	}
	if !identity.Validate() {
		return nil, fmt.Errorf("%w: identity without id or username", common.ErrCorruptedValue)
	}
	if identity.Roles == nil {
		identity.Roles = []models.RoleRef{}
	}

	return &models.PersistedSession{
		Identity:     &identity,
		AccessToken:  string(plain[KeyAccessToken]),
		RefreshToken: string(plain[KeyRefreshToken]),
	}, nil
}

// Save writes all three entries in one transaction.
func (s *SessionStorage) Save(ctx context.Context, p models.PersistedSession) error {
	identity, err := json.Marshal(p.Identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	values := map[string][]byte{
		KeyIdentity:     identity,
		KeyAccessToken:  []byte(p.AccessToken),
		KeyRefreshToken: []byte(p.RefreshToken),
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, k := range sessionKeys {
			if err := s.put(ctx, repo, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveAccessToken replaces only the access token, after a refresh.
func (s *SessionStorage) SaveAccessToken(ctx context.Context, token string) error {
	return s.put(ctx, s.repo, KeyAccessToken, []byte(token))
}

// Clear removes the session entries. The sealing salt is kept.
func (s *SessionStorage) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, sessionKeys...)
}

func (s *SessionStorage) put(ctx context.Context, repo metadata.Repository, key string, value []byte) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return repo.Set(ctx, key, sealed)
}
