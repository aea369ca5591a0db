// Package metadata is the key-value table the client keeps its local state
// in: the persisted session entries and the storage sealing salt.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMany returns the values of the keys that exist; absent keys are
	// simply missing from the map.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
