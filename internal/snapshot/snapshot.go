// Package snapshot is the local fallback store: whole-collection JSON
// snapshots kept under fixed keys, one array per entity.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the two collections kept locally
const (
	ProductsKey = "storefront_products"
	OrdersKey   = "storefront_orders"
)

// ErrCorrupt marks a snapshot that exists but does not decode
var ErrCorrupt = errors.New("snapshot corrupt")

// Store persists opaque snapshots by key. Load reports ok=false for a key that
// was never saved.
type Store interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// LoadJSON reads and decodes the snapshot under key
func LoadJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var value T
	data, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, true, fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	return value, true, nil
}

// SaveJSON encodes value and stores it under key
func SaveJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}
