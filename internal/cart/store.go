package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/giftly/giftly-backend/pkg/redis"
)

// Store persists cart snapshots in Redis, keyed per buyer. Only the items
// array is serialized; totals are derived on load.
type Store struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewStore builds a Redis-backed snapshot store. A zero TTL keeps snapshots
// until explicitly cleared.
func NewStore(client *redisclient.Client, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Load returns the persisted line items for the buyer. A missing snapshot is
// an empty cart, not an error.
func (s *Store) Load(ctx context.Context, buyerID uuid.UUID) ([]LineItem, error) {
	raw, err := s.client.Get(ctx, s.client.CartSnapshotKey(buyerID.String()))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

// Save overwrites the buyer's snapshot with the given items.
func (s *Store) Save(ctx context.Context, buyerID uuid.UUID, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartSnapshotKey(buyerID.String()), payload, s.ttl); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

// Delete removes the buyer's snapshot.
func (s *Store) Delete(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.client.Del(ctx, s.client.CartSnapshotKey(buyerID.String())); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}
