package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
)

// ValkeyStore implements RouteStore using Valkey (Redis-compatible), letting
// several engine processes share planned routes.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore connects to a Valkey server. Keys are namespaced under prefix.
func NewValkeyStore(addr, prefix string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return NewValkeyStoreFromClient(client, prefix), nil
}

// NewValkeyStoreFromClient wraps an existing client
func NewValkeyStoreFromClient(client valkey.Client, prefix string) *ValkeyStore {
	return &ValkeyStore{client: client, prefix: prefix}
}

// GetRoute retrieves a projected route. A missing key is a miss, not an error.
func (s *ValkeyStore) GetRoute(ctx context.Context, key string) (routing.GeoRoute, bool, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(s.key(key)).Build())
	b, err := cmd.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}

	var route routing.GeoRoute
	if err := json.Unmarshal(b, &route); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached route: %w", err)
	}
	return route, true, nil
}

// SetRoute stores a projected route with a TTL
func (s *ValkeyStore) SetRoute(ctx context.Context, key string, route routing.GeoRoute, ttl time.Duration) error {
	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("failed to marshal route for cache: %w", err)
	}
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(s.key(key)).Value(string(data)).Ex(ttl).Build(),
	)
	return cmd.Error()
}

// Delete removes a route
func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	cmd := s.client.Do(ctx, s.client.B().Del().Key(s.key(key)).Build())
	return cmd.Error()
}

// Close releases the client.
func (s *ValkeyStore) Close() {
	s.client.Close()
}

func (s *ValkeyStore) key(key string) string {
	if s.prefix == "" {
		return routeKey(key)
	}
	return s.prefix + ":" + routeKey(key)
}
