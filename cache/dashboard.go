// Package cache holds the Redis-backed view cache for assembled dashboard
// payloads. Entries are written after a dashboard is built and deleted when
// a new bank account is linked, so the next read reflects the link.
package cache

import (
	"time"

	"github.com/go-redis/redis/v7"
)

const keyPrefix = "dashboard:"

// Dashboard caches one serialized dashboard payload per user.
type Dashboard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDashboard takes an initialized Redis client. A zero ttl means entries
// only leave the cache through Invalidate.
func NewDashboard(client *redis.Client, ttl time.Duration) *Dashboard {
	return &Dashboard{client: client, ttl: ttl}
}

// Get returns the cached payload for a user, or false on a miss.
func (d *Dashboard) Get(userID string) ([]byte, bool) {
	b, err := d.client.Get(keyPrefix + userID).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores the payload under the user's key.
func (d *Dashboard) Set(userID string, payload []byte) error {
	return d.client.Set(keyPrefix+userID, payload, d.ttl).Err()
}

// Invalidate drops the user's cached dashboard. Deleting a missing key is
// not an error.
func (d *Dashboard) Invalidate(userID string) error {
	return d.client.Del(keyPrefix + userID).Err()
}
