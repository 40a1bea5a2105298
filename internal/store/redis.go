package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/model"
)

// Mirror write-throughs every appended snapshot to Redis with a TTL, so
// intraday history survives a restart for offline inspection. The
// in-memory window stays authoritative; mirror failures are logged and
// otherwise ignored.
type Mirror struct {
	cli *redis.Client
	ttl time.Duration
}

// NewMirror connects to Redis at the given URL. Returns an error if the
// URL does not parse; connectivity is checked lazily on first write.
func NewMirror(url string, ttl time.Duration) (*Mirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Mirror{cli: redis.NewClient(opts), ttl: ttl}, nil
}

// Write stores the snapshot under a per-minute key.
func (m *Mirror) Write(ctx context.Context, snap model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Msg("mirror: marshal snapshot")
		return
	}
	key := "niftypulse:snapshot:" + snap.Timestamp.Format("20060102T1504")
	if err := m.cli.Set(ctx, key, data, m.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("mirror: redis set")
	}
}

// Close releases the underlying client.
func (m *Mirror) Close() error { return m.cli.Close() }
