// Package cache puts a short-lived, shared copy of the public lobby listing
// in front of the durable session repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"yacht-dice/internal/game"
)

const (
	PublicSessionsKey = "sessions:public:waiting"
	DefaultTTL        = 15 * time.Second
)

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the key/value surface the decorator needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// PublicSessions serves FindPublicWaiting from the cache and delegates every
// other call to the wrapped repository. The listing may be up to one TTL
// stale; joins and starts do not invalidate it.
type PublicSessions struct {
	game.SessionRepository
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewPublicSessions(repo game.SessionRepository, store Store, ttl time.Duration, logger *slog.Logger) *PublicSessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicSessions{SessionRepository: repo, store: store, ttl: ttl, logger: logger}
}

func (p *PublicSessions) FindPublicWaiting(ctx context.Context) ([]game.Session, error) {
	raw, err := p.store.Get(ctx, PublicSessionsKey)
	switch {
	case err == nil:
		var sessions []game.Session
		decodeErr := json.Unmarshal(raw, &sessions)
		if decodeErr == nil {
			return sessions, nil
		}
		p.logger.Warn("discarding undecodable cache entry", "key", PublicSessionsKey, "error", decodeErr)
	case errors.Is(err, ErrMiss):
	default:
		p.logger.Warn("cache read failed", "key", PublicSessionsKey, "error", err)
	}

	sessions, err := p.SessionRepository.FindPublicWaiting(ctx)
	if err != nil {
		return nil, err
	}
	p.fill(ctx, sessions)
	return sessions, nil
}

func (p *PublicSessions) fill(ctx context.Context, sessions []game.Session) {
	if sessions == nil {
		sessions = []game.Session{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		p.logger.Warn("encode cache entry", "key", PublicSessionsKey, "error", err)
		return
	}
	if err := p.store.Set(ctx, PublicSessionsKey, payload, p.ttl); err != nil {
		p.logger.Warn("cache write failed", "key", PublicSessionsKey, "error", err)
	}
}
