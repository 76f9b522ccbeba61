package service

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist is a process-wide revocation set keyed by token. Entries are
// kept until the token would have expired anyway, then swept. State is local
// to a single instance; multi-instance deployments need a shared store.
type TokenBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{
		tokens: make(map[string]time.Time),
	}
}

func (b *TokenBlacklist) Revoke(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = expiresAt
}

func (b *TokenBlacklist) IsRevoked(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	expiresAt, ok := b.tokens[token]
	if !ok {
		return false
	}
	return time.Now().Before(expiresAt)
}

// StartSweeper removes expired entries on an interval until ctx is done.
func (b *TokenBlacklist) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.sweep()
			}
		}
	}()
}

func (b *TokenBlacklist) sweep() {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for token, expiresAt := range b.tokens {
		if now.After(expiresAt) {
			delete(b.tokens, token)
		}
	}
}
