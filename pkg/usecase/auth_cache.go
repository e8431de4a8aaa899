package usecase

import (
	"crypto/sha256"
	"sync"
	"time"

	"github.com/secmon-lab/argus/pkg/domain/model"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedActor struct {
	actor     model.Actor
	expiresAt time.Time
}

// authCache remembers verified tokens by digest so repeated requests skip
// signature verification.
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(token string) (model.Actor, bool) {
	key := sha256.Sum256([]byte(token))
	val, ok := c.cache.Load(key)
	if !ok {
		return model.Actor{}, false
	}

	cached := val.(*cachedActor)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(key)
		return model.Actor{}, false
	}

	return cached.actor, true
}

// set caches the actor until the token expires, at most authCacheTTL
func (c *authCache) set(token string, actor model.Actor, tokenExpiry time.Time) {
	expiresAt := time.Now().Add(authCacheTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}

	c.cache.Store(sha256.Sum256([]byte(token)), &cachedActor{
		actor:     actor,
		expiresAt: expiresAt,
	})
}
