package anubis

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/user"
)

// tokenKey keeps raw bearer tokens out of process memory maps.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type cachedPrincipal struct {
	key       string
	principal user.Principal
	expiresAt time.Time
}

// principalCache is a TTL cache of verified principals, bounded by evicting
// the least recently used entry. A non-positive ttl disables it.
type principalCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	limit   int
	order   *list.List // front is most recently used
	byKey   map[string]*list.Element
	nowFunc func() time.Time
}

func newPrincipalCache(ttl time.Duration, limit int) *principalCache {
	return &principalCache{
		ttl:     ttl,
		limit:   limit,
		order:   list.New(),
		byKey:   make(map[string]*list.Element),
		nowFunc: time.Now,
	}
}

func (c *principalCache) Get(key string) (user.Principal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		return user.Principal{}, false
	}
	item := el.Value.(*cachedPrincipal)
	if !c.nowFunc().Before(item.expiresAt) {
		c.remove(el)
		return user.Principal{}, false
	}
	c.order.MoveToFront(el)
	return item.principal, true
}

func (c *principalCache) Set(key string, principal user.Principal) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.nowFunc().Add(c.ttl)
	if el, ok := c.byKey[key]; ok {
		item := el.Value.(*cachedPrincipal)
		item.principal, item.expiresAt = principal, expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.byKey[key] = c.order.PushFront(&cachedPrincipal{key: key, principal: principal, expiresAt: expiresAt})
	for c.limit > 0 && c.order.Len() > c.limit {
		c.remove(c.order.Back())
	}
}

func (c *principalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *principalCache) remove(el *list.Element) {
	delete(c.byKey, el.Value.(*cachedPrincipal).key)
	c.order.Remove(el)
}
