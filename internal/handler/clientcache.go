package handler

import (
	"net/http"
	"strings"
	"sync"

	"github.com/relaykit/relaykit/internal/config"
	"github.com/relaykit/relaykit/internal/domain"
	"github.com/relaykit/relaykit/internal/upstream"
)

// ClientCache lazily builds and caches one upstream.Client per provider
// name, keyed case-insensitively. Clear is called on every configuration
// reload; two concurrent rebuilds of the same provider after a Clear are
// tolerated — the last writer wins and both instances are behaviorally
// equivalent, since they're built from the same snapshot.
type ClientCache struct {
	mu      sync.RWMutex
	clients map[string]*upstream.Client
	http    *http.Client
}

// NewClientCache creates an empty cache. A zero-value http.Client is
// substituted when httpClient is nil.
func NewClientCache(httpClient *http.Client) *ClientCache {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ClientCache{
		clients: make(map[string]*upstream.Client),
		http:    httpClient,
	}
}

// Get returns the cached client for p, building and caching one on the
// first request for that provider since the last Clear.
func (c *ClientCache) Get(p config.ProviderConfig) *upstream.Client {
	lname := strings.ToLower(p.Name)

	c.mu.RLock()
	client, ok := c.clients[lname]
	c.mu.RUnlock()
	if ok {
		return client
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[lname]; ok {
		return client
	}

	client = upstream.NewClient(p.Flavor, p.BaseURL, domain.NewKeyPool(p.Keys), c.http).WithName(p.Name)
	c.clients[lname] = client
	return client
}

// Clear empties the cache so the next Get for each provider rebuilds its
// client from the latest configuration snapshot.
func (c *ClientCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = make(map[string]*upstream.Client)
}

// Size reports the number of cached clients, for tests and diagnostics.
func (c *ClientCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}
