// Package domain contains the core business entities and value objects.
package domain

import (
	"math/rand"
	"sync/atomic"
)

// KeyPool owns the ordered key list for a single provider and the
// cross-request "last-failed-key" hint. A KeyPool is safe for concurrent
// use: NewContext snapshots the key list and every request thereafter
// operates on its own copy via RequestContext.
type KeyPool struct {
	keys []string

	// lastFailedKey is a single nullable hint shared across requests,
	// updated last-writer-wins at the end of every rotation loop.
	// A nil pointer means "no hint"; atomic.Pointer keeps reads lock-free.
	lastFailedKey atomic.Pointer[string]
}

// NewKeyPool creates a KeyPool over the given keys. Empty keys are
// dropped; the resulting pool may legitimately have zero keys, which
// Client.MakeRequest surfaces as ErrProviderNotConfigured.
func NewKeyPool(keys []string) *KeyPool {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return &KeyPool{keys: cleaned}
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// PoolStats is a snapshot of a pool's health for the admin stats endpoint.
type PoolStats struct {
	KeyCount         int  `json:"key_count"`
	HasLastFailedKey bool `json:"has_last_failed_key"`
}

// Stats returns a point-in-time snapshot of the pool's size and whether
// it currently carries a last-failed-key hint.
func (p *KeyPool) Stats() PoolStats {
	return PoolStats{
		KeyCount:         len(p.keys),
		HasLastFailedKey: p.lastFailedKey.Load() != nil,
	}
}

// UpdateLastFailedKey atomically sets the pool's last-failed-key hint.
// Passing an empty string clears the hint.
func (p *KeyPool) UpdateLastFailedKey(key string) {
	if key == "" {
		p.lastFailedKey.Store(nil)
		return
	}
	k := key
	p.lastFailedKey.Store(&k)
}

// NewContext produces a fresh per-request RequestContext via the smart
// shuffle: a Fisher-Yates permutation of the pool's keys with the
// last-failed-key (if present in the pool) demoted to the tail.
func (p *KeyPool) NewContext() *RequestContext {
	order := make([]string, len(p.keys))
	copy(order, p.keys)

	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	if hint := p.lastFailedKey.Load(); hint != nil {
		order = demoteToTail(order, *hint)
	}

	return &RequestContext{
		attemptOrder: order,
		tried:        make(map[string]struct{}, len(order)),
		rateLimited:  make(map[string]struct{}, len(order)),
	}
}

// demoteToTail removes key from order (if present) and appends it at the
// end, preserving the relative order of everything else.
func demoteToTail(order []string, key string) []string {
	idx := -1
	for i, k := range order {
		if k == key {
			idx = i
			break
		}
	}
	if idx == -1 {
		return order
	}
	result := make([]string, 0, len(order))
	result = append(result, order[:idx]...)
	result = append(result, order[idx+1:]...)
	result = append(result, key)
	return result
}
