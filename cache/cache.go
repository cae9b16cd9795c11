// Copyright 2025 CoreHive
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache keeps per-organization embedding collections in memory
// so matching never touches storage on the hot path.
//
// Entries are immutable snapshots: Get and Put clone, so callers can
// never mutate a cached collection in place. Concurrent misses for the
// same organization are collapsed into a single storage load.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

// CollectionCache caches collections loaded from a storage backend.
type CollectionCache struct {
	store  storage.CollectionStore
	logger *slog.Logger

	mu          sync.RWMutex
	collections map[string]core.Collection
	// generations counts Put and Invalidate calls per organization, so
	// a load that started before a concurrent write can tell its
	// snapshot is stale and must not be inserted.
	generations map[string]uint64

	loads singleflight.Group
}

// New creates a cache backed by the given store.
func New(store storage.CollectionStore, logger *slog.Logger) *CollectionCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionCache{
		store:       store,
		logger:      logger,
		collections: make(map[string]core.Collection),
		generations: make(map[string]uint64),
	}
}

// Get returns the organization's collection, loading it from storage on
// a miss. An organization with nothing stored yields an empty
// collection; absence is never cached, so a later registration is
// visible immediately. The returned collection is a private copy.
func (c *CollectionCache) Get(ctx context.Context, orgID string) (core.Collection, error) {
	c.mu.RLock()
	cached, ok := c.collections[orgID]
	c.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	// Collapse concurrent misses into one storage load.
	result, err, _ := c.loads.Do(orgID, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.collections[orgID]
		gen := c.generations[orgID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded, err := c.store.LoadCollection(ctx, orgID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return core.NewCollection(), nil
			}
			return nil, err
		}

		c.mu.Lock()
		if cached, ok := c.collections[orgID]; ok {
			// A writer put a newer snapshot while we were loading.
			c.mu.Unlock()
			return cached, nil
		}
		if c.generations[orgID] != gen {
			// Invalidated while we were loading; the snapshot may be
			// stale, so hand it to the caller without caching it.
			c.mu.Unlock()
			return loaded, nil
		}
		c.collections[orgID] = loaded
		c.mu.Unlock()
		c.logger.Debug("collection cached", "org", orgID, "employees", loaded.Len())
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(core.Collection).Clone(), nil
}

// Put replaces the cached snapshot for an organization. The collection
// is cloned on the way in.
func (c *CollectionCache) Put(orgID string, collection core.Collection) {
	snapshot := collection.Clone()
	c.mu.Lock()
	c.collections[orgID] = snapshot
	c.generations[orgID]++
	c.mu.Unlock()
}

// Invalidate drops the cached snapshot for an organization. The next
// Get reloads from storage.
func (c *CollectionCache) Invalidate(orgID string) {
	c.mu.Lock()
	delete(c.collections, orgID)
	c.generations[orgID]++
	c.mu.Unlock()
}

// Contains reports whether the organization is currently cached.
func (c *CollectionCache) Contains(orgID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.collections[orgID]
	return ok
}

// Organizations returns the IDs of all cached organizations.
func (c *CollectionCache) Organizations() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	orgs := make([]string, 0, len(c.collections))
	for orgID := range c.collections {
		orgs = append(orgs, orgID)
	}
	return orgs
}

// Len returns the number of cached organizations.
func (c *CollectionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.collections)
}
