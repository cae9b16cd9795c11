package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

// countingStore is a CollectionStore that records load traffic.
type countingStore struct {
	mu          sync.Mutex
	collections map[string]core.Collection
	loadCount   atomic.Int64
	loadDelay   time.Duration
	failLoads   bool

	// When set, LoadCollection announces itself on loadStarted and then
	// blocks until loadGate is closed.
	loadStarted chan struct{}
	loadGate    chan struct{}
}

func newCountingStore() *countingStore {
	return &countingStore{collections: make(map[string]core.Collection)}
}

func (s *countingStore) SaveCollection(ctx context.Context, orgID string, collection core.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[orgID] = collection.Clone()
	return nil
}

func (s *countingStore) LoadCollection(ctx context.Context, orgID string) (core.Collection, error) {
	s.loadCount.Add(1)
	if s.loadDelay > 0 {
		time.Sleep(s.loadDelay)
	}
	if s.loadStarted != nil {
		s.loadStarted <- struct{}{}
	}
	if s.loadGate != nil {
		<-s.loadGate
	}
	if s.failLoads {
		return nil, fmt.Errorf("load %s: %w", orgID, storage.ErrUnavailable)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	collection, ok := s.collections[orgID]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", orgID, storage.ErrNotFound)
	}
	return collection.Clone(), nil
}

func (s *countingStore) DeleteCollection(ctx context.Context, orgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, orgID)
	return nil
}

func (s *countingStore) ListOrganizations(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orgs := make([]string, 0, len(s.collections))
	for orgID := range s.collections {
		orgs = append(orgs, orgID)
	}
	return orgs, nil
}

var _ storage.CollectionStore = (*countingStore)(nil)

func seedCollection() core.Collection {
	return core.Collection{
		"alice": {EmployeeID: "alice", Embedding: core.Embedding{1, 0}, RegisteredAt: time.Now().UTC()},
	}
}

func TestGet_LoadsOnceThenHits(t *testing.T) {
	store := newCountingStore()
	require.NoError(t, store.SaveCollection(context.Background(), "org-1", seedCollection()))

	c := New(store, nil)
	ctx := context.Background()

	first, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	for i := 0; i < 5; i++ {
		_, err := c.Get(ctx, "org-1")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), store.loadCount.Load())
}

func TestGet_AbsentYieldsEmptyAndIsNotCached(t *testing.T) {
	store := newCountingStore()
	c := New(store, nil)
	ctx := context.Background()

	collection, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 0, collection.Len())
	assert.False(t, c.Contains("org-1"))

	// A registration after the miss must be visible on the next Get.
	require.NoError(t, store.SaveCollection(ctx, "org-1", seedCollection()))
	collection, err = c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, collection.Len())
}

func TestGet_StorageFailurePropagates(t *testing.T) {
	store := newCountingStore()
	store.failLoads = true
	c := New(store, nil)

	_, err := c.Get(context.Background(), "org-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.False(t, c.Contains("org-1"))
}

func TestGet_ConcurrentMissesCollapse(t *testing.T) {
	store := newCountingStore()
	store.loadDelay = 20 * time.Millisecond
	require.NoError(t, store.SaveCollection(context.Background(), "org-1", seedCollection()))

	c := New(store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collection, err := c.Get(ctx, "org-1")
			assert.NoError(t, err)
			assert.Equal(t, 1, collection.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), store.loadCount.Load())
}

func TestGet_LoadDoesNotOverwriteNewerPut(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()
	require.NoError(t, store.SaveCollection(ctx, "org-1", seedCollection()))
	store.loadStarted = make(chan struct{})
	store.loadGate = make(chan struct{})

	c := New(store, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(ctx, "org-1")
	}()
	<-store.loadStarted

	// A writer lands a newer snapshot while the load is in flight.
	newer := seedCollection()
	newer["carol"] = &core.EmployeeRecord{EmployeeID: "carol", Embedding: core.Embedding{0, 1}}
	c.Put("org-1", newer)

	close(store.loadGate)
	<-done

	got, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Contains(t, got, "carol")
	assert.Equal(t, int64(1), store.loadCount.Load())
}

func TestGet_InvalidateDuringLoadDropsSnapshot(t *testing.T) {
	store := newCountingStore()
	ctx := context.Background()
	require.NoError(t, store.SaveCollection(ctx, "org-1", seedCollection()))
	store.loadStarted = make(chan struct{})
	store.loadGate = make(chan struct{})

	c := New(store, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(ctx, "org-1")
	}()
	<-store.loadStarted

	c.Invalidate("org-1")
	close(store.loadGate)
	<-done

	// The invalidated snapshot must not have been cached.
	assert.False(t, c.Contains("org-1"))

	store.loadStarted = nil
	store.loadGate = nil
	_, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.loadCount.Load())
}

func TestGet_ReturnsPrivateCopy(t *testing.T) {
	store := newCountingStore()
	require.NoError(t, store.SaveCollection(context.Background(), "org-1", seedCollection()))

	c := New(store, nil)
	ctx := context.Background()

	first, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	first["mallory"] = &core.EmployeeRecord{EmployeeID: "mallory"}
	first["alice"].Embedding[0] = 99

	second, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Len())
	assert.Equal(t, core.Embedding{1, 0}, second["alice"].Embedding)
}

func TestPutAndInvalidate(t *testing.T) {
	store := newCountingStore()
	c := New(store, nil)
	ctx := context.Background()

	c.Put("org-1", seedCollection())
	assert.True(t, c.Contains("org-1"))
	assert.Equal(t, 1, c.Len())

	collection, err := c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, collection.Len())
	assert.Equal(t, int64(0), store.loadCount.Load())

	c.Invalidate("org-1")
	assert.False(t, c.Contains("org-1"))

	// Next Get goes back to storage.
	_, err = c.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), store.loadCount.Load())
}

func TestOrganizations(t *testing.T) {
	store := newCountingStore()
	c := New(store, nil)

	c.Put("org-b", seedCollection())
	c.Put("org-a", seedCollection())

	orgs := c.Organizations()
	assert.ElementsMatch(t, []string{"org-a", "org-b"}, orgs)
}
