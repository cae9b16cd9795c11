package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testCollection() core.Collection {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return core.Collection{
		"alice": {EmployeeID: "alice", Embedding: core.Embedding{0.1, 0.2}, RegisteredAt: now},
		"bob":   {EmployeeID: "bob", Embedding: core.Embedding{0.3, 0.4}, RegisteredAt: now},
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	collection := testCollection()

	require.NoError(t, store.SaveCollection(ctx, "org-1", collection))

	loaded, err := store.LoadCollection(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, collection.Len(), loaded.Len())
	assert.Equal(t, collection["bob"].Embedding, loaded["bob"].Embedding)
	assert.True(t, collection["bob"].RegisteredAt.Equal(loaded["bob"].RegisteredAt))
}

func TestLoadCollection_Absent(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadCollection(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTenantIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := core.Collection{
		"alice": {EmployeeID: "alice", Embedding: core.Embedding{1, 0}, RegisteredAt: time.Now().UTC()},
	}
	second := core.Collection{
		"alice": {EmployeeID: "alice", Embedding: core.Embedding{0, 1}, RegisteredAt: time.Now().UTC()},
	}
	require.NoError(t, store.SaveCollection(ctx, "org-a", first))
	require.NoError(t, store.SaveCollection(ctx, "org-b", second))

	loadedA, err := store.LoadCollection(ctx, "org-a")
	require.NoError(t, err)
	loadedB, err := store.LoadCollection(ctx, "org-b")
	require.NoError(t, err)
	assert.Equal(t, core.Embedding{1, 0}, loadedA["alice"].Embedding)
	assert.Equal(t, core.Embedding{0, 1}, loadedB["alice"].Embedding)
}

func TestDeleteCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCollection(ctx, "org-1", testCollection()))
	require.NoError(t, store.DeleteCollection(ctx, "org-1"))

	_, err := store.LoadCollection(ctx, "org-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Idempotent.
	assert.NoError(t, store.DeleteCollection(ctx, "org-1"))
}

func TestListOrganizations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	orgs, err := store.ListOrganizations(ctx)
	require.NoError(t, err)
	assert.Empty(t, orgs)

	require.NoError(t, store.SaveCollection(ctx, "org-b", testCollection()))
	require.NoError(t, store.SaveCollection(ctx, "org-a", testCollection()))
	require.NoError(t, store.SavePhoto(ctx, "org-c", "alice", []byte("x")))

	// Photo keys must not leak into the organization list.
	orgs, err = store.ListOrganizations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"org-a", "org-b"}, orgs)
}

func TestPhotoRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	photo := []byte("jpeg bytes")

	has, err := store.HasPhoto(ctx, "org-1", "alice")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.SavePhoto(ctx, "org-1", "alice", photo))

	has, err = store.HasPhoto(ctx, "org-1", "alice")
	require.NoError(t, err)
	assert.True(t, has)

	loaded, err := store.GetPhoto(ctx, "org-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, photo, loaded)

	require.NoError(t, store.DeletePhoto(ctx, "org-1", "alice"))
	_, err = store.GetPhoto(ctx, "org-1", "alice")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Idempotent.
	assert.NoError(t, store.DeletePhoto(ctx, "org-1", "alice"))
}

func TestClosedStore(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.LoadCollection(context.Background(), "org-1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestAmbiguousIDsRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A colon in either id would make the photo key for (org "a:b",
	// emp "c") collide with the one for (org "a", emp "b:c").
	err := store.SavePhoto(ctx, "a:b", "c", []byte("jpeg"))
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)
	err = store.SavePhoto(ctx, "a", "b:c", []byte("jpeg"))
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)

	visible, err := store.HasPhoto(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, visible)

	assert.ErrorIs(t, store.SaveCollection(ctx, "a:b", testCollection()), core.ErrReservedIDCharacter)
	_, err = store.LoadCollection(ctx, "a:b")
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)
	_, err = store.GetPhoto(ctx, "a", "b:c")
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)
}
