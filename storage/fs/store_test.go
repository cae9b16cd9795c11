package fs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
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

func TestNewStore_EmptyRoot(t *testing.T) {
	_, err := NewStore("", nil)
	assert.Error(t, err)
}

func TestCollectionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	collection := testCollection()

	require.NoError(t, store.SaveCollection(ctx, "org-1", collection))

	loaded, err := store.LoadCollection(ctx, "org-1")
	require.NoError(t, err)
	require.Equal(t, collection.Len(), loaded.Len())
	assert.Equal(t, collection["alice"].Embedding, loaded["alice"].Embedding)
}

func TestLoadCollection_Absent(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadCollection(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveCollection_Overwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCollection(ctx, "org-1", testCollection()))

	smaller := core.Collection{
		"carol": {EmployeeID: "carol", Embedding: core.Embedding{1, 1}, RegisteredAt: time.Now().UTC()},
	}
	require.NoError(t, store.SaveCollection(ctx, "org-1", smaller))

	loaded, err := store.LoadCollection(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.Contains(t, loaded, "carol")
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
	store := newTestStore(t)
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, err := store.LoadCollection(ctx, "org-1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.SaveCollection(ctx, "org-1", testCollection()), storage.ErrStorageClosed)
}

func TestValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveCollection(ctx, "", testCollection()), core.ErrEmptyOrganizationID)
	assert.ErrorIs(t, store.SavePhoto(ctx, "org-1", "", nil), core.ErrEmptyEmployeeID)
}

func TestTraversalIDsRejected(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "data")
	store, err := NewStore(root, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	// An employee id with a path component must never land in another
	// organization's photo directory.
	err = store.SavePhoto(ctx, "org-a", "../org-b/victim", []byte("jpeg"))
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)

	visible, err := store.HasPhoto(ctx, "org-b", "victim")
	require.NoError(t, err)
	assert.False(t, visible)

	// An org id with traversal components must never write outside the
	// data directory.
	err = store.SaveCollection(ctx, "../../escaped", testCollection())
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)
	assert.NoFileExists(t, filepath.Join(parent, "escaped.bin"))

	_, err = store.LoadCollection(ctx, "../../escaped")
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)
	_, err = store.GetPhoto(ctx, "org-a", "../org-b/victim")
	assert.ErrorIs(t, err, core.ErrReservedIDCharacter)
	assert.ErrorIs(t, store.DeletePhoto(ctx, "org-a", ".."), core.ErrReservedIDCharacter)
}
