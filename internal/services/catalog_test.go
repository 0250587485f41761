package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/backend"
	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/snapshot"
)

func newLocalCatalog(t *testing.T) (*CatalogStore, *memoryStore) {
	t.Helper()
	local := newMemoryStore()
	return NewCatalogStore(backend.ModeLocal, nil, local, nil, quietLogger()), local
}

func newRemoteCatalog(t *testing.T, remote CatalogRemote) (*CatalogStore, *memoryStore) {
	t.Helper()
	local := newMemoryStore()
	return NewCatalogStore(backend.ModeRemote, remote, local, nil, quietLogger()), local
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func defaultIDs() []string {
	return ids(models.DefaultProducts())
}

func product(id, name, price string) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: models.CategoryRings,
		Material: "Stainless Steel",
	}
}

func TestCatalogStore_LocalGetAllDefaultsWhenEmpty(t *testing.T) {
	store, _ := newLocalCatalog(t)

	assert.Equal(t, defaultIDs(), ids(store.GetAll(context.Background())))
}

func TestCatalogStore_LocalGetAllDefaultsWhenCorrupt(t *testing.T) {
	store, local := newLocalCatalog(t)
	local.data[snapshot.ProductsKey] = []byte("not json")

	assert.Equal(t, defaultIDs(), ids(store.GetAll(context.Background())))
}

func TestCatalogStore_AddGeneratesID(t *testing.T) {
	for _, mode := range []backend.Mode{backend.ModeLocal, backend.ModeRemote} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := NewCatalogStore(mode, newFakeCatalogRemote(models.DefaultProducts()...), newMemoryStore(), nil, quietLogger())

			first, err := store.Add(ctx, product("", "Anello Onda", "7.00"))
			require.NoError(t, err)
			second, err := store.Add(ctx, product("", "Anello Nodo", "7.50"))
			require.NoError(t, err)

			assert.NotEmpty(t, first.ID)
			assert.NotEqual(t, first.ID, second.ID)

			all := ids(store.GetAll(ctx))
			assert.Contains(t, all, first.ID)
			assert.Contains(t, all, second.ID)
			assert.Equal(t, second.ID, all[0])
		})
	}
}

func TestCatalogStore_AddDuplicateIDRejectedBeforeWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("remote", func(t *testing.T) {
		remote := newFakeCatalogRemote(models.DefaultProducts()...)
		store, _ := newRemoteCatalog(t, remote)
		before := remote.snapshot()

		_, err := store.Add(ctx, product("3", "Impostore", "1.00"))

		assert.ErrorIs(t, err, repository.ErrValidationConflict)
		assert.Zero(t, remote.count("create"))
		assert.Equal(t, before, remote.snapshot())
	})

	t.Run("local", func(t *testing.T) {
		store, _ := newLocalCatalog(t)
		before := store.GetAll(ctx)

		_, err := store.Add(ctx, product("3", "Impostore", "1.00"))

		assert.ErrorIs(t, err, repository.ErrValidationConflict)
		assert.Equal(t, before, store.GetAll(ctx))
	})
}

func TestCatalogStore_AddDuplicateCaughtByBackend(t *testing.T) {
	remote := &racingRemote{fakeCatalogRemote: newFakeCatalogRemote(product("A1", "Anello", "10.00"))}
	store, _ := newRemoteCatalog(t, remote)

	_, err := store.Add(context.Background(), product("A1", "Anello", "10.00"))

	assert.ErrorIs(t, err, repository.ErrValidationConflict)
	assert.Len(t, remote.snapshot(), 1)
}

// racingRemote misses the existence check, as if a concurrent add landed
// between the check and the insert
type racingRemote struct {
	*fakeCatalogRemote
}

func (racingRemote) ProductExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestCatalogStore_AddValidates(t *testing.T) {
	store, _ := newLocalCatalog(t)

	bad := product("", "Anello", "5.00")
	bad.Category = "Orologi"
	_, err := store.Add(context.Background(), bad)
	assert.ErrorIs(t, err, repository.ErrInvalidProduct)

	_, err = store.Add(context.Background(), product("", "Anello", "-1"))
	assert.ErrorIs(t, err, repository.ErrInvalidProduct)

	_, err = store.Add(context.Background(), product("", " ", "1"))
	assert.ErrorIs(t, err, repository.ErrInvalidProduct)
}

func TestCatalogStore_AddRemoteUnavailable(t *testing.T) {
	remote := newFakeCatalogRemote()
	remote.writeErr = errDown
	store, _ := newRemoteCatalog(t, remote)

	_, err := store.Add(context.Background(), product("", "Anello", "5.00"))

	assert.ErrorIs(t, err, repository.ErrRemoteUnavailable)
}

func TestCatalogStore_ResetToDefaultsIsRepeatable(t *testing.T) {
	remotes := map[string]func() CatalogRemote{
		"two-phase":     func() CatalogRemote { return newFakeCatalogRemote(product("X", "Extra", "1.00")) },
		"transactional": func() CatalogRemote { return replacingRemote{newFakeCatalogRemote(product("X", "Extra", "1.00"))} },
	}

	for name, newRemote := range remotes {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, _ := newRemoteCatalog(t, newRemote())

			for i := 0; i < 3; i++ {
				require.NoError(t, store.ResetToDefaults(ctx))
				assert.Equal(t, defaultIDs(), ids(store.GetAll(ctx)))
			}
		})
	}

	t.Run("local", func(t *testing.T) {
		ctx := context.Background()
		store, _ := newLocalCatalog(t)
		_, err := store.Add(ctx, product("", "Extra", "1.00"))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, store.ResetToDefaults(ctx))
			assert.Equal(t, defaultIDs(), ids(store.GetAll(ctx)))
		}
	})
}

func TestCatalogStore_ResetUsesTransactionWhenAvailable(t *testing.T) {
	remote := replacingRemote{newFakeCatalogRemote()}
	store, _ := newRemoteCatalog(t, remote)

	require.NoError(t, store.ResetToDefaults(context.Background()))

	assert.Equal(t, 1, remote.count("replace_all"))
	assert.Zero(t, remote.count("delete_all"))
}

func TestCatalogStore_ResetInsertFailureLeavesCatalogEmpty(t *testing.T) {
	remote := newFakeCatalogRemote(models.DefaultProducts()...)
	remote.upsertErr = errDown
	store, _ := newRemoteCatalog(t, remote)

	err := store.ResetToDefaults(context.Background())

	assert.ErrorIs(t, err, repository.ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "insert phase")
	assert.Empty(t, remote.snapshot())
}

func TestCatalogStore_BulkImportMerges(t *testing.T) {
	for _, mode := range []backend.Mode{backend.ModeLocal, backend.ModeRemote} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := NewCatalogStore(mode, newFakeCatalogRemote(models.DefaultProducts()...), newMemoryStore(), nil, quietLogger())

			imported := []models.Product{
				product("P1", "Anello Uno", "5.00"),
				product("P2", "Anello Due", "6.00"),
				product("2", "Set Anelli Gold Stack", "9.00"),
			}
			require.NoError(t, store.BulkImport(ctx, imported))

			all := store.GetAll(ctx)
			got := ids(all)
			for _, id := range append(defaultIDs(), "P1", "P2") {
				assert.Contains(t, got, id)
			}
			assert.Len(t, all, 11)

			updated, err := store.Get(ctx, "2")
			require.NoError(t, err)
			assert.True(t, updated.Price.Equal(decimal.RequireFromString("9.00")))
		})
	}
}

func TestCatalogStore_BulkImportRejectsMalformedPayload(t *testing.T) {
	ctx := context.Background()
	remote := newFakeCatalogRemote(models.DefaultProducts()...)
	store, _ := newRemoteCatalog(t, remote)

	bad := product("P1", "Anello", "5.00")
	bad.Category = ""
	tests := map[string][]models.Product{
		"empty":         nil,
		"invalid item":  {product("P0", "Ok", "1.00"), bad},
		"duplicate ids": {product("P1", "Uno", "1.00"), product("P1", "Due", "2.00")},
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			err := store.BulkImport(ctx, payload)
			assert.ErrorIs(t, err, repository.ErrMalformedImport)
		})
	}
	assert.Zero(t, remote.count("upsert"))
}

func TestCatalogStore_UpdateOverwritesInPlace(t *testing.T) {
	for _, mode := range []backend.Mode{backend.ModeLocal, backend.ModeRemote} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := NewCatalogStore(mode, newFakeCatalogRemote(models.DefaultProducts()...), newMemoryStore(), nil, quietLogger())
			_, err := store.Add(ctx, product("A1", "Anello A1", "10.00"))
			require.NoError(t, err)

			require.NoError(t, store.Update(ctx, product("A1", "Anello A1", "15.00")))

			var matches []models.Product
			for _, p := range store.GetAll(ctx) {
				if p.ID == "A1" {
					matches = append(matches, p)
				}
			}
			require.Len(t, matches, 1)
			assert.Equal(t, "15.00", matches[0].Price.StringFixed(2))
		})
	}
}

func TestCatalogStore_UpdateTrimsID(t *testing.T) {
	for _, mode := range []backend.Mode{backend.ModeLocal, backend.ModeRemote} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := NewCatalogStore(mode, newFakeCatalogRemote(models.DefaultProducts()...), newMemoryStore(), nil, quietLogger())
			_, err := store.Add(ctx, product("A1", "Anello A1", "10.00"))
			require.NoError(t, err)

			require.NoError(t, store.Update(ctx, product(" A1 ", "Anello A1", "15.00")))

			all := store.GetAll(ctx)
			assert.NotContains(t, ids(all), " A1 ")
			var matches []models.Product
			for _, p := range all {
				if p.ID == "A1" {
					matches = append(matches, p)
				}
			}
			require.Len(t, matches, 1)
			assert.Equal(t, "15.00", matches[0].Price.StringFixed(2))
		})
	}
}

func TestCatalogStore_UpdateSurfacesRemoteFailure(t *testing.T) {
	remote := newFakeCatalogRemote(product("A1", "Anello", "10.00"))
	remote.writeErr = errDown
	store, _ := newRemoteCatalog(t, remote)

	err := store.Update(context.Background(), product("A1", "Anello", "15.00"))

	assert.ErrorIs(t, err, repository.ErrRemoteUnavailable)
}

func TestCatalogStore_UpdateRequiresID(t *testing.T) {
	store, _ := newLocalCatalog(t)

	err := store.Update(context.Background(), product("", "Anello", "1.00"))

	assert.ErrorIs(t, err, repository.ErrInvalidProduct)
}

func TestCatalogStore_RemoveIsIdempotent(t *testing.T) {
	for _, mode := range []backend.Mode{backend.ModeLocal, backend.ModeRemote} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := NewCatalogStore(mode, newFakeCatalogRemote(models.DefaultProducts()...), newMemoryStore(), nil, quietLogger())

			require.NoError(t, store.Remove(ctx, "4"))
			require.NoError(t, store.Remove(ctx, "4"))
			require.NoError(t, store.Remove(ctx, "does-not-exist"))

			assert.NotContains(t, ids(store.GetAll(ctx)), "4")
			assert.Len(t, store.GetAll(ctx), 8)
		})
	}
}

func TestCatalogStore_GetAllFallsBackToMirroredSnapshot(t *testing.T) {
	ctx := context.Background()
	remote := newFakeCatalogRemote(product("B", "Bracciale", "3.00"), product("A", "Anello", "2.00"))
	store, _ := newRemoteCatalog(t, remote)

	assert.Equal(t, []string{"B", "A"}, ids(store.GetAll(ctx)))

	remote.listErr = errDown
	assert.Equal(t, []string{"B", "A"}, ids(store.GetAll(ctx)))
}

func TestCatalogStore_GetAllFallsBackToDefaults(t *testing.T) {
	remote := newFakeCatalogRemote()
	remote.listErr = errDown
	store, _ := newRemoteCatalog(t, remote)

	assert.Equal(t, defaultIDs(), ids(store.GetAll(context.Background())))
}

func TestCatalogStore_AutoSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	remote := newFakeCatalogRemote()
	store, _ := newRemoteCatalog(t, remote)

	assert.Equal(t, defaultIDs(), ids(store.GetAll(ctx)))
	assert.Equal(t, defaultIDs(), ids(store.GetAll(ctx)))

	assert.Equal(t, 1, remote.count("insert_if_absent"))
	assert.Len(t, remote.snapshot(), len(models.DefaultProducts()))
}

func TestCatalogStore_AutoSeedSkipsWhenRowsAppear(t *testing.T) {
	ctx := context.Background()
	remote := &lateRowsRemote{fakeCatalogRemote: newFakeCatalogRemote()}
	store, _ := newRemoteCatalog(t, remote)

	got := store.GetAll(ctx)

	assert.Equal(t, []string{"late"}, ids(got))
	assert.Zero(t, remote.count("insert_if_absent"))
}

// lateRowsRemote lists empty once, then a row appears before the count
type lateRowsRemote struct {
	*fakeCatalogRemote
}

func (r *lateRowsRemote) CountProducts(ctx context.Context) (int64, error) {
	r.mu.Lock()
	r.products = []models.Product{product("late", "Arrivato", "1.00")}
	r.mu.Unlock()
	return r.fakeCatalogRemote.CountProducts(ctx)
}

func TestCatalogStore_GetNotFound(t *testing.T) {
	store, _ := newLocalCatalog(t)

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCatalogStore_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	publisher := &mockPublisher{}
	publisher.On("Publish", events.ProductCreated, "A1").Once()
	publisher.On("Publish", events.ProductUpdated, "A1").Once()
	publisher.On("Publish", events.ProductDeleted, "A1").Once()
	publisher.On("Publish", events.CatalogReset, "").Once()
	publisher.On("Publish", events.CatalogImported, "").Once()

	store := NewCatalogStore(backend.ModeLocal, nil, newMemoryStore(), publisher, quietLogger())

	_, err := store.Add(ctx, product("A1", "Anello", "10.00"))
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, product("A1", "Anello", "12.00")))
	require.NoError(t, store.Remove(ctx, "A1"))
	require.NoError(t, store.ResetToDefaults(ctx))
	require.NoError(t, store.BulkImport(ctx, []models.Product{product("B1", "Bracciale", "4.00")}))

	publisher.AssertExpectations(t)
}

func TestCatalogStore_NoEventOnFailedWrite(t *testing.T) {
	publisher := &mockPublisher{}
	remote := newFakeCatalogRemote()
	remote.writeErr = errDown
	store := NewCatalogStore(backend.ModeRemote, remote, newMemoryStore(), publisher, quietLogger())

	_ = store.Remove(context.Background(), "1")

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestIDGenerator_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	gen := newIDGenerator(func() time.Time { return fixed })

	assert.Equal(t, "1700000000000", gen.Next())
	assert.Equal(t, "1700000000001", gen.Next())
	assert.Equal(t, "1700000000002", gen.Next())
}
