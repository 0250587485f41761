package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

var errDown = errors.New("dial tcp: connection refused")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memoryStore is an in-memory snapshot.Store
type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, false, s.failErr
	}
	data, ok := s.data[key]
	return data, ok, nil
}

func (s *memoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

// fakeCatalogRemote keeps the catalog newest first, the order ListProducts
// returns. New rows from a batch keep their batch order at the front.
type fakeCatalogRemote struct {
	mu       sync.Mutex
	products []models.Product
	calls    map[string]int

	listErr   error
	writeErr  error
	upsertErr error
}

func newFakeCatalogRemote(products ...models.Product) *fakeCatalogRemote {
	return &fakeCatalogRemote{products: products, calls: make(map[string]int)}
}

func (f *fakeCatalogRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalogRemote) snapshot() []models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product(nil), f.products...)
}

func (f *fakeCatalogRemote) ListProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrRemoteUnavailable, f.listErr)
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeCatalogRemote) CountProducts(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["count"]++
	if f.listErr != nil {
		return 0, f.listErr
	}
	return int64(len(f.products)), nil
}

func (f *fakeCatalogRemote) ProductExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["exists"]++
	if f.listErr != nil {
		return false, f.listErr
	}
	return indexOf(f.products, id) >= 0, nil
}

func (f *fakeCatalogRemote) CreateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	if indexOf(f.products, product.ID) >= 0 {
		return fmt.Errorf("%w: duplicate key", repository.ErrValidationConflict)
	}
	f.products = append([]models.Product{*product}, f.products...)
	return nil
}

func (f *fakeCatalogRemote) UpsertProducts(_ context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["upsert"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.merge(products, true)
	return nil
}

func (f *fakeCatalogRemote) InsertProductsIfAbsent(_ context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["insert_if_absent"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.merge(products, false)
	return nil
}

func (f *fakeCatalogRemote) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	if i := indexOf(f.products, id); i >= 0 {
		f.products = append(f.products[:i], f.products[i+1:]...)
	}
	return nil
}

func (f *fakeCatalogRemote) DeleteAllProducts(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete_all"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.products = nil
	return nil
}

func (f *fakeCatalogRemote) merge(products []models.Product, overwrite bool) {
	var added []models.Product
	for _, p := range products {
		if i := indexOf(f.products, p.ID); i >= 0 {
			if overwrite {
				f.products[i] = p
			}
			continue
		}
		added = append(added, p)
	}
	f.products = append(added, f.products...)
}

// replacingRemote also implements CatalogReplacer
type replacingRemote struct {
	*fakeCatalogRemote
}

func (r replacingRemote) ReplaceAll(_ context.Context, products []models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["replace_all"]++
	if r.writeErr != nil {
		return r.writeErr
	}
	r.products = append([]models.Product(nil), products...)
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(_ context.Context, eventType, entityID string, _ any) {
	m.Called(eventType, entityID)
}

type mockOrderRemote struct {
	mock.Mock
}

func (m *mockOrderRemote) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRemote) InsertOrdersIfAbsent(ctx context.Context, orders []models.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *mockOrderRemote) ListOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if orders := args.Get(0); orders != nil {
		return orders.([]models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRemote) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRemote) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
