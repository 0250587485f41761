package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/backend"
	"storefront-service/internal/events"
	"storefront-service/internal/metrics"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/snapshot"
)

// CatalogRemote is the remote catalog table
type CatalogRemote interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	ProductExists(ctx context.Context, id string) (bool, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpsertProducts(ctx context.Context, products []models.Product) error
	InsertProductsIfAbsent(ctx context.Context, products []models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	DeleteAllProducts(ctx context.Context) error
}

// CatalogReplacer is implemented by remotes that can swap the whole catalog
// atomically
type CatalogReplacer interface {
	ReplaceAll(ctx context.Context, products []models.Product) error
}

// EventPublisher receives store change notifications
type EventPublisher interface {
	Publish(ctx context.Context, eventType, entityID string, data any)
}

// CatalogStore serves the product catalog from the remote store, with the
// local snapshot as fallback
type CatalogStore struct {
	mode   backend.Mode
	remote CatalogRemote
	local  snapshot.Store
	events EventPublisher
	logger *logrus.Entry
	ids    *idGenerator

	// mu serializes read-modify-write cycles on the local snapshot
	mu sync.Mutex
}

// NewCatalogStore builds a catalog store. remote may be nil in local mode and
// publisher may be nil when events are disabled.
func NewCatalogStore(mode backend.Mode, remote CatalogRemote, local snapshot.Store, publisher EventPublisher, logger *logrus.Logger) *CatalogStore {
	return &CatalogStore{
		mode:   mode,
		remote: remote,
		local:  local,
		events: publisher,
		logger: logger.WithField("component", "catalog-store"),
		ids:    newIDGenerator(time.Now),
	}
}

// GetAll returns the catalog, newest first. It never fails: remote errors fall
// back to the local snapshot and a missing snapshot to the default catalog.
func (s *CatalogStore) GetAll(ctx context.Context) []models.Product {
	if !s.mode.Remote() {
		return s.loadLocal(ctx)
	}
	return backend.ReadWithFallback(ctx, s.logger, "products", s.readRemote, s.loadLocal)
}

// Get returns one product by id
func (s *CatalogStore) Get(ctx context.Context, id string) (models.Product, error) {
	for _, p := range s.GetAll(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
}

// Add creates a product. An empty id is replaced by a generated one; a
// caller-supplied id that already exists is rejected before any write.
func (s *CatalogStore) Add(ctx context.Context, product models.Product) (models.Product, error) {
	product.ID = strings.TrimSpace(product.ID)
	if err := product.Validate(); err != nil {
		return models.Product{}, fmt.Errorf("%w: %w", repository.ErrInvalidProduct, err)
	}
	if product.ID == "" {
		product.ID = s.ids.Next()
	}

	if s.mode.Remote() {
		exists, err := s.remote.ProductExists(ctx, product.ID)
		if err != nil {
			return models.Product{}, remoteFailure("add product", err)
		}
		if exists {
			return models.Product{}, duplicateID(product.ID)
		}
		if err := s.remote.CreateProduct(ctx, &product); err != nil {
			return models.Product{}, remoteFailure("add product", err)
		}
	} else {
		err := s.modifyLocal(ctx, func(current []models.Product) ([]models.Product, error) {
			if indexOf(current, product.ID) >= 0 {
				return nil, duplicateID(product.ID)
			}
			now := time.Now().UTC()
			product.CreatedAt, product.UpdatedAt = now, now
			return append([]models.Product{product}, current...), nil
		})
		if err != nil {
			return models.Product{}, err
		}
	}

	s.logger.WithField("productID", product.ID).Info("Product added")
	s.publish(ctx, events.ProductCreated, product.ID, product)
	return product, nil
}

// Update upserts product by id
func (s *CatalogStore) Update(ctx context.Context, product models.Product) error {
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		return fmt.Errorf("%w: product id is required", repository.ErrInvalidProduct)
	}
	if err := product.Validate(); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrInvalidProduct, err)
	}

	if s.mode.Remote() {
		if err := s.remote.UpsertProducts(ctx, []models.Product{product}); err != nil {
			return remoteFailure("update product", err)
		}
	} else {
		err := s.modifyLocal(ctx, func(current []models.Product) ([]models.Product, error) {
			return mergeProducts(current, []models.Product{product}), nil
		})
		if err != nil {
			return err
		}
	}

	s.publish(ctx, events.ProductUpdated, product.ID, product)
	return nil
}

// Remove deletes a product. Removing an unknown id succeeds.
func (s *CatalogStore) Remove(ctx context.Context, id string) error {
	if s.mode.Remote() {
		if err := s.remote.DeleteProduct(ctx, id); err != nil {
			return remoteFailure("remove product", err)
		}
	} else {
		err := s.modifyLocal(ctx, func(current []models.Product) ([]models.Product, error) {
			kept := make([]models.Product, 0, len(current))
			for _, p := range current {
				if p.ID != id {
					kept = append(kept, p)
				}
			}
			return kept, nil
		})
		if err != nil {
			return err
		}
	}

	s.publish(ctx, events.ProductDeleted, id, nil)
	return nil
}

// ResetToDefaults replaces the catalog with the default products. Without a
// CatalogReplacer the delete and insert run separately, and a failed insert
// leaves the remote catalog empty.
func (s *CatalogStore) ResetToDefaults(ctx context.Context) error {
	defaults := models.DefaultProducts()

	if s.mode.Remote() {
		if replacer, ok := s.remote.(CatalogReplacer); ok {
			if err := replacer.ReplaceAll(ctx, defaults); err != nil {
				return remoteFailure("reset catalog", err)
			}
		} else {
			if err := s.remote.DeleteAllProducts(ctx); err != nil {
				return remoteFailure("reset catalog: delete phase", err)
			}
			if err := s.remote.UpsertProducts(ctx, defaults); err != nil {
				s.logger.WithError(err).Error("Catalog reset failed after delete, remote catalog is empty")
				return remoteFailure("reset catalog: insert phase", err)
			}
		}
	} else {
		err := s.modifyLocal(ctx, func([]models.Product) ([]models.Product, error) {
			return defaults, nil
		})
		if err != nil {
			return err
		}
	}

	s.logger.WithField("count", len(defaults)).Info("Catalog reset to defaults")
	s.publish(ctx, events.CatalogReset, "", len(defaults))
	return nil
}

// BulkImport upserts products by id. Products not named in the import are
// kept. The whole payload is validated before anything is written.
func (s *CatalogStore) BulkImport(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return fmt.Errorf("%w: no products to import", repository.ErrMalformedImport)
	}

	prepared := make([]models.Product, len(products))
	seen := make(map[string]int, len(products))
	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = s.ids.Next()
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %w", repository.ErrMalformedImport, i, err)
		}
		if first, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: items %d and %d share id %q", repository.ErrMalformedImport, first, i, p.ID)
		}
		seen[p.ID] = i
		prepared[i] = p
	}

	if s.mode.Remote() {
		if err := s.remote.UpsertProducts(ctx, prepared); err != nil {
			return remoteFailure("bulk import", err)
		}
	} else {
		err := s.modifyLocal(ctx, func(current []models.Product) ([]models.Product, error) {
			return mergeProducts(current, prepared), nil
		})
		if err != nil {
			return err
		}
	}

	ids := make([]string, len(prepared))
	for i, p := range prepared {
		ids[i] = p.ID
	}
	s.logger.WithField("count", len(prepared)).Info("Catalog imported")
	s.publish(ctx, events.CatalogImported, "", ids)
	return nil
}

// readRemote lists the remote catalog, seeding it when it has never been
// populated, and mirrors a successful read into the local snapshot
func (s *CatalogStore) readRemote(ctx context.Context) ([]models.Product, error) {
	products, err := s.remote.ListProducts(ctx)
	if err != nil {
		metrics.RemoteErrors.WithLabelValues("list_products").Inc()
		return nil, err
	}
	if len(products) == 0 {
		return s.seedRemote(ctx)
	}
	s.mirror(ctx, products)
	return products, nil
}

// seedRemote writes the default catalog into an empty remote. Emptiness is
// re-checked and ids that appeared meanwhile are skipped, so concurrent or
// repeated seeding never duplicates rows.
func (s *CatalogStore) seedRemote(ctx context.Context) ([]models.Product, error) {
	count, err := s.remote.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return s.remote.ListProducts(ctx)
	}

	defaults := models.DefaultProducts()
	if err := s.remote.InsertProductsIfAbsent(ctx, defaults); err != nil {
		return nil, err
	}
	s.logger.WithField("count", len(defaults)).Info("Remote catalog was empty, seeded defaults")
	s.mirror(ctx, defaults)
	return defaults, nil
}

// mirror refreshes the local snapshot from a remote read. Best effort.
func (s *CatalogStore) mirror(ctx context.Context, products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := snapshot.SaveJSON(ctx, s.local, snapshot.ProductsKey, products); err != nil {
		s.logger.WithError(err).Debug("Failed to mirror catalog into local snapshot")
	}
}

func (s *CatalogStore) loadLocal(ctx context.Context) []models.Product {
	products, ok, err := snapshot.LoadJSON[[]models.Product](ctx, s.local, snapshot.ProductsKey)
	if err != nil {
		s.logger.WithError(err).Warn("Local catalog snapshot unreadable, using defaults")
		return models.DefaultProducts()
	}
	if !ok {
		return models.DefaultProducts()
	}
	return products
}

// modifyLocal applies fn to the local catalog and saves the result
func (s *CatalogStore) modifyLocal(ctx context.Context, fn func([]models.Product) ([]models.Product, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(s.loadLocal(ctx))
	if err != nil {
		return err
	}
	if err := snapshot.SaveJSON(ctx, s.local, snapshot.ProductsKey, updated); err != nil {
		return fmt.Errorf("save local catalog: %w", err)
	}
	return nil
}

func (s *CatalogStore) publish(ctx context.Context, eventType, entityID string, data any) {
	if s.events != nil {
		s.events.Publish(ctx, eventType, entityID, data)
	}
}

// mergeProducts overwrites products in current that share an id with
// incoming, in place, and prepends the rest in incoming order
func mergeProducts(current, incoming []models.Product) []models.Product {
	merged := make([]models.Product, len(current))
	copy(merged, current)

	now := time.Now().UTC()
	var added []models.Product
	for _, p := range incoming {
		p.UpdatedAt = now
		if i := indexOf(merged, p.ID); i >= 0 {
			p.CreatedAt = merged[i].CreatedAt
			merged[i] = p
			continue
		}
		p.CreatedAt = now
		added = append(added, p)
	}
	return append(added, merged...)
}

func indexOf(products []models.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func duplicateID(id string) error {
	return fmt.Errorf("%w: product id %q already exists", repository.ErrValidationConflict, id)
}

// remoteFailure keeps classified store errors as they are and marks anything
// else as the remote being unavailable
func remoteFailure(op string, err error) error {
	for _, known := range []error{
		repository.ErrRemoteUnavailable,
		repository.ErrValidationConflict,
		repository.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, repository.ErrRemoteUnavailable, err)
}

// idGenerator hands out timestamp-derived ids that strictly increase within
// the process
type idGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) Next() string {
	for {
		prev := g.last.Load()
		next := g.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if g.last.CompareAndSwap(prev, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}
