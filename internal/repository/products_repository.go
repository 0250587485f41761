package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-service/internal/models"
	"storefront-service/internal/tracing"
)

// Cache TTL constants
const (
	ProductListCacheTTL = 2 * time.Minute // Product list cache (short, admin edits are frequent)
)

const productListCacheKey = "storefront:products:list"

// upsertColumns are overwritten when an upsert hits an existing id.
// created_at is kept so the catalog order does not shift on edit.
var upsertColumns = []string{"name", "price", "category", "material", "description", "image", "updated_at"}

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewProductsRepository creates the remote catalog repository. redis may be nil,
// in which case list reads always hit the database.
func NewProductsRepository(db *gorm.DB, redis *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redis,
	}
}

// invalidateListCache drops the cached catalog list
func (r *ProductsRepository) invalidateListCache(ctx context.Context) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, productListCacheKey).Err()
}

// ListProducts returns the whole catalog, newest first
func (r *ProductsRepository) ListProducts(ctx context.Context) (products []models.Product, err error) {
	ctx, span := tracing.Start(ctx, "ProductsRepository.ListProducts")
	defer func() { tracing.End(span, err) }()

	if r.redis != nil {
		val, cacheErr := r.redis.Get(ctx, productListCacheKey).Result()
		if cacheErr == nil {
			var cached []models.Product
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&products).Error; err != nil {
		return nil, classify("list products", err)
	}

	if r.redis != nil && len(products) > 0 {
		if data, err := json.Marshal(products); err == nil {
			r.redis.Set(ctx, productListCacheKey, data, ProductListCacheTTL)
		}
	}

	return products, nil
}

// CountProducts returns the number of catalog rows
func (r *ProductsRepository) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, classify("count products", err)
	}
	return total, nil
}

// ProductExists reports whether a product with id is stored
func (r *ProductsRepository) ProductExists(ctx context.Context, id string) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&total).Error; err != nil {
		return false, classify("check product", err)
	}
	return total > 0, nil
}

// CreateProduct inserts a new product. An existing id fails with
// ErrValidationConflict through the primary key.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *models.Product) (err error) {
	ctx, span := tracing.Start(ctx, "ProductsRepository.CreateProduct")
	defer func() { tracing.End(span, err) }()

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return classify("create product", err)
	}
	r.invalidateListCache(ctx)
	return nil
}

// UpsertProducts creates or overwrites products matched by id
func (r *ProductsRepository) UpsertProducts(ctx context.Context, products []models.Product) (err error) {
	if len(products) == 0 {
		return nil
	}
	ctx, span := tracing.Start(ctx, "ProductsRepository.UpsertProducts")
	defer func() { tracing.End(span, err) }()

	rows := stamp(products)
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&rows).Error
	if err != nil {
		return classify("upsert products", err)
	}
	r.invalidateListCache(ctx)
	return nil
}

// InsertProductsIfAbsent inserts products, skipping ids that already exist
func (r *ProductsRepository) InsertProductsIfAbsent(ctx context.Context, products []models.Product) (err error) {
	if len(products) == 0 {
		return nil
	}
	ctx, span := tracing.Start(ctx, "ProductsRepository.InsertProductsIfAbsent")
	defer func() { tracing.End(span, err) }()

	rows := stamp(products)
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return classify("seed products", err)
	}
	r.invalidateListCache(ctx)
	return nil
}

// DeleteProduct removes a product. Deleting a missing id is not an error.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
	if err != nil {
		return classify("delete product", err)
	}
	r.invalidateListCache(ctx)
	return nil
}

// DeleteAllProducts empties the catalog table
func (r *ProductsRepository) DeleteAllProducts(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error
	if err != nil {
		return classify("delete all products", err)
	}
	r.invalidateListCache(ctx)
	return nil
}

// ReplaceAll swaps the whole catalog for products in one transaction, so a
// failed insert leaves the previous catalog in place
func (r *ProductsRepository) ReplaceAll(ctx context.Context, products []models.Product) (err error) {
	ctx, span := tracing.Start(ctx, "ProductsRepository.ReplaceAll")
	defer func() { tracing.End(span, err) }()

	rows := stamp(products)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return classify("replace catalog", err)
	}
	r.invalidateListCache(ctx)
	return nil
}

// stamp copies products and fills missing timestamps. Rows without a
// created_at get one a millisecond apart so newest-first reads return them in
// slice order.
func stamp(products []models.Product) []models.Product {
	now := time.Now().UTC()
	rows := make([]models.Product, len(products))
	for i, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now.Add(-time.Duration(i) * time.Millisecond)
		}
		p.UpdatedAt = now
		rows[i] = p
	}
	return rows
}
