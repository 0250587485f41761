package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
)

// Catalog is the product catalog the handlers serve
type Catalog interface {
	GetAll(ctx context.Context) []models.Product
	Get(ctx context.Context, id string) (models.Product, error)
	Add(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, product models.Product) error
	Remove(ctx context.Context, id string) error
	ResetToDefaults(ctx context.Context) error
	BulkImport(ctx context.Context, products []models.Product) error
}

type ProductsHandler struct {
	catalog Catalog
}

func NewProductsHandler(catalog Catalog) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// GetProducts lists the catalog
// @Summary List products
// @Description List the catalog newest first, optionally filtered by category
// @Tags Products
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} models.ProductListResponse
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	products := h.catalog.GetAll(c.Request.Context())

	if category := c.Query("category"); category != "" {
		filtered := make([]models.Product, 0, len(products))
		for _, p := range products {
			if string(p.Category) == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Total:   len(products),
	})
}

// GetProduct retrieves a single product by ID
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    &product,
	})
}

// CreateProduct adds a product. An empty id is generated.
// @Summary Create product
// @Tags Admin
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product data"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	product, err := h.catalog.Add(c.Request.Context(), req.ToProduct())
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Product created successfully"
	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    &product,
		Message: &message,
	})
}

// UpdateProduct replaces a product's fields, creating it if absent
// @Summary Update product
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.UpdateProductRequest true "Product data"
// @Success 200 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	product := req.ToProduct(c.Param("id"))
	if err := h.catalog.Update(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	message := "Product updated successfully"
	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    &product,
		Message: &message,
	})
}

// DeleteProduct removes a product. Removing an unknown id succeeds.
// @Summary Delete product
// @Tags Admin
// @Param id path string true "Product ID"
// @Success 204
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetProducts restores the default catalog
// @Summary Reset catalog
// @Tags Admin
// @Produce json
// @Success 200 {object} models.ProductListResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/reset [post]
func (h *ProductsHandler) ResetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.catalog.ResetToDefaults(ctx); err != nil {
		respondError(c, err)
		return
	}

	products := h.catalog.GetAll(ctx)
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Total:   len(products),
	})
}
