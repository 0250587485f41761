package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of catalog categories
type Category string

const (
	CategoryNecklace   Category = "Collane"
	CategoryRings      Category = "Anelli"
	CategoryEarrings   Category = "Orecchini"
	CategoryBracelets  Category = "Bracciali"
	CategorySunglasses Category = "Occhiali da Sole"
	CategoryScarves    Category = "Sciarpe & Foulard"
	CategoryHair       Category = "Accessori Capelli"
)

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryNecklace,
	CategoryRings,
	CategoryEarrings,
	CategoryBracelets,
	CategorySunglasses,
	CategoryScarves,
	CategoryHair,
}

// Valid reports whether c belongs to the catalog enumeration
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents a catalog entry
type Product struct {
	ID          string          `json:"id" gorm:"type:text;primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category    Category        `json:"category" gorm:"type:text;not null;index"`
	Material    string          `json:"material"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the field-level invariants of a product. The id is not
// checked here because an empty id means "generate one".
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %q has a negative price", p.Name)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("product %q has unknown category %q", p.Name, p.Category)
	}
	return nil
}

// CartItem is a product plus the quantity the customer wants. It is built by
// the caller at checkout and only persisted as part of an order snapshot.
type CartItem struct {
	Product
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CreateProductRequest represents a request to add a product. An empty ID asks
// the store to generate one.
type CreateProductRequest struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category" binding:"required"`
	Material    string          `json:"material,omitempty"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// ToProduct converts the request into a product, defaulting the material the
// same way the admin form does
func (r CreateProductRequest) ToProduct() Product {
	material := r.Material
	if material == "" {
		material = "Standard"
	}
	return Product{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Price:       r.Price,
		Category:    r.Category,
		Material:    material,
		Description: r.Description,
		Image:       r.Image,
	}
}

// UpdateProductRequest represents a full replacement of a product's fields
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category" binding:"required"`
	Material    string          `json:"material,omitempty"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// ToProduct converts the request into the product stored under id
func (r UpdateProductRequest) ToProduct(id string) Product {
	return Product{
		ID:          id,
		Name:        strings.TrimSpace(r.Name),
		Price:       r.Price,
		Category:    r.Category,
		Material:    r.Material,
		Description: r.Description,
		Image:       r.Image,
	}
}

// Response types
type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success bool      `json:"success"`
	Data    []Product `json:"data"`
	Total   int       `json:"total"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
