package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

const maxImageSize = 10 << 20

// ImageUploader stores an image at a public host and returns its URL
type ImageUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (string, error)
}

// DocumentHandler serves product image uploads and order receipts
type DocumentHandler struct {
	uploader ImageUploader
	orders   Orders
	shop     services.ShopContact
}

type ImageUploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

func NewDocumentHandler(uploader ImageUploader, orders Orders, shop services.ShopContact) *DocumentHandler {
	return &DocumentHandler{
		uploader: uploader,
		orders:   orders,
		shop:     shop,
	}
}

// UploadProductImage uploads a product photo and returns its public URL, to
// be stored in the product's image field
// @Summary Upload product image
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 201 {object} ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/images [post]
func (h *DocumentHandler) UploadProductImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		badRequest(c, "NO_FILE", "No image uploaded")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		badRequest(c, "INVALID_FILE_TYPE", "Only image files are allowed")
		return
	}
	if header.Size > maxImageSize {
		badRequest(c, "FILE_TOO_LARGE", fmt.Sprintf("Images are limited to %d MB", maxImageSize>>20))
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ImageUploadResponse{
		Success: true,
		URL:     url,
	})
}

// GetOrderReceipt renders the PDF receipt of an order
// @Summary Download order receipt
// @Tags Orders
// @Produce application/pdf
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id}/receipt [get]
func (h *DocumentHandler) GetOrderReceipt(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := services.GenerateReceipt(order, h.shop)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RECEIPT_FAILED",
				Message: "Failed to generate receipt",
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ordine_%s.pdf", order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
