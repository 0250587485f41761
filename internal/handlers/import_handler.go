package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ImportHandler struct {
	catalog Catalog
}

func NewImportHandler(catalog Catalog) *ImportHandler {
	return &ImportHandler{catalog: catalog}
}

// GetImportTemplate returns the import template definition or file
// @Summary Download import template
// @Tags Admin
// @Produce json
// @Param format query string false "json, csv or xlsx" default(json)
// @Success 200 {object} models.ImportTemplate
// @Security BearerAuth
// @Router /admin/products/import/template [get]
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := models.ProductImportTemplate()

	switch c.DefaultQuery("format", "json") {
	case "csv":
		c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")
		c.Header("Content-Type", "text/csv")
		if err := services.WriteImportTemplateCSV(c.Writer, template); err != nil {
			c.Error(err)
		}
	case "xlsx":
		var buf bytes.Buffer
		if err := services.WriteImportTemplateXLSX(&buf, template); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// ImportProducts merges products from an uploaded JSON, CSV or Excel file
// into the catalog. With validateOnly=true the file is checked but nothing is
// written.
// @Summary Import products
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "JSON, CSV or XLSX file"
// @Param validateOnly formData bool false "Only validate the file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ImportResult
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/products/import [post]
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	startTime := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "FILE_REQUIRED", "Please upload a JSON, CSV or Excel file")
		return
	}
	defer file.Close()

	format, err := services.DetectFormat(header.Filename)
	if err != nil {
		badRequest(c, "INVALID_FORMAT", "Only JSON, CSV and XLSX files are supported")
		return
	}

	products, err := services.ParseProducts(format, file)
	if err != nil {
		respondError(c, err)
		return
	}

	result := models.ImportResult{
		Format:    format,
		TotalRows: len(products),
	}

	if c.DefaultPostForm("validateOnly", "false") != "true" {
		if err := h.catalog.BulkImport(c.Request.Context(), products); err != nil {
			respondError(c, err)
			return
		}
		result.ImportedCount = len(products)
		for _, p := range products {
			if p.ID != "" {
				result.ImportedIDs = append(result.ImportedIDs, p.ID)
			}
		}
	}

	result.Success = true
	result.ProcessingMs = time.Since(startTime).Milliseconds()
	c.JSON(http.StatusOK, result)
}

// ExportProducts downloads the catalog as JSON or Excel in the import layout
// @Summary Export catalog
// @Tags Admin
// @Param format query string false "json or xlsx" default(json)
// @Success 200 {array} models.Product
// @Security BearerAuth
// @Router /admin/products/export [get]
func (h *ImportHandler) ExportProducts(c *gin.Context) {
	products := h.catalog.GetAll(c.Request.Context())
	stamp := time.Now().UTC().Format("20060102")

	switch c.DefaultQuery("format", "json") {
	case "xlsx":
		var buf bytes.Buffer
		if err := services.WriteCatalogXLSX(&buf, products); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=catalog_%s.xlsx", stamp))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=catalog_%s.json", stamp))
		c.JSON(http.StatusOK, products)
	default:
		badRequest(c, "INVALID_FORMAT", "format must be json or xlsx")
	}
}
