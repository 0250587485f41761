package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatJSON ImportFormat = "json"
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success       bool             `json:"success"`
	Format        ImportFormat     `json:"format"`
	TotalRows     int              `json:"totalRows"`
	ImportedCount int              `json:"importedCount"`
	ImportedIDs   []string         `json:"importedIds,omitempty"`
	Errors        []ImportRowError `json:"errors,omitempty"`
	ProcessingMs  int64            `json:"processingMs"`
}

// ProductImportColumns returns the column definitions for product import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "id", Description: "Product ID - rows with an existing ID update that product, empty generates one", Required: false, Type: "string", Example: "10"},
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Anello Fascia Liscia"},
		{Name: "price", Description: "Product price in EUR", Required: true, Type: "number", Example: "9.50"},
		{Name: "category", Description: "One of the catalog categories", Required: true, Type: "string", Example: string(CategoryRings)},
		{Name: "material", Description: "Material description", Required: false, Type: "string", Example: "Stainless Steel"},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: "image", Description: "Public image URL", Required: false, Type: "string", Example: ""},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
