package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

const catalogSheet = "Products"

// ImportError lists the rows of an import file that could not be turned into
// products. It matches repository.ErrMalformedImport.
type ImportError struct {
	TotalRows int
	Rows      []models.ImportRowError
}

func (e *ImportError) Error() string {
	if len(e.Rows) == 0 {
		return repository.ErrMalformedImport.Error()
	}
	first := e.Rows[0]
	return fmt.Sprintf("%s: %d invalid row(s), first at row %d: %s",
		repository.ErrMalformedImport, len(e.Rows), first.Row, first.Message)
}

func (e *ImportError) Unwrap() error {
	return repository.ErrMalformedImport
}

// DetectFormat picks the import format from a file name
func DetectFormat(filename string) (models.ImportFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return models.ImportFormatJSON, nil
	case ".csv":
		return models.ImportFormatCSV, nil
	case ".xlsx":
		return models.ImportFormatXLSX, nil
	}
	return "", fmt.Errorf("%w: unsupported file type %q", repository.ErrMalformedImport, filepath.Ext(filename))
}

// ParseProducts decodes an import payload into products. Field validation
// beyond what the format needs is left to CatalogStore.BulkImport.
func ParseProducts(format models.ImportFormat, r io.Reader) ([]models.Product, error) {
	switch format {
	case models.ImportFormatJSON:
		return parseJSON(r)
	case models.ImportFormatCSV:
		rows, err := parseCSV(r)
		if err != nil {
			return nil, err
		}
		return rowsToProducts(rows)
	case models.ImportFormatXLSX:
		rows, err := parseXLSX(r)
		if err != nil {
			return nil, err
		}
		return rowsToProducts(rows)
	}
	return nil, fmt.Errorf("%w: unknown format %q", repository.ErrMalformedImport, format)
}

// parseJSON accepts a JSON array of product objects
func parseJSON(r io.Reader) ([]models.Product, error) {
	var products []models.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of products: %w", repository.ErrMalformedImport, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: the file contains no products", repository.ErrMalformedImport)
	}
	return products, nil
}

// parseCSV parses a CSV file into rows keyed by normalized header
func parseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %w", repository.ErrMalformedImport, err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	lineNum := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: error reading line %d: %w", repository.ErrMalformedImport, lineNum+1, err)
		}
		rows = append(rows, toRow(headers, record, lineNum+1))
		lineNum++
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: the file contains no data rows", repository.ErrMalformedImport)
	}
	return rows, nil
}

// parseXLSX parses the Products sheet (or the first sheet) into rows
func parseXLSX(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %w", repository.ErrMalformedImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in Excel file", repository.ErrMalformedImport)
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, catalogSheet) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet: %w", repository.ErrMalformedImport, err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("%w: file must have a header row and at least one data row", repository.ErrMalformedImport)
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	rows := make([]map[string]string, 0, len(excelRows)-1)
	for i, excelRow := range excelRows[1:] {
		if isBlank(excelRow) {
			continue
		}
		rows = append(rows, toRow(headers, excelRow, i+2))
	}
	return rows, nil
}

func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

func toRow(headers, record []string, rowNum int) map[string]string {
	row := make(map[string]string, len(headers)+1)
	for i, value := range record {
		if i < len(headers) {
			row[headers[i]] = strings.TrimSpace(value)
		}
	}
	row["_row"] = strconv.Itoa(rowNum)
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowsToProducts converts spreadsheet rows, collecting every row error
func rowsToProducts(rows []map[string]string) ([]models.Product, error) {
	importErr := &ImportError{TotalRows: len(rows)}
	products := make([]models.Product, 0, len(rows))

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])
		addError := func(column, code, message string) {
			importErr.Rows = append(importErr.Rows, models.ImportRowError{Row: rowNum, Column: column, Code: code, Message: message})
		}

		if row["name"] == "" {
			addError("name", "REQUIRED", "Product name is required")
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(row["price"], ",", "."))
		switch {
		case row["price"] == "":
			addError("price", "REQUIRED", "Price is required")
		case err != nil:
			addError("price", "INVALID", "Price must be a valid number")
		case price.IsNegative():
			addError("price", "INVALID", "Price must not be negative")
		}
		category := models.Category(row["category"])
		if !category.Valid() {
			addError("category", "INVALID", fmt.Sprintf("Unknown category %q", row["category"]))
		}

		products = append(products, models.Product{
			ID:          row["id"],
			Name:        row["name"],
			Price:       price,
			Category:    category,
			Material:    row["material"],
			Description: row["description"],
			Image:       row["image"],
		})
	}

	if len(importErr.Rows) > 0 {
		return nil, importErr
	}
	return products, nil
}

// WriteImportTemplateCSV writes the header row of the import template
func WriteImportTemplateCSV(w io.Writer, template models.ImportTemplate) error {
	writer := csv.NewWriter(w)
	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	if err := writer.Write(headers); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteImportTemplateXLSX writes an Excel template with a styled header row
// and an Instructions sheet describing each column
func WriteImportTemplateXLSX(w io.Writer, template models.ImportTemplate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return err
	}
	if err := writeHeaderRow(f, template.Columns); err != nil {
		return err
	}

	const instructions = "Instructions"
	if _, err := f.NewSheet(instructions); err != nil {
		return err
	}
	f.SetCellValue(instructions, "A1", "Product Import Instructions")
	f.SetCellValue(instructions, "A3", "Rows are merged into the catalog by id. Products not in the file are kept.")
	f.SetCellValue(instructions, "A4", "Valid categories:")
	for i, c := range models.Categories {
		f.SetCellValue(instructions, fmt.Sprintf("B%d", i+4), string(c))
	}

	start := len(models.Categories) + 5
	for i, header := range []string{"Column", "Description", "Required", "Type", "Example"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, start)
		f.SetCellValue(instructions, cell, header)
	}
	for i, col := range template.Columns {
		row := start + i + 1
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue(instructions, fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue(instructions, fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue(instructions, fmt.Sprintf("C%d", row), required)
		f.SetCellValue(instructions, fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue(instructions, fmt.Sprintf("E%d", row), col.Example)
	}
	f.SetColWidth(instructions, "A", "A", 25)
	f.SetColWidth(instructions, "B", "B", 60)
	f.SetColWidth(instructions, "C", "D", 15)
	f.SetColWidth(instructions, "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(catalogSheet)
	f.SetActiveSheet(sheetIdx)

	return f.Write(w)
}

// WriteCatalogXLSX exports products in the import layout, so an export can be
// edited and imported back
func WriteCatalogXLSX(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return err
	}
	if err := writeHeaderRow(f, models.ProductImportColumns()); err != nil {
		return err
	}

	for i, p := range products {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{p.ID, p.Name, p.Price.StringFixed(2), string(p.Category), p.Material, p.Description, p.Image}
		if err := f.SetSheetRow(catalogSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func writeHeaderRow(f *excelize.File, columns []models.ImportTemplateColumn) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		header, style := col.Name, headerStyle
		if col.Required {
			header, style = col.Name+" *", requiredStyle
		}
		f.SetCellValue(catalogSheet, cell, header)
		f.SetCellStyle(catalogSheet, cell, cell, style)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(catalogSheet, colName, colName, 20)
	}
	return nil
}
