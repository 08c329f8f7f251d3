package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"variants-service/internal/middleware"
	"variants-service/internal/repository"
	"variants-service/internal/selection"
)

// ExportHandler exports the variant availability matrix for a product as a
// spreadsheet for the admin dashboard.
type ExportHandler struct {
	repo repository.VariantsRepositoryInterface
}

func NewExportHandler(repo repository.VariantsRepositoryInterface) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// ExportVariantMatrix downloads the variant matrix as an xlsx file
// @Summary Export variant matrix
// @Tags variants
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Product ID"
// @Success 200 {file} binary
// @Router /products/{id}/variants/export [get]
func (h *ExportHandler) ExportVariantMatrix(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "INVALID_PRODUCT_ID", "Product ID must be a valid UUID")
		return
	}

	catalog, err := h.repo.GetCatalog(c.Request.Context(), tenantID, productID)
	if err != nil {
		respondInternalError(c, "EXPORT_FAILED", "Failed to load variant catalog")
		return
	}

	index := selection.BuildIndex(catalog)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Variants"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := []string{"SKU", "Price", "Compare Price", "Quantity", "Available"}
	for _, group := range index {
		headers = append(headers, group.Attribute.Name)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	for row, variant := range catalog {
		values := []interface{}{
			variant.SKU,
			variant.Price,
			"",
			variant.Quantity,
			variant.IsAvailable,
		}
		if variant.ComparePrice != nil {
			values[2] = *variant.ComparePrice
		}
		for _, group := range index {
			label := ""
			valueID := (&variant).OptionValue(group.Attribute.ID)
			for _, v := range group.Values {
				if v.ID == valueID {
					label = v.Label
					break
				}
			}
			values = append(values, label)
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=variants_%s.xlsx", productID.String()[:8]))

	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
