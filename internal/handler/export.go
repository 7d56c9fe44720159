package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/flicky/go-marketplace-api/internal/dto"
	"github.com/flicky/go-marketplace-api/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"ID", "Name", "Description", "Price", "ImageURL", "IsActive", "TotalSold", "CreatedAt", "UpdatedAt",
}

// ExportBySeller streams the seller's products as an xlsx workbook.
func (h *ProductHandler) ExportBySeller(c *gin.Context) {
	sellerID, ok := paramID(c, "sellerId")
	if !ok {
		return
	}
	products, err := h.productService.ExportBySeller(c.Request.Context(), middleware.CallerFrom(c), sellerID)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := productWorkbook(products)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=products-%s.xlsx", sellerID))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Status(http.StatusOK)
	if err := writeWorkbook(file, c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func productWorkbook(products []dto.ProductResponse) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetInt(p.TotalSold)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

func writeWorkbook(file *xlsx.File, w io.Writer) error {
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
