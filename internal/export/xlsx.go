// Package export renders backoffice property listings as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Properties"

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PropertyHeader is the header row of a property export.
var PropertyHeader = []string{
	"Code",
	"Title",
	"Type",
	"Status",
	"City",
	"Listing",
	"Price",
	"Bedrooms",
	"Bathrooms",
	"Area",
	"Views",
	"Inquiries",
	"Created",
}

var columnWidths = []float64{12, 40, 14, 12, 18, 10, 16, 10, 10, 10, 10, 10, 20}

// Properties writes rows into a single sheet workbook and returns its bytes.
func Properties(rows []repository.OwnedProperty) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range PropertyHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &[]interface{}{
			row.PropertyCode,
			row.Title,
			row.PropertyType,
			row.Status,
			row.City,
			listingType(row.Listings),
			lowestPrice(row.Listings),
			intOrBlank(row.Bedrooms),
			intOrBlank(row.Bathrooms),
			floatOrBlank(row.Area),
			row.ViewCount,
			row.InquiryCount,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func listingType(listings []models.Listing) string {
	if len(listings) == 0 {
		return ""
	}
	return listings[0].ListingType
}

// lowestPrice is the cheapest listing price, or blank without listings.
func lowestPrice(listings []models.Listing) interface{} {
	if len(listings) == 0 {
		return ""
	}
	low := listings[0].Price
	for _, l := range listings[1:] {
		if l.Price < low {
			low = l.Price
		}
	}
	return low
}

func intOrBlank(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrBlank(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
