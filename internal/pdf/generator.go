package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/procure-rfq/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the RFQ as a printable document: header, item table,
// quote totals and the decision block.
func (g *Generator) Generate(rfq model.RFQ) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Request for Quotation", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("RFQ No %s, %s", rfq.RFQNumber, formatDate(rfq.CreatedAt)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Site %s, commodity: %s, status: %s", rfq.SiteCode, rfq.CommodityType, rfq.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, rfq.Title, "", 1, "L", false, 0, "")
	if strings.TrimSpace(rfq.Description) != "" {
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, rfq.Description, "", "L", false)
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Items", "", 1, "L", false, 0, "")

	headers := []string{"#", "Item", "Specification", "Qty", "UOM"}
	colWidths := []float64{10, 75, 120, 30, 25}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	for _, item := range rfq.Items {
		row := []string{
			fmt.Sprintf("%d", item.LineNo),
			item.Name,
			item.Specification,
			item.Quantity.String(),
			item.UnitOfMeasure,
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}
	pdf.Ln(4)

	if len(rfq.Quotes) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Quotations", "", 1, "L", false, 0, "")

		quoteHeaders := []string{"Supplier", "Lead time", "Warranty", "Currency"}
		quoteWidths := []float64{110, 50, 50, 50}
		drawTableRow(pdf, g.fontName, quoteHeaders, quoteWidths, true)
		for _, quote := range rfq.Quotes {
			row := []string{
				safeValue(quote.SupplierName),
				safeValue(quote.Footer.LeadTime),
				safeValue(quote.Footer.Warranty),
				safeValue(quote.Footer.Currency),
			}
			drawTableRow(pdf, g.fontName, row, quoteWidths, false)
		}
		pdf.Ln(2)
	}

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total value: %s %s", totalLabel(rfq), rfq.Currency), "", 1, "R", false, 0, "")

	if rfq.Status.Terminal() {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Decision", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s, %s", rfq.Status, formatDatePtr(rfq.DecidedAt)), "", 1, "L", false, 0, "")
		if rfq.DecisionComments != nil {
			pdf.MultiCell(0, 5, *rfq.DecisionComments, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i >= len(cols)-2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func totalLabel(rfq model.RFQ) string {
	if rfq.TotalValue.Equal(decimal.NewFromInt(1)) {
		return "1 (price to be determined)"
	}
	return rfq.TotalValue.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
