package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/procure-rfq/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the quotation comparison workbook: a summary sheet plus
// the supplier x item rate grid with per-quote totals and footer terms.
func (g *Generator) Generate(rfq model.RFQ) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, rfq); err != nil {
		return nil, err
	}

	comparisonSheet := "Comparison"
	file.NewSheet(comparisonSheet)
	if err := g.writeComparison(file, comparisonSheet, rfq); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, rfq model.RFQ) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "RFQ number")
	set("B1", rfq.RFQNumber)
	set("A2", "Title")
	set("B2", rfq.Title)
	set("A3", "Commodity")
	set("B3", string(rfq.CommodityType))
	set("A4", "Site")
	set("B4", rfq.SiteCode)
	set("A5", "Status")
	set("B5", string(rfq.Status))
	set("A6", "Total value")
	set("B6", totalLabel(rfq))
	set("A7", "Created")
	set("B7", formatDate(rfq.CreatedAt))

	tableRow := 9
	set(fmt.Sprintf("A%d", tableRow), "Supplier")
	set(fmt.Sprintf("B%d", tableRow), "Quoted total")
	set(fmt.Sprintf("C%d", tableRow), "Lead time")
	for i, quote := range rfq.Quotes {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), quote.SupplierName)
		set(fmt.Sprintf("B%d", row), quoteTotal(rfq, quote).StringFixed(2))
		set(fmt.Sprintf("C%d", row), quote.Footer.LeadTime)
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "C", 20)
	return nil
}

func (g *Generator) writeComparison(file *excelize.File, sheet string, rfq model.RFQ) error {
	set := func(col, row int, value interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"#", "Item", "Qty", "UOM"}
	for i, header := range headers {
		set(i+1, 1, header)
	}
	quoteCol := func(index int) int { return len(headers) + 1 + index }
	for i, quote := range rfq.Quotes {
		set(quoteCol(i), 1, quote.SupplierName)
	}

	for rowIdx, item := range rfq.Items {
		row := 2 + rowIdx
		set(1, row, item.LineNo)
		set(2, row, item.Name)
		set(3, row, item.Quantity.String())
		set(4, row, item.UnitOfMeasure)
		for qi, quote := range rfq.Quotes {
			if rate, ok := quote.Rate(item.ID); ok {
				set(quoteCol(qi), row, rate.StringFixed(2))
			}
		}
	}

	totalsRow := 2 + len(rfq.Items)
	set(2, totalsRow, "Total")
	for qi, quote := range rfq.Quotes {
		set(quoteCol(qi), totalsRow, quoteTotal(rfq, quote).StringFixed(2))
	}

	footerRows := []struct {
		label string
		pick  func(model.QuoteFooter) string
	}{
		{"Freight", func(f model.QuoteFooter) string { return f.Freight }},
		{"Packing", func(f model.QuoteFooter) string { return f.Packing }},
		{"Lead time", func(f model.QuoteFooter) string { return f.LeadTime }},
		{"Warranty", func(f model.QuoteFooter) string { return f.Warranty }},
		{"Currency", func(f model.QuoteFooter) string { return f.Currency }},
	}
	for fi, footer := range footerRows {
		row := totalsRow + 1 + fi
		set(2, row, footer.label)
		for qi, quote := range rfq.Quotes {
			set(quoteCol(qi), row, footer.pick(quote.Footer))
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 6)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "D", 10)
	if len(rfq.Quotes) > 0 {
		first, _ := excelize.ColumnNumberToName(quoteCol(0))
		last, _ := excelize.ColumnNumberToName(quoteCol(len(rfq.Quotes) - 1))
		_ = file.SetColWidth(sheet, first, last, 18)
	}
	return nil
}

// quoteTotal prices the flat items under one quote. Transport quantity is the
// monthly trip count, so rate x quantity covers all three commodities; a
// service item without a quoted rate falls back to its own rate.
func quoteTotal(rfq model.RFQ, quote model.Quote) decimal.Decimal {
	total := decimal.Zero
	for _, item := range rfq.Items {
		rate, ok := quote.Rate(item.ID)
		if !ok {
			if rfq.CommodityType != model.CommodityService {
				continue
			}
			rate = item.Rate
		}
		total = total.Add(rate.Mul(item.Quantity))
	}
	return total
}

func totalLabel(rfq model.RFQ) string {
	if rfq.TotalValue.Equal(decimal.NewFromInt(1)) {
		return "1 (price to be determined)"
	}
	return rfq.TotalValue.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
