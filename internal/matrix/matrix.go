package matrix

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/procure-rfq/internal/model"
)

// MaxQuotes caps the supplier columns of one comparison.
const MaxQuotes = 5

// Line pairs a tagged item with the id its quote rates are keyed by.
type Line struct {
	ID   uuid.UUID
	Item model.CommodityItem
}

// Matrix is the supplier x item comparison grid. It is a value type; the
// reducer in this package returns fresh copies instead of mutating in place.
type Matrix struct {
	CommodityType model.CommodityType
	Lines         []Line
	Quotes        []model.Quote
	// Representative indexes the quote whose total commits as the RFQ value.
	// -1 means no quote has been conclusively selected.
	Representative int
}

func New(commodity model.CommodityType) Matrix {
	return Matrix{CommodityType: commodity, Representative: -1}
}

// TotalForQuote sums every line's contribution under the given quote.
func (m Matrix) TotalForQuote(index int) decimal.Decimal {
	if index < 0 || index >= len(m.Quotes) {
		return decimal.Zero
	}
	quote := m.Quotes[index]
	total := decimal.Zero
	for _, line := range m.Lines {
		rate, ok := quote.Rate(line.ID)
		total = total.Add(Contribution(line.Item, rate, ok))
	}
	return total
}

// BaselineTotal prices the items without any quote. Only service items
// contribute, from their own rate field.
func (m Matrix) BaselineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range m.Lines {
		total = total.Add(BaselineContribution(line.Item))
	}
	return total
}

// GrandTotal is the representative quote's total when one is selected.
// Otherwise it falls back to the sum of every quote's total (an estimate,
// not a committed price), or to the baseline when no quotes exist yet.
func (m Matrix) GrandTotal() decimal.Decimal {
	if m.Representative >= 0 && m.Representative < len(m.Quotes) {
		return m.TotalForQuote(m.Representative)
	}
	if len(m.Quotes) == 0 {
		return m.BaselineTotal()
	}
	total := decimal.Zero
	for i := range m.Quotes {
		total = total.Add(m.TotalForQuote(i))
	}
	return total
}

// SubmissionTotal is GrandTotal with the unpriced-draft sentinel applied:
// an all-zero comparison (rates to be determined later) persists as 1, never
// 0, so downstream positive-total rules do not block the draft. The value is
// a placeholder, not a price.
func (m Matrix) SubmissionTotal() decimal.Decimal {
	total := m.GrandTotal()
	if total.IsZero() {
		return decimal.NewFromInt(1)
	}
	return total
}
