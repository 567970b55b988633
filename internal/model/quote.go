package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteFooter carries the per-quote commercial terms applied uniformly across
// that quote's items.
type QuoteFooter struct {
	Freight  string `json:"freight"`
	Packing  string `json:"packing"`
	LeadTime string `json:"lead_time"`
	Warranty string `json:"warranty"`
	Currency string `json:"currency"`
}

// Quote is one supplier's full rate submission across the RFQ's items.
// Rates are keyed by item id, not by row position, so swapping the supplier
// of a quote keeps every entered rate intact.
type Quote struct {
	ID           uuid.UUID
	RFQID        uuid.UUID
	SupplierID   uuid.UUID
	SupplierName string
	Rates        map[uuid.UUID]decimal.Decimal
	Footer       QuoteFooter
}

// Rate returns the unit rate entered for the item, if any.
func (q Quote) Rate(itemID uuid.UUID) (decimal.Decimal, bool) {
	rate, ok := q.Rates[itemID]
	return rate, ok
}
