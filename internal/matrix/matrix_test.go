package matrix

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/procure-rfq/internal/model"
)

func transportMatrix(t *testing.T) (Matrix, uuid.UUID) {
	t.Helper()
	itemID := uuid.New()
	m := New(model.CommodityTransport)
	m.Lines = []Line{{
		ID: itemID,
		Item: model.TransportItem{
			FromLocation:      "Plant",
			ToLocation:        "Depot",
			VehicleSize:       "20t",
			FrequencyPerMonth: 2,
		},
	}}
	return m, itemID
}

func TestTotalForQuote_Transport(t *testing.T) {
	m, itemID := transportMatrix(t)
	m.Quotes = []model.Quote{{
		SupplierID: uuid.New(),
		Rates:      map[uuid.UUID]decimal.Decimal{itemID: dec(500)},
	}}

	if got := m.TotalForQuote(0); !got.Equal(dec(1000)) {
		t.Errorf("total = %s, want 1000 (rate 500 x 2 trips)", got)
	}
}

func TestTotalForQuote_OutOfRange(t *testing.T) {
	m, _ := transportMatrix(t)
	if got := m.TotalForQuote(3); !got.IsZero() {
		t.Errorf("total = %s, want 0", got)
	}
}

func TestGrandTotal_Representative(t *testing.T) {
	m, itemID := transportMatrix(t)
	m.Quotes = []model.Quote{
		{SupplierID: uuid.New(), Rates: map[uuid.UUID]decimal.Decimal{itemID: dec(500)}},
		{SupplierID: uuid.New(), Rates: map[uuid.UUID]decimal.Decimal{itemID: dec(700)}},
	}
	m.Representative = 1

	if got := m.GrandTotal(); !got.Equal(dec(1400)) {
		t.Errorf("grand total = %s, want the representative quote's 1400", got)
	}
}

func TestGrandTotal_FallbackSumsAllQuotes(t *testing.T) {
	m, itemID := transportMatrix(t)
	m.Quotes = []model.Quote{
		{SupplierID: uuid.New(), Rates: map[uuid.UUID]decimal.Decimal{itemID: dec(500)}},
		{SupplierID: uuid.New(), Rates: map[uuid.UUID]decimal.Decimal{itemID: dec(700)}},
	}

	// No representative selected: the fallback estimate sums every quote.
	if got := m.GrandTotal(); !got.Equal(dec(2400)) {
		t.Errorf("grand total = %s, want 2400", got)
	}
}

func TestGrandTotal_BaselineWithoutQuotes(t *testing.T) {
	m := New(model.CommodityService)
	m.Lines = []Line{{
		ID: uuid.New(),
		Item: model.ServiceItem{
			ProjectName:      "Maintenance",
			RequiredQuantity: dec(40),
			Rate:             dec(50),
		},
	}}

	if got := m.GrandTotal(); !got.Equal(dec(2000)) {
		t.Errorf("grand total = %s, want baseline 2000", got)
	}
}

func TestSubmissionTotal_ZeroSentinel(t *testing.T) {
	m, itemID := transportMatrix(t)
	m.Quotes = []model.Quote{{
		SupplierID: uuid.New(),
		Rates:      map[uuid.UUID]decimal.Decimal{itemID: decimal.Zero},
	}}

	// Every rate is zero (price to be determined later): the stored total
	// must be exactly 1, never 0.
	if got := m.SubmissionTotal(); !got.Equal(dec(1)) {
		t.Errorf("submission total = %s, want sentinel 1", got)
	}
}

func TestSubmissionTotal_NoRatesAtAll(t *testing.T) {
	m, _ := transportMatrix(t)
	if got := m.SubmissionTotal(); !got.Equal(dec(1)) {
		t.Errorf("submission total = %s, want sentinel 1", got)
	}
}

func TestSubmissionTotal_RealTotalUnchanged(t *testing.T) {
	m, itemID := transportMatrix(t)
	m.Quotes = []model.Quote{{
		SupplierID: uuid.New(),
		Rates:      map[uuid.UUID]decimal.Decimal{itemID: dec(500)},
	}}
	m.Representative = 0

	if got := m.SubmissionTotal(); !got.Equal(dec(1000)) {
		t.Errorf("submission total = %s, want 1000", got)
	}
}
