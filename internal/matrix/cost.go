package matrix

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/procure-rfq/internal/model"
)

// FieldError reports a missing or invalid commodity-specific field. It fails
// the whole create operation; there is no partial save.
type FieldError struct {
	Index int
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("item %d: field %q %s", e.Index+1, e.Field, e.Msg)
}

// ItemInput is the raw, untyped item row as edited by the client. Which
// fields matter depends on the commodity type of the owning RFQ.
type ItemInput struct {
	ID uuid.UUID

	ItemCode         string
	Description      string
	Specifications   string
	UnitOfMeasure    string
	RequiredQuantity decimal.Decimal
	ReferencePrice   decimal.Decimal
	ReferenceVendor  string

	ProjectName string
	Rate        decimal.Decimal

	FromLocation      string
	ToLocation        string
	VehicleSize       string
	Load              string
	Dimensions        string
	FrequencyPerMonth int
}

// BuildItems validates the raw inputs against the declared commodity type and
// produces tagged items. The first invalid field aborts with a FieldError.
func BuildItems(commodity model.CommodityType, inputs []ItemInput) ([]model.CommodityItem, error) {
	items := make([]model.CommodityItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := buildItem(commodity, i, in)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func buildItem(commodity model.CommodityType, index int, in ItemInput) (model.CommodityItem, error) {
	switch commodity {
	case model.CommodityProvidedData:
		if err := requireText(index, "item_code", in.ItemCode); err != nil {
			return nil, err
		}
		if err := requireText(index, "description", in.Description); err != nil {
			return nil, err
		}
		if err := requireText(index, "unit_of_measure", in.UnitOfMeasure); err != nil {
			return nil, err
		}
		if !in.RequiredQuantity.IsPositive() {
			return nil, &FieldError{Index: index, Field: "required_quantity", Msg: "must be greater than zero"}
		}
		return model.ProvidedDataItem{
			ItemCode:         strings.TrimSpace(in.ItemCode),
			Description:      strings.TrimSpace(in.Description),
			Specifications:   strings.TrimSpace(in.Specifications),
			UnitOfMeasure:    strings.TrimSpace(in.UnitOfMeasure),
			RequiredQuantity: in.RequiredQuantity,
			ReferencePrice:   in.ReferencePrice,
			ReferenceVendor:  strings.TrimSpace(in.ReferenceVendor),
		}, nil

	case model.CommodityService:
		if err := requireText(index, "project_name", in.ProjectName); err != nil {
			return nil, err
		}
		if err := requireText(index, "description", in.Description); err != nil {
			return nil, err
		}
		if err := requireText(index, "unit_of_measure", in.UnitOfMeasure); err != nil {
			return nil, err
		}
		if !in.RequiredQuantity.IsPositive() {
			return nil, &FieldError{Index: index, Field: "required_quantity", Msg: "must be greater than zero"}
		}
		if in.Rate.IsNegative() {
			return nil, &FieldError{Index: index, Field: "rate", Msg: "must not be negative"}
		}
		return model.ServiceItem{
			ProjectName:      strings.TrimSpace(in.ProjectName),
			Description:      strings.TrimSpace(in.Description),
			Specifications:   strings.TrimSpace(in.Specifications),
			UnitOfMeasure:    strings.TrimSpace(in.UnitOfMeasure),
			RequiredQuantity: in.RequiredQuantity,
			Rate:             in.Rate,
		}, nil

	case model.CommodityTransport:
		if err := requireText(index, "from_location", in.FromLocation); err != nil {
			return nil, err
		}
		if err := requireText(index, "to_location", in.ToLocation); err != nil {
			return nil, err
		}
		if err := requireText(index, "vehicle_size", in.VehicleSize); err != nil {
			return nil, err
		}
		if in.FrequencyPerMonth < 1 {
			return nil, &FieldError{Index: index, Field: "frequency_per_month", Msg: "must be at least 1"}
		}
		return model.TransportItem{
			FromLocation:      strings.TrimSpace(in.FromLocation),
			ToLocation:        strings.TrimSpace(in.ToLocation),
			VehicleSize:       strings.TrimSpace(in.VehicleSize),
			Load:              strings.TrimSpace(in.Load),
			Dimensions:        strings.TrimSpace(in.Dimensions),
			FrequencyPerMonth: in.FrequencyPerMonth,
		}, nil

	default:
		return nil, &FieldError{Index: index, Field: "commodity_type", Msg: "is not a known commodity"}
	}
}

func requireText(index int, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Index: index, Field: field, Msg: "is required"}
	}
	return nil
}

// Contribution computes the item's cost under a single quote.
// provided_data: quantity x quote rate ("last price" never feeds totals);
// service: quantity x rate, where the quote rate overrides the item's own;
// transport: quote rate x trips per month.
func Contribution(item model.CommodityItem, quoteRate decimal.Decimal, rated bool) decimal.Decimal {
	switch v := item.(type) {
	case model.ProvidedDataItem:
		if !rated {
			return decimal.Zero
		}
		return v.RequiredQuantity.Mul(quoteRate)
	case model.ServiceItem:
		rate := v.Rate
		if rated {
			rate = quoteRate
		}
		return v.RequiredQuantity.Mul(rate)
	case model.TransportItem:
		if !rated {
			return decimal.Zero
		}
		return quoteRate.Mul(decimal.NewFromInt(int64(v.FrequencyPerMonth)))
	default:
		return decimal.Zero
	}
}

// BaselineContribution is the item's cost with no quote rate entered. Only
// service items carry their own rate; the other commodities price at zero.
func BaselineContribution(item model.CommodityItem) decimal.Decimal {
	return Contribution(item, decimal.Zero, false)
}
