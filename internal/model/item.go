package model

import "github.com/shopspring/decimal"

// CommodityItem is the tagged union over the three item schemas. Consumers
// switch on the concrete type; matrix.BuildItems is the only constructor path
// that guarantees the required fields are present.
type CommodityItem interface {
	CommodityType() CommodityType
}

type ProvidedDataItem struct {
	ItemCode         string
	Description      string
	Specifications   string
	UnitOfMeasure    string
	RequiredQuantity decimal.Decimal
	// ReferencePrice is the last known price, informational only. It never
	// feeds quote totals.
	ReferencePrice  decimal.Decimal
	ReferenceVendor string
}

func (ProvidedDataItem) CommodityType() CommodityType { return CommodityProvidedData }

type ServiceItem struct {
	ProjectName      string
	Description      string
	Specifications   string
	UnitOfMeasure    string
	RequiredQuantity decimal.Decimal
	Rate             decimal.Decimal
}

func (ServiceItem) CommodityType() CommodityType { return CommodityService }

type TransportItem struct {
	FromLocation      string
	ToLocation        string
	VehicleSize       string
	Load              string
	Dimensions        string
	FrequencyPerMonth int
}

func (TransportItem) CommodityType() CommodityType { return CommodityTransport }
