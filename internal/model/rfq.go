package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RFQStatus string

const (
	StatusDraft    RFQStatus = "draft"
	StatusPending  RFQStatus = "pending"
	StatusApproved RFQStatus = "approved"
	StatusRejected RFQStatus = "rejected"
)

// Terminal reports whether no further status transition is allowed.
func (s RFQStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Editable reports whether items and quotes may still be mutated.
func (s RFQStatus) Editable() bool {
	return s == StatusDraft || s == StatusPending
}

type CommodityType string

const (
	CommodityProvidedData CommodityType = "provided_data"
	CommodityService      CommodityType = "service"
	CommodityTransport    CommodityType = "transport"
)

// ParseCommodityType maps a wire value onto one of the three known schemas.
func ParseCommodityType(raw string) (CommodityType, bool) {
	switch CommodityType(raw) {
	case CommodityProvidedData, CommodityService, CommodityTransport:
		return CommodityType(raw), true
	default:
		return "", false
	}
}

type RFQ struct {
	ID            uuid.UUID
	RFQNumber     string
	Title         string
	Description   string
	CommodityType CommodityType
	Status        RFQStatus
	// TotalValue is 1 for intentionally unpriced drafts; the allocator of the
	// sentinel is the submission pipeline, see matrix.SubmissionTotal.
	TotalValue       decimal.Decimal
	Currency         string
	SiteID           uuid.UUID
	SiteCode         string
	CreatorID        uuid.UUID
	UserComments     *string
	DecisionComments *string
	DecidedByUserID  *uuid.UUID
	DecidedAt        *time.Time
	Items            []RFQItem `gorm:"-"`
	Quotes           []Quote   `gorm:"-"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RFQItem is the flat persisted item shape. Commodity-specific fields are
// folded into Specification/Description; transport keeps a structured
// side-channel so route data survives normalization.
type RFQItem struct {
	ID            uuid.UUID
	RFQID         uuid.UUID
	LineNo        int
	Name          string
	Description   string
	Specification string
	UnitOfMeasure string
	Quantity      decimal.Decimal
	Rate          decimal.Decimal

	FromLocation      *string
	ToLocation        *string
	VehicleSize       *string
	Load              *string
	Dimensions        *string
	FrequencyPerMonth *int
}
