package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/procure-rfq/internal/model"
)

type itemResponse struct {
	ID            string `json:"id"`
	LineNo        int    `json:"line_no"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Specification string `json:"specification,omitempty"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
	Quantity      string `json:"quantity"`
	Rate          string `json:"rate"`

	FromLocation      *string `json:"from_location,omitempty"`
	ToLocation        *string `json:"to_location,omitempty"`
	VehicleSize       *string `json:"vehicle_size,omitempty"`
	Load              *string `json:"load,omitempty"`
	Dimensions        *string `json:"dimensions,omitempty"`
	FrequencyPerMonth *int    `json:"frequency_per_month,omitempty"`
}

type quoteResponse struct {
	ID           string            `json:"id,omitempty"`
	SupplierID   string            `json:"supplier_id"`
	SupplierName string            `json:"supplier_name,omitempty"`
	Rates        map[string]string `json:"rates"`
	Footer       model.QuoteFooter `json:"footer"`
}

type rfqResponse struct {
	ID            string `json:"id"`
	RFQNumber     string `json:"rfq_number"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	CommodityType string `json:"commodity_type"`
	Status        string `json:"status"`
	// total_value 1 may be the unpriced-draft placeholder, not a real price.
	TotalValue       string          `json:"total_value"`
	Currency         string          `json:"currency,omitempty"`
	SiteCode         string          `json:"site_code"`
	CreatorID        string          `json:"creator_id"`
	UserComments     *string         `json:"user_comments,omitempty"`
	DecisionComments *string         `json:"decision_comments,omitempty"`
	DecidedBy        *string         `json:"decided_by,omitempty"`
	DecidedAt        *time.Time      `json:"decided_at,omitempty"`
	Items            []itemResponse  `json:"items"`
	Quotes           []quoteResponse `json:"quotes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toRFQResponse(rfq model.RFQ) rfqResponse {
	items := make([]itemResponse, 0, len(rfq.Items))
	for _, item := range rfq.Items {
		items = append(items, itemResponse{
			ID:                item.ID.String(),
			LineNo:            item.LineNo,
			Name:              item.Name,
			Description:       item.Description,
			Specification:     item.Specification,
			UnitOfMeasure:     item.UnitOfMeasure,
			Quantity:          item.Quantity.String(),
			Rate:              item.Rate.String(),
			FromLocation:      item.FromLocation,
			ToLocation:        item.ToLocation,
			VehicleSize:       item.VehicleSize,
			Load:              item.Load,
			Dimensions:        item.Dimensions,
			FrequencyPerMonth: item.FrequencyPerMonth,
		})
	}

	quotes := make([]quoteResponse, 0, len(rfq.Quotes))
	for _, quote := range rfq.Quotes {
		rates := make(map[string]string, len(quote.Rates))
		for itemID, rate := range quote.Rates {
			rates[itemID.String()] = rate.String()
		}
		resp := quoteResponse{
			SupplierID:   quote.SupplierID.String(),
			SupplierName: quote.SupplierName,
			Rates:        rates,
			Footer:       quote.Footer,
		}
		if quote.ID != uuid.Nil {
			resp.ID = quote.ID.String()
		}
		quotes = append(quotes, resp)
	}

	resp := rfqResponse{
		ID:               rfq.ID.String(),
		RFQNumber:        rfq.RFQNumber,
		Title:            rfq.Title,
		Description:      rfq.Description,
		CommodityType:    string(rfq.CommodityType),
		Status:           string(rfq.Status),
		TotalValue:       rfq.TotalValue.String(),
		Currency:         rfq.Currency,
		SiteCode:         rfq.SiteCode,
		CreatorID:        rfq.CreatorID.String(),
		UserComments:     rfq.UserComments,
		DecisionComments: rfq.DecisionComments,
		DecidedAt:        rfq.DecidedAt,
		Items:            items,
		Quotes:           quotes,
		CreatedAt:        rfq.CreatedAt,
		UpdatedAt:        rfq.UpdatedAt,
	}
	if rfq.DecidedByUserID != nil {
		decidedBy := rfq.DecidedByUserID.String()
		resp.DecidedBy = &decidedBy
	}
	return resp
}
