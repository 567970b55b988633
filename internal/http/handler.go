package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/procure-rfq/internal/http/middleware"
	"github.com/nurpe/procure-rfq/internal/matrix"
	"github.com/nurpe/procure-rfq/internal/model"
	"github.com/nurpe/procure-rfq/internal/service"
)

type Handler struct {
	rfqs *service.RFQService
	log  zerolog.Logger
}

func NewHandler(rfqs *service.RFQService, log zerolog.Logger) *Handler {
	return &Handler{rfqs: rfqs, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/rfqs", h.createRFQ)
	protected.GET("/rfqs", h.listRFQs)
	protected.GET("/rfqs/:id", h.getRFQ)
	protected.POST("/rfqs/:id/approve", h.approveRFQ)
	protected.POST("/rfqs/:id/reject", h.rejectRFQ)
	protected.GET("/rfqs/:id/export", h.exportComparison)
	protected.GET("/rfqs/:id/export/pdf", h.exportPDF)
}

type itemRequest struct {
	ID               string          `json:"id"`
	ItemCode         string          `json:"item_code"`
	Description      string          `json:"description"`
	Specifications   string          `json:"specifications"`
	UnitOfMeasure    string          `json:"unit_of_measure"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	ReferencePrice   decimal.Decimal `json:"reference_price"`
	ReferenceVendor  string          `json:"reference_vendor"`

	ProjectName string          `json:"project_name"`
	Rate        decimal.Decimal `json:"rate"`

	FromLocation      string `json:"from_location"`
	ToLocation        string `json:"to_location"`
	VehicleSize       string `json:"vehicle_size"`
	Load              string `json:"load"`
	Dimensions        string `json:"dimensions"`
	FrequencyPerMonth int    `json:"frequency_per_month"`
}

type quoteRequest struct {
	SupplierID string                     `json:"supplier_id"`
	Rates      map[string]decimal.Decimal `json:"rates"`
	Footer     model.QuoteFooter          `json:"footer"`
}

type createRFQRequest struct {
	Title         string         `json:"title" binding:"required"`
	Description   string         `json:"description"`
	CommodityType string         `json:"commodity_type" binding:"required"`
	SiteCode      string         `json:"site_code"`
	Currency      string         `json:"currency"`
	Items         []itemRequest  `json:"items"`
	Quotes        []quoteRequest `json:"quotes"`
	UserComments  string         `json:"user_comments"`
}

type decisionRequest struct {
	Comments string `json:"comments"`
}

func (h *Handler) createRFQ(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	creatorID := principal.UserID
	if raw := strings.TrimSpace(c.Query("creator_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid creator_id"})
			return
		}
		creatorID = parsed
	}

	items := make([]matrix.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		input := matrix.ItemInput{
			ItemCode:          item.ItemCode,
			Description:       item.Description,
			Specifications:    item.Specifications,
			UnitOfMeasure:     item.UnitOfMeasure,
			RequiredQuantity:  item.RequiredQuantity,
			ReferencePrice:    item.ReferencePrice,
			ReferenceVendor:   item.ReferenceVendor,
			ProjectName:       item.ProjectName,
			Rate:              item.Rate,
			FromLocation:      item.FromLocation,
			ToLocation:        item.ToLocation,
			VehicleSize:       item.VehicleSize,
			Load:              item.Load,
			Dimensions:        item.Dimensions,
			FrequencyPerMonth: item.FrequencyPerMonth,
		}
		if raw := strings.TrimSpace(item.ID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid item id"})
				return
			}
			input.ID = id
		}
		items = append(items, input)
	}

	quotes := make([]service.QuoteInput, 0, len(req.Quotes))
	for _, quote := range req.Quotes {
		quotes = append(quotes, service.QuoteInput{
			SupplierID: quote.SupplierID,
			Rates:      quote.Rates,
			Footer:     quote.Footer,
		})
	}

	rfq, err := h.rfqs.Create(c.Request.Context(), service.CreateRFQInput{
		Title:         req.Title,
		Description:   req.Description,
		CommodityType: req.CommodityType,
		SiteCode:      req.SiteCode,
		Currency:      req.Currency,
		Items:         items,
		Quotes:        quotes,
		UserComments:  req.UserComments,
		CreatorID:     creatorID,
		Principal:     principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRFQResponse(*rfq))
}

func (h *Handler) getRFQ(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	rfq, err := h.rfqs.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRFQResponse(*rfq))
}

func (h *Handler) listRFQs(c *gin.Context) {
	var filter service.ListFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.RFQStatus(raw)
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("site_code")); raw != "" {
		filter.SiteCode = &raw
	}
	if raw := strings.TrimSpace(c.Query("commodity_type")); raw != "" {
		commodity, ok := model.ParseCommodityType(raw)
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid commodity_type"})
			return
		}
		filter.CommodityType = &commodity
	}

	rfqs, err := h.rfqs.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]rfqResponse, 0, len(rfqs))
	for _, rfq := range rfqs {
		responses = append(responses, toRFQResponse(rfq))
	}
	c.JSON(http.StatusOK, gin.H{"rfqs": responses})
}

func (h *Handler) approveRFQ(c *gin.Context) {
	h.decide(c, h.rfqs.Approve)
}

func (h *Handler) rejectRFQ(c *gin.Context) {
	h.decide(c, h.rfqs.Reject)
}

func (h *Handler) decide(
	c *gin.Context,
	apply func(ctx context.Context, id uuid.UUID, comments string, principal model.Principal) (*model.RFQ, error),
) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	// Comments are optional; an empty body is fine.
	var req decisionRequest
	_ = c.ShouldBindJSON(&req)

	rfq, err := apply(c.Request.Context(), id, req.Comments, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRFQResponse(*rfq))
}

func (h *Handler) exportComparison(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	result, err := h.rfqs.ExportComparison(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) exportPDF(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	result, err := h.rfqs.ExportPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid rfq id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var valErr *service.ValidationError
	var fieldErr *matrix.FieldError
	switch {
	case errors.As(err, &valErr):
		body := gin.H{"error": valErr.Error()}
		if valErr.Field != "" {
			body["field"] = valErr.Field
		}
		if valErr.Quote > 0 {
			body["quote"] = valErr.Quote
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fieldErr.Error(),
			"field": fieldErr.Field,
			"item":  fieldErr.Index + 1,
		})
	case errors.Is(err, service.ErrBusinessRule):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("rfq request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
