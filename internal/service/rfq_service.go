package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/procure-rfq/internal/config"
	"github.com/nurpe/procure-rfq/internal/matrix"
	"github.com/nurpe/procure-rfq/internal/model"
	"github.com/nurpe/procure-rfq/internal/sequence"
)

// createRetries bounds the internal retry on allocation conflicts before the
// failure is reported as a persistence error.
const createRetries = 3

type RFQRepository interface {
	Create(ctx context.Context, rfq model.RFQ) (*model.RFQ, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error)
	List(ctx context.Context, filter ListFilter) ([]model.RFQ, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RFQStatus, comments *string, decidedBy uuid.UUID, decidedAt time.Time) error
}

type SiteDirectory interface {
	ResolveCode(ctx context.Context, code string) (*model.Site, error)
}

type SupplierDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
}

// Notifier is a fire-and-forget audit sink. Implementations must not block
// the request path.
type Notifier interface {
	RFQCreated(rfq model.RFQ)
	RFQDecided(rfq model.RFQ)
}

type ExcelGenerator interface {
	Generate(rfq model.RFQ) ([]byte, error)
}

type PDFGenerator interface {
	Generate(rfq model.RFQ) ([]byte, error)
}

type ListFilter struct {
	Status        *model.RFQStatus
	SiteCode      *string
	CommodityType *model.CommodityType
}

type RFQService struct {
	repo      RFQRepository
	sites     SiteDirectory
	suppliers SupplierDirectory
	notifier  Notifier
	excel     ExcelGenerator
	pdf       PDFGenerator
	maxQuotes int
}

func NewRFQService(
	repo RFQRepository,
	sites SiteDirectory,
	suppliers SupplierDirectory,
	notifier Notifier,
	excel ExcelGenerator,
	pdf PDFGenerator,
	cfg *config.Config,
) *RFQService {
	maxQuotes := matrix.MaxQuotes
	if cfg != nil && cfg.RFQ.MaxQuotes > 0 {
		maxQuotes = cfg.RFQ.MaxQuotes
	}
	return &RFQService{
		repo:      repo,
		sites:     sites,
		suppliers: suppliers,
		notifier:  notifier,
		excel:     excel,
		pdf:       pdf,
		maxQuotes: maxQuotes,
	}
}

type QuoteInput struct {
	SupplierID string
	Rates      map[string]decimal.Decimal
	Footer     model.QuoteFooter
}

type CreateRFQInput struct {
	Title         string
	Description   string
	CommodityType string
	SiteCode      string
	Currency      string
	Items         []matrix.ItemInput
	Quotes        []QuoteInput
	UserComments  string
	CreatorID     uuid.UUID
	Principal     model.Principal
}

// Create runs the full submission pipeline: validate, normalize, then persist
// atomically with a freshly allocated RFQ number. All checks happen before
// any persistence side effect; a failed insert rolls the allocation back.
// Creation is submission — the RFQ lands in pending.
func (s *RFQService) Create(ctx context.Context, input CreateRFQInput) (*model.RFQ, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrBusinessRule)
	}

	commodity, ok := model.ParseCommodityType(strings.TrimSpace(input.CommodityType))
	if !ok {
		return nil, &ValidationError{Field: "commodity_type", Msg: "must be provided_data, service or transport"}
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Msg: "is required"}
	}
	if input.CreatorID == uuid.Nil {
		return nil, fmt.Errorf("%w: creator", ErrNotFound)
	}

	if len(input.Quotes) > s.maxQuotes {
		return nil, fmt.Errorf("%w: a comparison holds at most %d quotations", ErrBusinessRule, s.maxQuotes)
	}

	quotes, err := s.resolveQuotes(ctx, input.Quotes)
	if err != nil {
		return nil, err
	}

	items, err := matrix.BuildItems(commodity, input.Items)
	if err != nil {
		return nil, err
	}

	m := matrix.New(commodity)
	for i, item := range items {
		id := input.Items[i].ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		m.Lines = append(m.Lines, matrix.Line{ID: id, Item: item})
	}
	m.Quotes = quotes

	site, err := s.resolveSite(ctx, input.SiteCode)
	if err != nil {
		return nil, err
	}

	rfq := model.RFQ{
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		CommodityType: commodity,
		Status:        model.StatusPending,
		TotalValue:    m.SubmissionTotal(),
		Currency:      strings.TrimSpace(input.Currency),
		SiteID:        site.ID,
		SiteCode:      site.Code,
		CreatorID:     input.CreatorID,
		Items:         flattenLines(m.Lines),
		Quotes:        quotes,
	}
	if comments := strings.TrimSpace(input.UserComments); comments != "" {
		rfq.UserComments = &comments
	}

	created, err := s.createWithRetry(ctx, rfq)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		go s.notifier.RFQCreated(*created)
	}
	return created, nil
}

func (s *RFQService) createWithRetry(ctx context.Context, rfq model.RFQ) (*model.RFQ, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		created, err := s.repo.Create(ctx, rfq)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, sequence.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrPersistence, lastErr)
}

// resolveQuotes enforces the gating rule: any quote without a resolvable
// supplier fails the entire submission, naming the offending quote.
func (s *RFQService) resolveQuotes(ctx context.Context, inputs []QuoteInput) ([]model.Quote, error) {
	quotes := make([]model.Quote, 0, len(inputs))
	for i, in := range inputs {
		position := i + 1
		raw := strings.TrimSpace(in.SupplierID)
		if raw == "" {
			return nil, &ValidationError{Quote: position, Msg: "please select a supplier for all quotations before submitting"}
		}
		supplierID, err := uuid.Parse(raw)
		if err != nil {
			return nil, &ValidationError{Quote: position, Msg: "supplier reference is malformed"}
		}
		supplier, err := s.suppliers.Resolve(ctx, supplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Quote: position, Msg: "supplier does not exist"}
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}

		rates := make(map[uuid.UUID]decimal.Decimal, len(in.Rates))
		for key, rate := range in.Rates {
			itemID, err := uuid.Parse(strings.TrimSpace(key))
			if err != nil {
				return nil, &ValidationError{Quote: position, Msg: "rate references a malformed item id"}
			}
			if rate.IsNegative() {
				return nil, &ValidationError{Quote: position, Msg: "rates must not be negative"}
			}
			rates[itemID] = rate
		}

		quotes = append(quotes, model.Quote{
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			Rates:        rates,
			Footer:       in.Footer,
		})
	}
	return quotes, nil
}

func (s *RFQService) resolveSite(ctx context.Context, code string) (*model.Site, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		code = model.DefaultSiteCode
	}
	if !model.ValidSiteCode(code) {
		return nil, &ValidationError{Field: "site_code", Msg: "must match the site scheme (letter A plus three digits)"}
	}
	site, err := s.sites.ResolveCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: site %s", ErrNotFound, code)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return site, nil
}

func (s *RFQService) Get(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	rfq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rfq", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rfq, nil
}

func (s *RFQService) List(ctx context.Context, filter ListFilter) ([]model.RFQ, error) {
	rfqs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rfqs, nil
}

// Approve moves a pending RFQ to its terminal approved state. Approved and
// rejected never revert; only comments travel with the decision.
func (s *RFQService) Approve(ctx context.Context, id uuid.UUID, comments string, principal model.Principal) (*model.RFQ, error) {
	return s.decide(ctx, id, model.StatusApproved, comments, principal)
}

func (s *RFQService) Reject(ctx context.Context, id uuid.UUID, comments string, principal model.Principal) (*model.RFQ, error) {
	return s.decide(ctx, id, model.StatusRejected, comments, principal)
}

func (s *RFQService) decide(ctx context.Context, id uuid.UUID, status model.RFQStatus, comments string, principal model.Principal) (*model.RFQ, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	rfq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rfq.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: cannot move %q to %q", ErrInvalidTransition, rfq.Status, status)
	}

	now := time.Now().UTC()
	var commentsPtr *string
	if trimmed := strings.TrimSpace(comments); trimmed != "" {
		commentsPtr = &trimmed
	}
	if err := s.repo.UpdateStatus(ctx, id, status, commentsPtr, principal.UserID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	rfq.Status = status
	rfq.DecisionComments = commentsPtr
	rfq.DecidedByUserID = &principal.UserID
	rfq.DecidedAt = &now

	if s.notifier != nil {
		go s.notifier.RFQDecided(*rfq)
	}
	return rfq, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *RFQService) ExportComparison(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	rfq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*rfq)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("%s.xlsx", sanitizeFileName(rfq.RFQNumber)),
		Content:  content,
	}, nil
}

func (s *RFQService) ExportPDF(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	rfq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*rfq)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("%s.pdf", sanitizeFileName(rfq.RFQNumber)),
		Content:  content,
	}, nil
}

// flattenLines reshapes tagged items into the flat backend record, folding
// type-specific details into name/specification text. Transport keeps its
// structured side-channel.
func flattenLines(lines []matrix.Line) []model.RFQItem {
	items := make([]model.RFQItem, 0, len(lines))
	for i, line := range lines {
		flat := model.RFQItem{ID: line.ID, LineNo: i + 1}
		switch v := line.Item.(type) {
		case model.ProvidedDataItem:
			flat.Name = v.ItemCode
			flat.Description = v.Description
			flat.Specification = foldSpec(v.Specifications, referenceNote(v))
			flat.UnitOfMeasure = v.UnitOfMeasure
			flat.Quantity = v.RequiredQuantity
			flat.Rate = v.ReferencePrice
		case model.ServiceItem:
			flat.Name = v.ProjectName
			flat.Description = v.Description
			flat.Specification = v.Specifications
			flat.UnitOfMeasure = v.UnitOfMeasure
			flat.Quantity = v.RequiredQuantity
			flat.Rate = v.Rate
		case model.TransportItem:
			flat.Name = fmt.Sprintf("%s - %s", v.FromLocation, v.ToLocation)
			flat.Specification = foldSpec(
				fmt.Sprintf("Vehicle: %s", v.VehicleSize),
				foldSpec(textOrEmpty("Load", v.Load), textOrEmpty("Dimensions", v.Dimensions)),
			)
			flat.Quantity = decimal.NewFromInt(int64(v.FrequencyPerMonth))
			from, to := v.FromLocation, v.ToLocation
			size, load, dims := v.VehicleSize, v.Load, v.Dimensions
			freq := v.FrequencyPerMonth
			flat.FromLocation = &from
			flat.ToLocation = &to
			flat.VehicleSize = &size
			if load != "" {
				flat.Load = &load
			}
			if dims != "" {
				flat.Dimensions = &dims
			}
			flat.FrequencyPerMonth = &freq
		}
		items = append(items, flat)
	}
	return items
}

func referenceNote(item model.ProvidedDataItem) string {
	if item.ReferenceVendor == "" {
		return ""
	}
	return fmt.Sprintf("Reference vendor: %s (last price %s)", item.ReferenceVendor, item.ReferencePrice.String())
}

func textOrEmpty(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", label, value)
}

func foldSpec(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "; ")
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
