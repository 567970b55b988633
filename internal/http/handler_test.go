package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/procure-rfq/internal/http/middleware"
	"github.com/nurpe/procure-rfq/internal/model"
	"github.com/nurpe/procure-rfq/internal/sequence"
	"github.com/nurpe/procure-rfq/internal/service"
)

type stubRepo struct {
	mu        sync.Mutex
	allocator *sequence.Memory
	rfqs      map[uuid.UUID]*model.RFQ
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		allocator: sequence.NewMemory(sequence.DefaultPrefix, 0),
		rfqs:      map[uuid.UUID]*model.RFQ{},
	}
}

func (r *stubRepo) Create(ctx context.Context, rfq model.RFQ) (*model.RFQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	number, err := r.allocator.Allocate(ctx, rfq.SiteCode)
	if err != nil {
		return nil, err
	}
	saved := rfq
	saved.ID = uuid.New()
	saved.RFQNumber = number
	r.rfqs[saved.ID] = &saved
	return &saved, nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*model.RFQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rfq, ok := r.rfqs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rfq
	return &copied, nil
}

func (r *stubRepo) List(_ context.Context, _ service.ListFilter) ([]model.RFQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.RFQ, 0, len(r.rfqs))
	for _, rfq := range r.rfqs {
		out = append(out, *rfq)
	}
	return out, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.RFQStatus, comments *string, decidedBy uuid.UUID, decidedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rfq, ok := r.rfqs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rfq.Status = status
	rfq.DecisionComments = comments
	rfq.DecidedByUserID = &decidedBy
	rfq.DecidedAt = &decidedAt
	return nil
}

type stubSites struct{}

func (stubSites) ResolveCode(_ context.Context, code string) (*model.Site, error) {
	if code != model.DefaultSiteCode && code != "A001" {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Site{ID: uuid.New(), Code: code, Name: "Site " + code, Active: true}, nil
}

type stubSuppliers struct {
	known map[uuid.UUID]string
}

func (s stubSuppliers) Resolve(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	name, ok := s.known[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Supplier{ID: id, Name: name, Active: true}, nil
}

func newTestRouter(t *testing.T, repo *stubRepo, suppliers stubSuppliers, principal model.Principal) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.NewRFQService(repo, stubSites{}, suppliers, nil, nil, nil, nil)
	handler := NewHandler(svc, zerolog.Nop())
	return NewRouter(handler, middleware.WithPrincipal(principal), "test")
}

func doJSON(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func serviceBody() map[string]any {
	return map[string]any{
		"title":          "Annual maintenance",
		"commodity_type": "service",
		"site_code":      "A001",
		"currency":       "USD",
		"items": []map[string]any{{
			"project_name":      "HVAC servicing",
			"description":       "monthly visits",
			"unit_of_measure":   "visit",
			"required_quantity": "40",
			"rate":              "50",
		}},
	}
}

func TestCreateRFQ_Created(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleRequester})

	rec := doJSON(t, router, http.MethodPost, "/rfqs", serviceBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RFQNumber  string `json:"rfq_number"`
		Status     string `json:"status"`
		TotalValue string `json:"total_value"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RFQNumber != "GP-A001-001" {
		t.Errorf("rfq_number = %q, want GP-A001-001", resp.RFQNumber)
	}
	if resp.Status != "pending" {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	if resp.TotalValue != "2000" {
		t.Errorf("total_value = %q, want 2000", resp.TotalValue)
	}
}

func TestCreateRFQ_MissingSupplierNamesQuote(t *testing.T) {
	repo := newStubRepo()
	supplierID := uuid.New()
	suppliers := stubSuppliers{known: map[uuid.UUID]string{supplierID: "Acme"}}
	router := newTestRouter(t, repo, suppliers, model.Principal{UserID: uuid.New(), Role: model.RoleRequester})

	body := serviceBody()
	body["quotes"] = []map[string]any{
		{"supplier_id": supplierID.String()},
		{"supplier_id": ""},
	}

	rec := doJSON(t, router, http.MethodPost, "/rfqs", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Quote int `json:"quote"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Quote != 2 {
		t.Errorf("quote = %d, want 2", resp.Quote)
	}
}

func TestCreateRFQ_MissingTitle(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleRequester})

	body := serviceBody()
	delete(body, "title")
	rec := doJSON(t, router, http.MethodPost, "/rfqs", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRFQ_UnknownSite(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleRequester})

	body := serviceBody()
	body["site_code"] = "A999"
	rec := doJSON(t, router, http.MethodPost, "/rfqs", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestApproveRFQ_ForbiddenForRequester(t *testing.T) {
	repo := newStubRepo()
	requesterRouter := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleRequester})

	created := doJSON(t, requesterRouter, http.MethodPost, "/rfqs", serviceBody())
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d", created.Code)
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec := doJSON(t, requesterRouter, http.MethodPost, fmt.Sprintf("/rfqs/%s/approve", resp.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestApproveRFQ_AdminDecides(t *testing.T) {
	repo := newStubRepo()
	requesterRouter := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleRequester})
	adminRouter := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleAdmin})

	created := doJSON(t, requesterRouter, http.MethodPost, "/rfqs", serviceBody())
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec := doJSON(t, adminRouter, http.MethodPost, fmt.Sprintf("/rfqs/%s/approve", resp.ID), map[string]any{"comments": "go ahead"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body.String())
	}

	var decided struct {
		Status           string  `json:"status"`
		DecisionComments *string `json:"decision_comments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decided); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decided.Status != "approved" {
		t.Errorf("status = %q, want approved", decided.Status)
	}
	if decided.DecisionComments == nil || *decided.DecisionComments != "go ahead" {
		t.Error("decision comments missing from response")
	}

	// A decided RFQ is final.
	again := doJSON(t, adminRouter, http.MethodPost, fmt.Sprintf("/rfqs/%s/reject", resp.ID), nil)
	if again.Code != http.StatusConflict {
		t.Errorf("reject after approve status = %d, want 409", again.Code)
	}
}

func TestGetRFQ_BadID(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleAdmin})

	rec := doJSON(t, router, http.MethodGet, "/rfqs/not-a-uuid", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestGetRFQ_NotFound(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, stubSuppliers{}, model.Principal{UserID: uuid.New(), Role: model.RoleAdmin})

	rec := doJSON(t, router, http.MethodGet, "/rfqs/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(t, repo, stubSuppliers{}, model.Principal{})

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
