package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
)

type requestStoreStub struct {
	requests []models.Request
}

func (s *requestStoreStub) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	return req, nil
}

func (s *requestStoreStub) GetRequestByID(ctx context.Context, id int) (models.Request, error) {
	return models.Request{}, models.ErrRequestNotFound
}

func (s *requestStoreStub) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	out := s.requests
	if filter.PageSize > 0 && len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, len(s.requests), nil
}

func (s *requestStoreStub) GetRequestsByAuthorID(ctx context.Context, authorID int) ([]models.Request, error) {
	return nil, nil
}

func (s *requestStoreStub) UpdateStatus(ctx context.Context, id int, fromStatus, toStatus string) error {
	return nil
}

func newTestRequestHandler(stored int) *RequestHandler {
	store := &requestStoreStub{}
	for i := 1; i <= stored; i++ {
		store.requests = append(store.requests, models.Request{ID: i, Status: fsm.StatusOpen})
	}
	return &RequestHandler{RequestService: &services.RequestService{RequestRepo: store}}
}

func TestListRequestsFlatWithoutPaginationParams(t *testing.T) {
	h := newTestRequestHandler(services.DefaultPageSize + 5)

	w := httptest.NewRecorder()
	h.ListRequests(w, httptest.NewRequest(http.MethodGet, "/requests", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var flat []models.Request
	if err := json.Unmarshal(w.Body.Bytes(), &flat); err != nil {
		t.Fatalf("expected a flat JSON array: %v", err)
	}
	if len(flat) != services.DefaultPageSize+5 {
		t.Fatalf("expected all %d requests, got %d", services.DefaultPageSize+5, len(flat))
	}
}

func TestListRequestsEnvelopeWithPaginationParams(t *testing.T) {
	h := newTestRequestHandler(services.DefaultPageSize + 5)

	w := httptest.NewRecorder()
	h.ListRequests(w, httptest.NewRequest(http.MethodGet, "/requests?page=1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var page models.RequestPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("expected a paginated envelope: %v", err)
	}
	if page.Page != 1 || page.PageSize != services.DefaultPageSize {
		t.Fatalf("unexpected envelope: page=%d size=%d", page.Page, page.PageSize)
	}
	if len(page.Requests) != services.DefaultPageSize {
		t.Fatalf("expected a %d-item page, got %d", services.DefaultPageSize, len(page.Requests))
	}
	if page.Total != services.DefaultPageSize+5 {
		t.Fatalf("expected total %d, got %d", services.DefaultPageSize+5, page.Total)
	}
}
