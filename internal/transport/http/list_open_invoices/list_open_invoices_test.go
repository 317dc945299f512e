package listopeninvoices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mettware/slack-notifier/internal/service/models/currency"
	"github.com/mettware/slack-notifier/internal/service/models/order"
)

type fakeService struct {
	gotSlackID string
	orders     []order.Order
}

func (f *fakeService) OpenInvoices(_ context.Context, slackID string) ([]order.Order, error) {
	f.gotSlackID = slackID

	return f.orders, nil
}

func TestListOpenInvoices(t *testing.T) {
	service := &fakeService{orders: []order.Order{
		{
			ID:          "o1",
			OrderNumber: "10001",
			AmountTotal: 10.25,
			Currency:    currency.Currency{ISOCode: "EUR", Symbol: "€"},
			OrderDate:   time.Date(2026, 3, 5, 12, 30, 0, 0, time.UTC),
		},
		{
			ID:          "o2",
			OrderNumber: "10002",
			AmountTotal: 5.25,
			Currency:    currency.Currency{ISOCode: "EUR", Symbol: "€"},
			OrderDate:   time.Date(2026, 3, 6, 9, 15, 0, 0, time.UTC),
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/open?slackId=U1", nil)
	w := httptest.NewRecorder()

	ListOpenInvoices(w, req, service)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if service.gotSlackID != "U1" {
		t.Errorf("slackId = %q, want U1", service.gotSlackID)
	}

	var resp openInvoicesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(resp.Orders))
	}
	if resp.Total != 15.5 {
		t.Errorf("total = %v, want 15.5", resp.Total)
	}
	if resp.Orders[0].OrderNumber != "10001" || resp.Orders[0].Currency != "EUR" {
		t.Errorf("first order = %+v, want order 10001 in EUR", resp.Orders[0])
	}
}

func TestListOpenInvoicesWithoutFilter(t *testing.T) {
	service := &fakeService{}

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/open", nil)
	w := httptest.NewRecorder()

	ListOpenInvoices(w, req, service)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if service.gotSlackID != "" {
		t.Errorf("slackId = %q, want empty", service.gotSlackID)
	}
}
