package listopeninvoices

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	"github.com/mettware/slack-notifier/internal/service/models/order"
)

type service interface {
	OpenInvoices(ctx context.Context, slackID string) ([]order.Order, error)
}

type queryOpenInvoicesRequest struct {
	SlackID string `schema:"slackId,omitempty"`
}

// orderInOpenInvoicesResponse is a flat summary of one open order.
type orderInOpenInvoicesResponse struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	AmountTotal float64   `json:"amountTotal"`
	Currency    string    `json:"currency"`
	OrderDate   time.Time `json:"orderDate"`
}

type openInvoicesResponse struct {
	Orders []orderInOpenInvoicesResponse `json:"orders"`
	Total  float64                       `json:"total"`
}

func toResponse(orders []order.Order) openInvoicesResponse {
	resp := openInvoicesResponse{
		Orders: make([]orderInOpenInvoicesResponse, 0, len(orders)),
	}
	for i := range orders {
		o := &orders[i]
		resp.Total += o.AmountTotal
		resp.Orders = append(resp.Orders, orderInOpenInvoicesResponse{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			AmountTotal: o.AmountTotal,
			Currency:    o.Currency.ISOCode,
			OrderDate:   o.OrderDate,
		})
	}

	return resp
}

// ListOpenInvoices handles the open invoices query request.
func ListOpenInvoices(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOpenInvoicesRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.OpenInvoices(r.Context(), query.SlackID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting open invoices", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(toResponse(orders)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
