package triggerinvoices

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	Run(ctx context.Context, filterSlackID string, additionalContacts []string) (int, error)
}

// triggerInvoicesRequest represents a batch run trigger request. All fields
// are optional: an empty body schedules invoices for every recipient.
type triggerInvoicesRequest struct {
	FilterSlackID      string   `json:"filterSlackId"`
	AdditionalContacts []string `json:"additionalIds" validate:"omitempty,dive,required"`
}

// Validate validates the trigger request.
func (r *triggerInvoicesRequest) Validate() error {
	return validator.New().Struct(r)
}

// triggerInvoicesResponse reports how many notification jobs were scheduled.
type triggerInvoicesResponse struct {
	ScheduledJobs int `json:"scheduledJobs"`
}

// TriggerInvoices handles the invoice batch run trigger request.
func TriggerInvoices(w http.ResponseWriter, r *http.Request, service service) {
	req := triggerInvoicesRequest{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			slog.Error("Error decoding request body for invoice trigger", "error", err)

			return
		}
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for invoice trigger", "error", err)

		return
	}

	scheduled, err := service.Run(r.Context(), req.FilterSlackID, req.AdditionalContacts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error running invoice batch", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(triggerInvoicesResponse{ScheduledJobs: scheduled}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for invoice trigger", "error", err)
	}
}
