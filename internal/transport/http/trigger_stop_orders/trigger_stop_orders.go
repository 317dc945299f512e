package triggerstoporders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// service is an interface for the service layer.
type service interface {
	Schedule(ctx context.Context) error
}

type triggerStopOrdersResponse struct {
	Scheduled bool `json:"scheduled"`
}

// TriggerStopOrders handles the order-stoppage notification trigger request.
func TriggerStopOrders(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.Schedule(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error scheduling stop-orders notice", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(triggerStopOrdersResponse{Scheduled: true}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for stop-orders trigger", "error", err)
	}
}
