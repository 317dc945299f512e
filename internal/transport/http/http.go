package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mettware/slack-notifier/internal/service/models/order"
	listopeninvoices "github.com/mettware/slack-notifier/internal/transport/http/list_open_invoices"
	triggerinvoices "github.com/mettware/slack-notifier/internal/transport/http/trigger_invoices"
	triggerstoporders "github.com/mettware/slack-notifier/internal/transport/http/trigger_stop_orders"
	"github.com/mettware/slack-notifier/pkg/http/middleware/trace"
	"github.com/mettware/slack-notifier/pkg/logger"
	"github.com/spf13/viper"
)

type invoiceService interface {
	Run(ctx context.Context, filterSlackID string, additionalContacts []string) (int, error)
	OpenInvoices(ctx context.Context, slackID string) ([]order.Order, error)
}

type stopOrdersService interface {
	Schedule(ctx context.Context) error
}

type HTTPTransport struct {
	server        *http.Server
	router        *chi.Mux
	invoiceSvc    invoiceService
	stopOrdersSvc stopOrdersService
}

func NewHTTPTransport(invoiceSvc invoiceService, stopOrdersSvc stopOrdersService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:        server,
		router:        router,
		invoiceSvc:    invoiceSvc,
		stopOrdersSvc: stopOrdersSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/notifications/invoices", h.triggerInvoices)
		r.Post("/notifications/stop-orders", h.triggerStopOrders)
		r.Get("/invoices/open", h.listOpenInvoices)
	})
}

func (h *HTTPTransport) triggerInvoices(w http.ResponseWriter, r *http.Request) {
	triggerinvoices.TriggerInvoices(w, r, h.invoiceSvc)
}

func (h *HTTPTransport) triggerStopOrders(w http.ResponseWriter, r *http.Request) {
	triggerstoporders.TriggerStopOrders(w, r, h.stopOrdersSvc)
}

func (h *HTTPTransport) listOpenInvoices(w http.ResponseWriter, r *http.Request) {
	listopeninvoices.ListOpenInvoices(w, r, h.invoiceSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
