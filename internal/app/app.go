package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mettware/slack-notifier/internal/dal/postgres"
	"github.com/mettware/slack-notifier/internal/dal/queue"
	"github.com/mettware/slack-notifier/internal/dal/rabbitmq"
	orderrepo "github.com/mettware/slack-notifier/internal/dal/repositories/order/postgres"
	productrepo "github.com/mettware/slack-notifier/internal/dal/repositories/product/postgres"
	"github.com/mettware/slack-notifier/internal/dal/slack"
	"github.com/mettware/slack-notifier/internal/otel"
	"github.com/mettware/slack-notifier/internal/service/models/job"
	"github.com/mettware/slack-notifier/internal/service/services/invoicesvc"
	"github.com/mettware/slack-notifier/internal/service/services/stopordersvc"
	"github.com/mettware/slack-notifier/internal/transport/consumer"
	httptransport "github.com/mettware/slack-notifier/internal/transport/http"
)

// App represents the application.
type App struct {
	invoiceSvc     *invoicesvc.InvoiceService
	stopOrdersSvc  *stopordersvc.StopOrdersService
	consumerTransp *consumer.Consumer
	httpTransp     *httptransport.HTTPTransport
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	productRepository := productrepo.NewPostgresProductRepository(postgresClient.Pool())
	orderRepository := orderrepo.NewPostgresOrderRepository(postgresClient.Pool(), productRepository)

	jobQueue := queue.MustNewJobQueue(rabbitMqClient)
	slackClient := slack.NewClient(os.Getenv("SLACK_BOT_TOKEN"))

	invoiceSvc := invoicesvc.MustNewInvoiceService(
		invoicesvc.WithOrderRepository(orderRepository),
		invoicesvc.WithJobQueue(jobQueue),
		invoicesvc.WithSlackClient(slackClient),
	)

	stopOrdersSvc := stopordersvc.MustNewStopOrdersService(
		stopordersvc.WithOrderRepository(orderRepository),
		stopordersvc.WithJobQueue(jobQueue),
		stopordersvc.WithSlackClient(slackClient),
	)

	handlers := map[job.Kind]consumer.HandlerFunc{
		job.KindOpenInvoice: skipWhenUnconfigured(invoiceSvc.DeliverInvoice, invoicesvc.ErrConfigMissing),
		job.KindStopOrders:  skipWhenUnconfigured(stopOrdersSvc.HandleStopOrders, stopordersvc.ErrConfigMissing),
	}

	consumerTransp := consumer.NewConsumer(rabbitMqClient, jobQueue, handlers)

	httpTransp := httptransport.NewHTTPTransport(invoiceSvc, stopOrdersSvc)
	httpTransp.RegisterRoutes()

	return &App{
		invoiceSvc:     invoiceSvc,
		stopOrdersSvc:  stopOrdersSvc,
		consumerTransp: consumerTransp,
		httpTransp:     httpTransp,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// skipWhenUnconfigured maps a missing-config error to a logged no-op so the
// job is acknowledged instead of requeued forever.
func skipWhenUnconfigured(handler consumer.HandlerFunc, sentinel error) consumer.HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		if err := handler(ctx, j); err != nil {
			if errors.Is(err, sentinel) {
				slog.Warn("Skipping job, notifications not configured", "kind", j.Kind, "job_id", j.ID)

				return nil
			}

			return err
		}

		return nil
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.httpTransp.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown performs graceful shutdown of all application components.
// It shuts down components sequentially: HTTP server, consumer, RabbitMQ,
// PostgreSQL, and OpenTelemetry.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpTransp.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
